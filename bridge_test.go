// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageGetPut(t *testing.T) {
	s := NewMemoryStorage()
	id := NewPersistenceID("test")

	_, ok := s.Get(id)
	assert.False(t, ok)

	s.Put(id, Number(42))
	v, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, Number(42), v)
}

func TestRestoreHoldStatePersistsOnFirstUse(t *testing.T) {
	storage := NewMemoryStorage()
	id := NewPersistenceID("counter")

	got := restoreHoldState(storage, id, Number(0))
	assert.Equal(t, Number(0), got)

	persistHoldState(storage, id, Number(5))
	got2 := restoreHoldState(storage, id, Number(0))
	assert.Equal(t, Number(5), got2, "a reload must pick up the last persisted value, not the fresh initial")
}

func TestRestoreHoldStateNilStorageIsFreshEveryTime(t *testing.T) {
	id := NewPersistenceID("counter")
	got := restoreHoldState(nil, id, Number(3))
	assert.Equal(t, Number(3), got)
	persistHoldState(nil, id, Number(99)) // must not panic
}

func TestConsoleBridgeAttachAndResolveInputs(t *testing.T) {
	bridge := NewConsoleBridge(nil)
	clicks := SliceStream(Number(1))
	bridge.Attach("click", clicks)

	s, ok := bridge.InputEvents("click")
	assert.True(t, ok)
	assert.Same(t, clicks, s)

	_, ok = bridge.InputEvents("missing")
	assert.False(t, ok)
}

func TestConsoleBridgeStorage(t *testing.T) {
	bridge := NewConsoleBridge(nil)
	var _ Storage = bridge.Storage()
	id := NewPersistenceID("x")
	bridge.Storage().Put(id, Text("hi"))
	v, ok := bridge.Storage().Get(id)
	require.True(t, ok)
	assert.Equal(t, Text("hi"), v)
}

func TestAttachInputsWiresLinks(t *testing.T) {
	bridge := NewConsoleBridge(nil)
	bridge.Attach("tick", SliceStream(Number(1)))

	links := NewLinkRegistry()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	AttachInputs(ctx, bridge, []string{"tick", "unattached"}, links, NewClock(0), nil, nil)

	node, ok := links.Resolve("tick")
	assert.True(t, ok)
	assert.NotNil(t, node)

	_, ok = links.Resolve("unattached")
	assert.False(t, ok, "an unattached input name must not be registered at all")
}

func TestRenderLoopCallsBridgeForEveryFiring(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	clock := NewClock(0)

	source := SliceStream(Number(1), Number(2))
	node := NewNode(ctx, NewPersistenceID("x"), "x", EagerActor, KeepAlive(source), clock, nil, nil)

	var rendered []Value
	rb := &recordingBridge{ConsoleBridge: NewConsoleBridge(nil)}
	done := make(chan struct{})
	go func() {
		RenderLoop(ctx, rb, NewPersistenceID("x"), node)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		rb.mu.Lock()
		defer rb.mu.Unlock()
		rendered = append([]Value(nil), rb.rendered...)
		return len(rendered) >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

// recordingBridge wraps [*ConsoleBridge], additionally recording every
// rendered value for assertions.
type recordingBridge struct {
	*ConsoleBridge
	mu       sync.Mutex
	rendered []Value
}

func (b *recordingBridge) Render(id PersistenceId, tree Value) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rendered = append(b.rendered, tree)
}
