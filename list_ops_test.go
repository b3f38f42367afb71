// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformCacheReusesUnchangedOutputs(t *testing.T) {
	cache := NewTransformCache()
	l := NewList(Number(1), Number(2), Number(3))

	var calls int
	double := func(v Value) (Value, error) {
		calls++
		n := v.(Number)
		return n * 2, nil
	}

	out1v, err := cache.ListMap(context.Background(), l, double)
	require.NoError(t, err)
	out1, ok := out1v.(*List)
	require.True(t, ok)
	assert.Equal(t, []Value{Number(2), Number(4), Number(6)}, out1.Values())
	assert.Equal(t, 3, calls)

	// Same items (same ids, same values): every entry is a cache hit.
	out2v, err := cache.ListMap(context.Background(), l, double)
	require.NoError(t, err)
	out2, ok := out2v.(*List)
	require.True(t, ok)
	assert.Equal(t, out1.Values(), out2.Values())
	assert.Equal(t, 3, calls, "unchanged items must not be recomputed")
}

func TestTransformCacheRecomputesChangedItemOnly(t *testing.T) {
	cache := NewTransformCache()
	l := NewList(Number(1), Number(2))
	double := func(v Value) (Value, error) { return v.(Number) * 2, nil }

	_, err := cache.ListMap(context.Background(), l, double)
	require.NoError(t, err)

	changed := &List{Items: []ListItem{
		l.Items[0],
		{ID: l.Items[1].ID, Value: Number(20)},
	}}
	var recomputed []Value
	outv, err := cache.ListMap(context.Background(), changed, func(v Value) (Value, error) {
		recomputed = append(recomputed, v)
		return v.(Number) * 2, nil
	})
	require.NoError(t, err)
	out, ok := outv.(*List)
	require.True(t, ok)
	assert.Equal(t, []Value{Number(20)}, recomputed)
	assert.Equal(t, []Value{Number(2), Number(40)}, out.Values())
}

func TestTransformCacheEvictsStaleEntries(t *testing.T) {
	cache := NewTransformCache()
	l := NewList(Number(1), Number(2))
	identity := func(v Value) (Value, error) { return v, nil }

	_, err := cache.ListMap(context.Background(), l, identity)
	require.NoError(t, err)
	assert.Len(t, cache.entries, 2)

	shrunk := &List{Items: l.Items[:1]}
	_, err = cache.ListMap(context.Background(), shrunk, identity)
	require.NoError(t, err)
	assert.Len(t, cache.entries, 1)
}

func TestTransformCachePropagatesError(t *testing.T) {
	cache := NewTransformCache()
	l := NewList(Number(1))
	wantErr := errors.New("boom")
	_, err := cache.ListMap(context.Background(), l, func(Value) (Value, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestTransformCachePropagatesFlushedOutput(t *testing.T) {
	cache := NewTransformCache()
	l := NewList(Number(1))
	out, err := cache.ListMap(context.Background(), l, func(v Value) (Value, error) {
		return Flush(v), nil
	})
	require.NoError(t, err)
	flushed, ok := IsFlushed(out)
	require.True(t, ok, "ListMap must return the Flushed value itself, not an engine error")
	assert.Equal(t, Number(1), flushed.Inner)
}

func TestTransformCacheStopsAfterFirstFlushedInOrder(t *testing.T) {
	cache := NewTransformCache()
	l := NewList(Number(1), Number(2), Number(3))
	var calls []Value
	var mu sync.Mutex
	out, err := cache.ListMap(context.Background(), l, func(v Value) (Value, error) {
		mu.Lock()
		calls = append(calls, v)
		mu.Unlock()
		n := v.(Number)
		if n == 2 {
			return Flush(NewErrorTag("boom")), nil
		}
		return n, nil
	})
	require.NoError(t, err)
	flushed, ok := IsFlushed(out)
	require.True(t, ok)
	_, isErr := flushed.Inner.(*Tag)
	assert.True(t, isErr)
	// item 3 sits behind item 2 in list order; the cache must not retain
	// a mapped output for it once item 2 flushed.
	assert.NotContains(t, cache.entries, l.Items[2].ID)
}

func TestListRetain(t *testing.T) {
	l := NewList(Number(1), Number(2), Number(3), Number(4))
	out := ListRetain(l, func(v Value) bool { return int(v.(Number))%2 == 0 })
	assert.Equal(t, []Value{Number(2), Number(4)}, out.Values())
}

func TestListSortByStable(t *testing.T) {
	l := NewList(Number(3), Number(1), Number(2))
	out := ListSortBy(l, func(a, b Value) bool { return a.(Number) < b.(Number) })
	assert.Equal(t, []Value{Number(1), Number(2), Number(3)}, out.Values())
	assert.Equal(t, 3, l.Len(), "original list left untouched")
}

func TestListEveryAny(t *testing.T) {
	l := NewList(Number(2), Number(4), Number(6))
	assert.True(t, ListEvery(l, func(v Value) bool { return int(v.(Number))%2 == 0 }))
	assert.False(t, ListAny(l, func(v Value) bool { return v.(Number) > 10 }))
	assert.True(t, bool(ListEvery(NewList(), func(Value) bool { return false })))
}

func TestListAppendMintsFreshIdentity(t *testing.T) {
	l := NewList(Number(1))
	producer := NewPersistenceID("append-test")
	out := ListAppend(l, producer, "", Number(2))
	assert.Equal(t, 2, out.Len())
	assert.NotEqual(t, l.Items[0].ID, out.Items[1].ID)
}

func TestListFold(t *testing.T) {
	l := NewList(Number(1), Number(2), Number(3))
	sum, err := ListFold(l, Number(0), func(acc, item Value) (Value, error) {
		return acc.(Number) + item.(Number), nil
	})
	require.NoError(t, err)
	assert.Equal(t, Number(6), sum)
}

func TestListFoldStopsOnError(t *testing.T) {
	l := NewList(Number(1), Number(2))
	wantErr := errors.New("boom")
	var calls int
	_, err := ListFold(l, Number(0), func(acc, item Value) (Value, error) {
		calls++
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestDedupStreamSuppressesRepeats(t *testing.T) {
	inner := SliceStream(Number(1), Number(1), Number(2), Number(2), Number(1))
	out := DedupStream(inner, ValuesEqual)
	vals := drainStream(t, out)
	assert.Equal(t, []Value{Number(1), Number(2), Number(1)}, vals)
}

func TestCoalesceStreamKeepsLatestOfABurst(t *testing.T) {
	inner := SliceStream(Number(1), Number(2), Number(3))
	out := CoalesceStream(inner)
	vals := drainStream(t, out)
	assert.NotEmpty(t, vals)
	assert.Equal(t, Number(3), vals[len(vals)-1])
}

// drainStream opens s against a fresh clock and collects every payload
// until the channel closes, failing the test if that takes too long.
func drainStream(t *testing.T, s Stream) []Value {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	clock := NewClock(0)
	var out []Value
	for env := range s.Open(ctx, clock) {
		out = append(out, env.Payload)
	}
	return out
}
