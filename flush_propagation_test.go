// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFlushPassesThroughWhenWildcard exercises Open Question 4's
// resolution through a real evaluator path: a WHEN whose only arm is the
// wildcard must forward a Flushed input unchanged rather than unwrapping
// or re-wrapping it.
func TestFlushPassesThroughWhenWildcard(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	nodes := evaluateSource(t, ctx, `flushed: FLUSH { 1 + 2 } |> WHEN {
	_ => 0
}`)
	// The WHEN arm never runs: FLUSH's wrapper is invisible to ordinary
	// pattern matching machinery the same way it is invisible to
	// CombineLatest, but an explicit WHEN arm matching Flushed would see
	// it — this program has no such arm, so WHEN must not silently
	// unwrap it into a 0 match either.
	vals := drainNode(t, nodes["flushed"], 1, time.Second)
	require.Len(t, vals, 1)
	f, ok := IsFlushed(vals[0])
	require.True(t, ok)
	assert.Equal(t, Number(3), f.Inner)
}

// TestEvaluateListMapPropagatesFirstFlushedElement is §8 scenario S5: a
// List/map body that FLUSHes on one element must make the whole List/map
// result that Flushed value, carrying the original inner value through
// unchanged — not a fresh engine error reminted from it.
func TestEvaluateListMapPropagatesFirstFlushedElement(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	nodes := evaluateSource(t, ctx, `
mapped: LIST { 1, 2, 3 } |> List/map(body: PASSED.item |> WHEN {
	2 => FLUSH { ReadError[message: TEXT { x }] },
	_ => PASSED.item
})
`)
	vals := drainNode(t, nodes["mapped"], 1, time.Second)
	require.Len(t, vals, 1)
	flushed, ok := IsFlushed(vals[0])
	require.True(t, ok, "a Flushed element must propagate as the List/map result itself")
	tag, ok := flushed.Inner.(*Tag)
	require.True(t, ok)
	assert.Equal(t, "ReadError", tag.Name)
	msg, ok := tag.Field("message")
	require.True(t, ok)
	assert.Equal(t, Text("x"), msg)
}
