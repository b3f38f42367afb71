// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustParseAndResolve runs the full lex/parse/resolve pipeline over src and
// fails the test immediately on any error, mirroring [parseAndResolve] but
// with testify assertions in place of error returns.
func mustParseAndResolve(t *testing.T, src string) (*Program, *PersistenceTable) {
	t.Helper()
	lex, err := NewLexer("test.bn", src)
	require.NoError(t, err)
	parser, err := NewParser(lex)
	require.NoError(t, err)
	prog, err := parser.ParseProgram("test.bn")
	require.NoError(t, err)
	require.NoError(t, ResolveScopes(prog))
	ids := ResolvePersistence(prog)
	return prog, ids
}

// evaluateSource runs src through the full pipeline and [Evaluator.Evaluate],
// returning the resolved bindings. ctx governs every Node's lifetime.
func evaluateSource(t *testing.T, ctx context.Context, src string) map[string]*Node {
	t.Helper()
	prog, ids := mustParseAndResolve(t, src)
	ev := NewEvaluator(ids, nil, NewClock(0), nil, nil)
	nodes, err := ev.Evaluate(ctx, prog)
	require.NoError(t, err)
	return nodes
}

// drainNode subscribes to node and collects up to n payloads, failing the
// test if that takes longer than the given timeout.
func drainNode(t *testing.T, node *Node, n int, timeout time.Duration) []Value {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	sub := node.Subscribe(ctx)
	defer sub.Close()
	var out []Value
	for len(out) < n {
		env, ok := sub.Recv(ctx)
		if !ok {
			break
		}
		out = append(out, env.Payload)
	}
	return out
}

func TestEvaluateHoldWithNoExternalTriggerSettlesOnce(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	nodes := evaluateSource(t, ctx, `counter: 0 |> HOLD counter { counter + 1 }`)
	// No LINK/THEN/PULSES drives this body, so it has no external trigger:
	// it evaluates exactly once and settles on 1, never free-running.
	vals := drainNode(t, nodes["counter"], 3, 200*time.Millisecond)
	require.Len(t, vals, 2, "HOLD must not free-run past its single settled commit")
	assert.Equal(t, Number(0), vals[0])
	assert.Equal(t, Number(1), vals[1])
}

func TestEvaluateHoldEmitsInitialForever(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	nodes := evaluateSource(t, ctx, `latched: 7 |> HOLD latched { PULSES { 0 } }`)
	// PULSES{0} closes without ever emitting, so the body never fires and
	// HOLD holds its initial value forever (combinator_hold.go's doc
	// comment).
	vals := drainNode(t, nodes["latched"], 1, time.Second)
	require.Len(t, vals, 1)
	assert.Equal(t, Number(7), vals[0])
}

func TestEvaluateListMapDoublesEachItem(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	nodes := evaluateSource(t, ctx, `doubled: LIST { 1, 2, 3 } |> List/map(body: PASSED.item * 2)`)
	vals := drainNode(t, nodes["doubled"], 1, time.Second)
	require.Len(t, vals, 1)
	l, ok := vals[0].(*List)
	require.True(t, ok)
	assert.Equal(t, []Value{Number(2), Number(4), Number(6)}, l.Values())
}

func TestEvaluateWhenMatchesTagAndBindsFields(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	nodes := evaluateSource(t, ctx, `
result: Ok[value: 5] |> WHEN {
	Ok[value] => value + 1,
	Err[msg] => 0
}
`)
	vals := drainNode(t, nodes["result"], 1, time.Second)
	require.Len(t, vals, 1)
	assert.Equal(t, Number(6), vals[0])
}

func TestEvaluateWhenFallsThroughToWildcard(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	nodes := evaluateSource(t, ctx, `
result: Err[msg: TEXT { boom }] |> WHEN {
	Ok[value] => value,
	_ => 0
}
`)
	vals := drainNode(t, nodes["result"], 1, time.Second)
	require.Len(t, vals, 1)
	assert.Equal(t, Number(0), vals[0])
}

func TestEvaluateLatestFansInBothArms(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	nodes := evaluateSource(t, ctx, `picked: LATEST { 1, 2 }`)
	// Both arms are single-shot constants racing to fire first; the first
	// value LATEST emits must be one of the two arms' values.
	vals := drainNode(t, nodes["picked"], 1, time.Second)
	require.Len(t, vals, 1)
	assert.Contains(t, []Value{Number(1), Number(2)}, vals[0])
}

func TestEvaluateFlushPassesThroughUnchanged(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	nodes := evaluateSource(t, ctx, `flushed: FLUSH { 1 + 2 }`)
	vals := drainNode(t, nodes["flushed"], 1, time.Second)
	require.Len(t, vals, 1)
	f, ok := IsFlushed(vals[0])
	require.True(t, ok)
	assert.Equal(t, Number(3), f.Inner)
}

func TestEvaluateBindingsSeeEarlierBindings(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	nodes := evaluateSource(t, ctx, `
a: 1
b: a + 1
`)
	vals := drainNode(t, nodes["b"], 1, time.Second)
	require.Len(t, vals, 1)
	assert.Equal(t, Number(2), vals[0])
}

func TestResolveScopesRejectsUndefinedName(t *testing.T) {
	lex, err := NewLexer("test.bn", `b: a + 1`)
	require.NoError(t, err)
	parser, err := NewParser(lex)
	require.NoError(t, err)
	prog, err := parser.ParseProgram("test.bn")
	require.NoError(t, err)

	err = ResolveScopes(prog)
	require.Error(t, err)
	var resolveErr *ResolveError
	assert.ErrorAs(t, err, &resolveErr)
}
