// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lintSource(t *testing.T, src string) []Warning {
	t.Helper()
	prog, ids := mustParseAndResolve(t, src)
	ev := NewEvaluator(ids, nil, nil, nil, nil)
	return ev.Lint(prog)
}

func TestLintFlagsUnboundedHoldAppend(t *testing.T) {
	warnings := lintSource(t, `
history: LIST { } |> HOLD history { history |> List/append(item: 1) }
`)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "history")
}

func TestLintIgnoresBoundedHold(t *testing.T) {
	warnings := lintSource(t, `
counter: 0 |> HOLD counter { counter + 1 }
`)
	assert.Empty(t, warnings)
}

func TestLintFlagsAppendInsideBlockResult(t *testing.T) {
	warnings := lintSource(t, `
log: LIST { } |> HOLD log {
	entry: 1
	log |> List/append(item: entry)
}
`)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "log")
}

func TestLintIgnoresAppendOfSomethingElse(t *testing.T) {
	warnings := lintSource(t, `
other: LIST { 1, 2 }
log: LIST { } |> HOLD log { other |> List/append(item: 1) }
`)
	assert.Empty(t, warnings)
}
