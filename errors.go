// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"errors"
	"fmt"
)

// Span identifies a region of source text for diagnostics.
type Span struct {
	Source string // source id, e.g. the module file name
	Line   int
	Column int
}

func (s Span) String() string {
	if s.Source == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.Source, s.Line, s.Column)
}

// LexError reports a malformed token. It is fatal: lexing stops at the
// first LexError, with no resynchronization.
type LexError struct {
	At      Span
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: lex error: %s", e.At, e.Message)
}

// ParseError reports an unexpected token. It is fatal: parsing stops at
// the first ParseError, with no resynchronization.
type ParseError struct {
	At       Span
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: expected %s, found %s", e.At, e.Expected, e.Found)
}

// ResolveError reports a scope or persistence resolution failure: an
// unknown identifier, a duplicate binding within a block, an unhandled
// `?` postfix, or a `PASSED` reference outside any `PASS` context.
type ResolveError struct {
	At      Span
	Message string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s", e.At, e.Message)
}

// MatchError reports a pattern match with no arm selected and no wildcard
// fallback (§4.3.2). This is a program bug, not a recoverable runtime
// value: the offending actor aborts.
type MatchError struct {
	At    Span
	Value string // rendered form of the unmatched value, for diagnostics
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("%s: no pattern arm matched %s and no wildcard was present", e.At, e.Value)
}

// InvariantError reports an engine invariant violation: a finite stream
// bound to a long-lived node, a subscription to an already-dropped actor,
// or any other condition that indicates a bug in the evaluator or
// combinator library rather than in the user's program. These abort the
// offending actor with a clear diagnostic rather than propagating silently.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("engine invariant violated (%s): %s", e.Invariant, e.Detail)
}

// As reports whether err (or any error it wraps) is of type T, mirroring
// [errors.As] without requiring the caller to declare a local variable at
// each call site. Used by [ClassifyEngineError].
func As[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// UnhandledUnplugged builds the error for a postfix `?` result that flows
// into anything other than a WHEN arm (§4.3). Nothing in this package
// returns it: the evaluator does not detect that case.
func UnhandledUnplugged(at Span) error {
	return &ResolveError{At: at, Message: "Unplugged value must be consumed by a WHEN arm before any other use"}
}
