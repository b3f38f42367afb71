// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from the github.com/bassosimone/runtimex call-site idiom used
// throughout this package's ancestor library (e.g. tls.go's
// runtimex.Assert(tlsConfig != nil), spanid.go's runtimex.PanicOnError1).
//

package boon

// Assert panics with msg if cond is false.
//
// Use this to validate engine invariants that indicate a bug in the
// evaluator or combinator library, never to validate user input or
// program data (those become [*InvariantError] values returned to the
// caller instead).
func Assert(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}

// PanicOnError1 panics if err is non-nil, otherwise returns v.
//
// Use this at call sites that can only fail due to a programming error
// (e.g. generating a [PersistenceId] fallback from a source of
// cryptographically-random bytes).
func PanicOnError1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
