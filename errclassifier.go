// SPDX-License-Identifier: GPL-3.0-or-later

package boon

// ErrClassifier classifies errors into categorical strings for analysis.
//
// Implementations map errors to short, descriptive labels (e.g.,
// "lifetime-violation", "match-error") that facilitate systematic analysis
// of engine diagnostics and runtime domain errors.
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
//
// This allows using simple functions as classifiers:
//
//	cfg.ErrClassifier = ErrClassifierFunc(ClassifyEngineError)
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// DefaultErrClassifier is a no-op classifier that returns an empty string.
var DefaultErrClassifier = ErrClassifierFunc(func(error) string { return "" })

// ClassifyEngineError labels the engine's own error taxonomy
// ([*LexError], [*ParseError], [*ResolveError], [*MatchError],
// [*InvariantError]) for structured logging. Errors outside that taxonomy
// classify as "".
func ClassifyEngineError(err error) string {
	switch {
	case err == nil:
		return ""
	case As[*LexError](err):
		return "lex-error"
	case As[*ParseError](err):
		return "parse-error"
	case As[*ResolveError](err):
		return "resolve-error"
	case As[*MatchError](err):
		return "match-error"
	case As[*InvariantError](err):
		return "invariant-error"
	default:
		return ""
	}
}
