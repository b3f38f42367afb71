// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"log/slog"
)

// WhenArm is one arm of a `WHEN`/`WHILE` pattern match (§4.3): Match
// reports whether v matches this arm's pattern, returning the bindings
// the pattern introduces (e.g. a TAG's fields); Eval computes the arm's
// result from those bindings. IsDefault marks the `__` wildcard arm,
// which matches unconditionally and must appear last in source order.
type WhenArm struct {
	Match     func(v Value) (bindings map[string]Value, ok bool)
	Eval      func(bindings map[string]Value) Value
	IsDefault bool
}

// When implements `x |> WHEN { p => e, … }` and `WHILE` (§4.3, §4.3's
// "Pattern match" entry): for each value input emits, it selects the
// first matching arm in source order and emits the evaluation of its
// body. WHILE shares identical matching semantics with WHEN — the
// distinction is purely conventional (WHILE as a reactive
// conditional/filter with a `NoElement` default arm); both lower to this
// same function.
//
// A [*Flushed] input that no arm explicitly matches propagates
// transparently, unmodified (§4.3.1, Open Question 4): intermediate
// non-WHEN transforms must never unwrap or inspect it, and WHEN is no
// exception unless one of its arms explicitly matches on Flushed values.
//
// An input matching no arm, with no default (`__`) arm present, aborts
// the stream with a [*MatchError] logged and the stream closing — there
// is no silent drop (§4.3's "unmatched patterns … abort with
// MatchError").
func When(input Stream, arms []WhenArm, errSpan Span, logger SLogger, errCl ErrClassifier) Stream {
	return &streamFunc{
		lifetime: input.Lifetime(),
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			in := input.Open(ctx, clock)
			for {
				select {
				case env, ok := <-in:
					if !ok {
						return
					}
					result, matched := evalWhenArms(env.Payload, arms)
					if !matched {
						err := &MatchError{At: errSpan, Value: FormatValue(env.Payload)}
						if logger != nil {
							class := ""
							if errCl != nil {
								class = errCl.Classify(err)
							}
							logger.Warn("whenMatchError",
								slog.String("err", err.Error()),
								slog.String("errClass", class),
							)
						}
						return
					}
					select {
					case out <- clock.Tick(result):
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		},
	}
}

// evalWhenArms runs v through arms in order, returning the first match's
// evaluated result. A Flushed v with no explicit match passes through
// unchanged. A v matching no arm and no default returns ok=false; the
// caller is responsible for surfacing the MatchError.
func evalWhenArms(v Value, arms []WhenArm) (Value, bool) {
	_, flushed := IsFlushed(v)
	for _, arm := range arms {
		if arm.IsDefault {
			if flushed {
				break
			}
			return arm.Eval(nil), true
		}
		if bindings, ok := arm.Match(v); ok {
			return arm.Eval(bindings), true
		}
	}
	if flushed {
		return v, true
	}
	return nil, false
}

// While is an alias for [When], named separately to mirror the surface
// syntax's two keywords (§4.3, §6 glossary: "WHILE is conventionally used
// for conditional UI rendering with NoElement arms").
func While(input Stream, arms []WhenArm, errSpan Span, logger SLogger, errCl ErrClassifier) Stream {
	return When(input, arms, errSpan, logger, errCl)
}
