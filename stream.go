// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import "context"

// Lifetime marks whether a [Stream] may terminate.
type Lifetime int

const (
	// Infinite streams never terminate. Only Infinite streams may be
	// bound to a long-lived [Node] (§3, §4.4.4) — the single most
	// important invariant in the engine.
	Infinite Lifetime = iota
	// Finite streams may terminate. A Finite stream must be explicitly
	// extended via [KeepAlive] before being bound to a long-lived Node.
	Finite
)

// Stream is a typed, push-only asynchronous sequence of [Value] (§3).
// Implementations open a fresh, independent run on every call to Open —
// [ConstantStream], for instance, emits its one value anew each time it
// is opened, which is what lets the same literal expression back more
// than one [Node] instantiation (e.g. re-instantiated function bodies).
type Stream interface {
	// Lifetime reports whether this stream may terminate.
	Lifetime() Lifetime

	// Open starts producing into a freshly created channel, which is
	// closed when the stream is exhausted (Finite) or never (Infinite).
	// The returned channel is unbuffered from the stream's perspective;
	// callers decide their own buffering via the consuming goroutine.
	Open(ctx context.Context, clock *Clock) <-chan Envelope
}

// streamFunc adapts a plain generator function to [Stream].
type streamFunc struct {
	lifetime Lifetime
	run      func(ctx context.Context, clock *Clock, out chan<- Envelope)
}

func (s *streamFunc) Lifetime() Lifetime { return s.lifetime }

func (s *streamFunc) Open(ctx context.Context, clock *Clock) <-chan Envelope {
	out := make(chan Envelope)
	go func() {
		defer close(out)
		s.run(ctx, clock, out)
	}()
	return out
}

// ConstantStream implements the `constant(v)` primitive (§4.4.4): emits v
// exactly once, then the stream's goroutine parks forever without
// closing the channel — "pending forever" — which is why ConstantStream
// reports [Infinite] even though it only ever emits a single value. This
// is the lowering target for Literal expressions (§4.3) and for a bare
// value among `LATEST { … }` arms (Open Question 2).
func ConstantStream(v Value) Stream {
	return &streamFunc{
		lifetime: Infinite,
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			select {
			case out <- clock.Tick(v):
			case <-ctx.Done():
				return
			}
			<-ctx.Done()
		},
	}
}

// SliceStream emits each value in vs in order, then terminates — a
// [Finite] stream. This is the lowering target for [Pulses] before
// `keep_alive` wrapping.
func SliceStream(vs ...Value) Stream {
	return &streamFunc{
		lifetime: Finite,
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			for _, v := range vs {
				select {
				case out <- clock.Tick(v):
				case <-ctx.Done():
					return
				}
			}
		},
	}
}

// KeepAlive converts a [Finite] stream into an [Infinite] one by letting
// its goroutine park forever, rather than closing its channel, once the
// wrapped stream is exhausted (§4.4.4). Use this to relax the
// stream-lifetime discipline when the programmer knows the actor must
// outlive the stream's natural end (e.g. a [Pulses] source feeding a
// HOLD that should hold its final value forever after the pulses stop).
func KeepAlive(inner Stream) Stream {
	return &streamFunc{
		lifetime: Infinite,
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			src := inner.Open(ctx, clock)
			for {
				select {
				case env, ok := <-src:
					if !ok {
						<-ctx.Done()
						return
					}
					select {
					case out <- env:
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

// MapStream applies f to every emission of inner, re-stamping the result
// with a fresh lamport tick (stateful re-stamping per §4.4.3) while
// preserving inner's lifetime.
func MapStream(inner Stream, f func(Value) Value) Stream {
	return &streamFunc{
		lifetime: inner.Lifetime(),
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			src := inner.Open(ctx, clock)
			for {
				select {
				case env, ok := <-src:
					if !ok {
						return
					}
					select {
					case out <- clock.Tick(f(env.Payload)):
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

// AssertInfinite panics with an [*InvariantError]-carrying message if s is
// not [Infinite]. The stream-lifetime discipline (§4.4.4) is enforced by
// the host language's type system in the source specification; in this
// Go rendering it is enforced here, at the one call site
// ([NewNode]) that constructs a long-lived actor from a source stream.
func AssertInfinite(s Stream) {
	if s.Lifetime() != Infinite {
		panic(&InvariantError{
			Invariant: "stream-lifetime",
			Detail:    "a Node may only be constructed from an Infinite stream; wrap with KeepAlive first",
		})
	}
}
