// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import "context"

// HoldBody is the function that a [Hold] node evaluates, lazily, to
// produce its next committed value. current is the value most recently
// committed (initial on the first call). The returned [Stream] is
// expected to be [Finite] and to emit at most one value — the HOLD loop
// pulls a single value from it and discards the rest of its lifecycle,
// re-instantiating a fresh body for the next round (§4.3's laziness
// requirement: "the HOLD node pulls a single value from body before
// committing, so intermediate reads of name observe the most recent
// committed value and not a stale snapshot").
type HoldBody func(current Value) Stream

// Hold implements `initial |> HOLD name { body }` (§4.3, §8 scenarios
// S1/S4): a stateful accumulator. The returned stream emits initial
// first, then on every fire of body emits the new value and stores it as
// the new current value fed back into the next call to body.
//
// repeat tells Hold whether body is capable of firing more than once.
// A body with no external event source of its own — no LINK, THEN, or
// PULSES, just arithmetic over literals and the self-reference — fires
// immediately the instant it is built, on every round, forever; looping
// would never converge. Such a body is evaluated exactly once: Hold
// commits the single value it produces and then holds it (§8 S4: "no
// infinite loop, evaluates body once"). When repeat is true, Hold
// re-instantiates body after every commit, so a genuinely event-driven
// body keeps firing once per external event.
//
// If body never fires at all, Hold emits initial exactly once and then
// holds forever (§8 "edge cases") — it never closes, matching the
// Infinite lifetime every Hold node requires.
func Hold(initial Value, repeat bool, body HoldBody) Stream {
	return &streamFunc{
		lifetime: Infinite,
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			state := initial
			select {
			case out <- clock.Tick(state):
			case <-ctx.Done():
				return
			}
			for {
				next := body(state)
				in := next.Open(ctx, clock)
				select {
				case env, ok := <-in:
					if !ok {
						// body exhausted without firing: hold current value forever.
						<-ctx.Done()
						return
					}
					state = env.Payload
					select {
					case out <- clock.Tick(state):
					case <-ctx.Done():
						return
					}
					if !repeat {
						<-ctx.Done()
						return
					}
				case <-ctx.Done():
					return
				}
			}
		},
	}
}
