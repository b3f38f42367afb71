// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import "context"

// Then implements `x |> THEN { body }` (§4.3, §6 glossary: "a transform
// that ignores the piped value"): on every fire of input, body is
// re-invoked from scratch (it receives the firing count, in case a body
// needs to distinguish successive firings, e.g. the counter scenario's
// `increment_event |> THEN { c + 1 }`) and its single emission becomes
// Then's output for that firing.
func Then(input Stream, body func(firing int) Stream) Stream {
	return &streamFunc{
		lifetime: input.Lifetime(),
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			in := input.Open(ctx, clock)
			firing := 0
			for {
				select {
				case _, ok := <-in:
					if !ok {
						return
					}
					b := body(firing)
					firing++
					bin := b.Open(ctx, clock)
					select {
					case env, ok := <-bin:
						if !ok {
							continue
						}
						select {
						case out <- clock.Tick(env.Payload):
						case <-ctx.Done():
							return
						}
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
