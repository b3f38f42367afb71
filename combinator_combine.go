// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import "context"

// CombineLatest fans in every stream in arms and, once each arm has
// produced at least one value, emits f applied to the current value of
// every arm, recomputing on each new firing from any arm. This is the
// building block the evaluator uses to lower pure multi-operand
// constructs — binary operators, tag/list/object literals with dynamic
// fields — into the actor graph, the same way [Latest] lowers the
// explicit `LATEST { … }` surface form.
func CombineLatest(arms []Stream, f func(values []Value) Value) Stream {
	lifetime := Infinite
	for _, a := range arms {
		if a.Lifetime() == Finite {
			lifetime = Finite
		}
	}
	return &streamFunc{
		lifetime: lifetime,
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			if len(arms) == 0 {
				select {
				case out <- clock.Tick(f(nil)):
				case <-ctx.Done():
				}
				<-ctx.Done()
				return
			}
			current := make([]Value, len(arms))
			have := make([]bool, len(arms))
			haveCount := 0
			type tagged struct {
				idx int
				v   Value
			}
			merged := make(chan tagged)
			for i, a := range arms {
				i, a := i, a
				go func() {
					in := a.Open(ctx, clock)
					for {
						select {
						case env, ok := <-in:
							if !ok {
								return
							}
							select {
							case merged <- tagged{i, env.Payload}:
							case <-ctx.Done():
								return
							}
						case <-ctx.Done():
							return
						}
					}
				}()
			}
			for {
				select {
				case t := <-merged:
					if !have[t.idx] {
						have[t.idx] = true
						haveCount++
					}
					current[t.idx] = t.v
					if haveCount < len(arms) {
						continue
					}
					select {
					case out <- clock.Tick(f(current)):
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
