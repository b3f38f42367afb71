// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import "context"

// Latest implements `LATEST { s1, s2, … }` (§4.3): a single stream that
// fans in every listed arm and emits whichever produced most recently,
// breaking exact-lamport-time ties with the [PersistenceId] assigned to
// each arm (Open Question 1, [Before]). It is non-self-reactive — the
// stream never observes its own emissions, since it only ever reads from
// arms, never from its own output.
//
// A bare value used among LATEST's arms lowers to [ConstantStream] before
// reaching Latest (Open Question 2): it becomes one more input that fires
// exactly once, so it behaves as the initial value until a later arm
// fires.
//
// With no arms, Latest never emits (§8 "edge cases"); its Lifetime is
// still Infinite, since an empty LATEST is syntactically valid and must
// remain subscribable.
func Latest(arms []Stream, ids []PersistenceId) Stream {
	return &streamFunc{
		lifetime: Infinite,
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			if len(arms) == 0 {
				<-ctx.Done()
				return
			}
			type tagged struct {
				env Envelope
				id  PersistenceId
			}
			merged := make(chan tagged)
			for i, arm := range arms {
				i, arm := i, arm
				go func() {
					id := PersistenceId{}
					if i < len(ids) {
						id = ids[i]
					}
					in := arm.Open(ctx, clock)
					for {
						select {
						case env, ok := <-in:
							if !ok {
								return
							}
							select {
							case merged <- tagged{env, id}:
							case <-ctx.Done():
								return
							}
						case <-ctx.Done():
							return
						}
					}
				}()
			}
			var last *tagged
			for {
				select {
				case t := <-merged:
					if last == nil || Before(last.env, last.id, t.env, t.id) {
						c := t
						last = &c
					}
					select {
					case out <- last.env:
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
