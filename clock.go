// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import "sync/atomic"

// Envelope is the message passed between nodes: `{ payload: Value,
// lamport_time: u64 }` (§3). The logical clock is incremented on every
// emission and used to break ordering ambiguity between independent
// sources (§4.4.3, §5) and to implement deterministic replay in tests.
type Envelope struct {
	Payload     Value
	LamportTime uint64
}

// Clock is the process-wide monotonically increasing Lamport counter
// (§4.4.3). It is one of the engine's two process-global resources (the
// other is the [VFS] module registry); both have short, well-defined
// contention windows (§5 "Shared-resource policy").
type Clock struct {
	counter atomic.Uint64
}

// NewClock returns a [*Clock] starting at start (0 for a fresh run; a
// resumed value for deterministic-replay tests that continue a recorded
// event script).
func NewClock(start uint64) *Clock {
	c := &Clock{}
	c.counter.Store(start)
	return c
}

// Tick increments the clock and stamps a fresh [Envelope] carrying
// payload. Called once per emission; propagated unchanged through pure
// transformations and re-stamped on stateful operations (§4.4.3).
func (c *Clock) Tick(payload Value) Envelope {
	t := c.counter.Add(1)
	return Envelope{Payload: payload, LamportTime: t}
}

// Now returns the current counter value without incrementing it, useful
// for diagnostics.
func (c *Clock) Now() uint64 {
	return c.counter.Load()
}

// Before reports whether env1 precedes env2 under the engine's global
// ordering: lamport time first, [PersistenceId] lexicographic order to
// break exact ties (§4.3.3's ordering policy, §8 S6, Open Question 1).
// id1/id2 identify the emitting nodes.
func Before(env1 Envelope, id1 PersistenceId, env2 Envelope, id2 PersistenceId) bool {
	if env1.LamportTime != env2.LamportTime {
		return env1.LamportTime < env2.LamportTime
	}
	return id1.Less(id2)
}
