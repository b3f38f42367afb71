// SPDX-License-Identifier: GPL-3.0-or-later

package boon

// Pulses implements `PULSES { N }` (§4.3, §6 glossary: "a finite event
// source emitting unit N times"): emits the unit value [TagUnit] exactly
// n times in sequence, then closes — a [Finite] stream, since the pulses
// themselves terminate. The evaluator does not wrap it in [KeepAlive], so
// binding it directly to a [Node] fails [AssertInfinite].
//
// n <= 0 produces a stream that closes immediately without emitting.
func Pulses(n int) Stream {
	if n <= 0 {
		return SliceStream()
	}
	vs := make([]Value, n)
	for i := range vs {
		vs[i] = TagUnit()
	}
	return SliceStream(vs...)
}
