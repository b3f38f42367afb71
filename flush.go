// SPDX-License-Identifier: GPL-3.0-or-later

package boon

// Flushed is the hidden wrapper produced by `FLUSH { value }` (§4.3.1).
// It propagates transparently through function calls and stream
// combinators: only binding to a named variable and returning from a
// function unwrap it. User code never constructs or inspects a Flushed
// directly — it is invisible to everything except the two unwrap points
// and the arms of an explicit WHEN that matches on it.
type Flushed struct {
	Inner Value
}

func (*Flushed) isValue() {}

// Equal implements [Value].
func (f *Flushed) Equal(other Value) bool {
	o, ok := other.(*Flushed)
	return ok && ValuesEqual(f.Inner, o.Inner)
}

// String implements [Value].
func (f *Flushed) String() string {
	return "FLUSH { " + FormatValue(f.Inner) + " }"
}

// Flush wraps v as a [*Flushed], implementing the `FLUSH { value }`
// expression form.
func Flush(v Value) *Flushed {
	return &Flushed{Inner: v}
}

// Unwrap removes one layer of [*Flushed] wrapping. Called exactly at the
// two points named in §4.3.1: binding a named variable, and returning
// from a function body. Values that are not Flushed pass through
// unchanged — there is no "uncaught" state (§7).
func Unwrap(v Value) Value {
	if f, ok := v.(*Flushed); ok {
		return f.Inner
	}
	return v
}

// IsFlushed reports whether v is a [*Flushed], and returns its inner
// value. Intermediate combinators that are not an explicit WHEN arm use
// this only to decide whether to re-emit unchanged (§4.3.1) — they must
// never unwrap or otherwise inspect the inner value (Open Question 4).
func IsFlushed(v Value) (*Flushed, bool) {
	f, ok := v.(*Flushed)
	return f, ok
}
