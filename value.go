// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"fmt"
	"strconv"
)

// Value is the universal runtime datum (§3 of the design notes carried
// from the source specification): a tagged union of [Number], [Bool],
// [Text], [*Tag], [*List], [*Object], [*Bits], [Unplugged], and
// [*Flushed].
//
// Every Value other than [Unplugged] and [*Flushed] is a first-class,
// structurally compared citizen: equality is structural, [Text] compares
// by content, [*List] elements are ordered.
type Value interface {
	isValue()

	// Equal reports whether this value is structurally equal to other.
	Equal(other Value) bool

	// String renders the value for diagnostics and TEXT interpolation.
	String() string
}

// Number is a double-precision floating point value.
type Number float64

func (Number) isValue() {}

// Equal implements [Value].
func (n Number) Equal(other Value) bool {
	o, ok := other.(Number)
	return ok && n == o
}

// String implements [Value].
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// Bool is a boolean value.
type Bool bool

func (Bool) isValue() {}

// Equal implements [Value].
func (b Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && b == o
}

// String implements [Value].
func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}

// Text is an immutable string. Content, not identity, determines equality;
// sharing the underlying Go string is encouraged but not required.
type Text string

func (Text) isValue() {}

// Equal implements [Value].
func (t Text) Equal(other Value) bool {
	o, ok := other.(Text)
	return ok && t == o
}

// String implements [Value].
func (t Text) String() string {
	return string(t)
}

// Unplugged is the sole absence marker, produced only by postfix `?`. It
// may never be stored in a binding without being pattern-matched away
// first (see [UnhandledUnplugged]).
type Unplugged struct{}

func (Unplugged) isValue() {}

// Equal implements [Value].
func (Unplugged) Equal(other Value) bool {
	_, ok := other.(Unplugged)
	return ok
}

// String implements [Value].
func (Unplugged) String() string {
	return "Unplugged"
}

// ValuesEqual is a nil-safe structural equality check between two Values.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// mustValue panics if v is nil; used internally where nil would indicate
// an evaluator bug rather than a representable program value.
func mustValue(v Value) Value {
	Assert(v != nil, "boon: nil Value")
	return v
}

// FormatValue is a convenience wrapper around [Value.String] used by
// diagnostics and logging call sites, so the nil case doesn't need
// repeating at each one.
func FormatValue(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprint(v)
}
