// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import "fmt"

// Bits is a bit-precise integer with explicit width and signedness (§3).
// Payload holds the raw bit pattern, always masked to Width bits.
//
// Boon's `BITS { width, base[s|u]digits }` literal and its pattern form
// `BITS { width, { field… } }` both produce/match this type; see
// [ParseBitsLiteral] and [*Bits.Decompose].
type Bits struct {
	Width   int
	Signed  bool
	Payload uint64
}

func (*Bits) isValue() {}

// NewBits constructs a [*Bits], masking payload to width bits.
func NewBits(width int, signed bool, payload uint64) *Bits {
	Assert(width > 0 && width <= 64, "boon: Bits width must be in (0, 64]")
	return &Bits{Width: width, Signed: signed, Payload: maskTo(payload, width)}
}

func maskTo(v uint64, width int) uint64 {
	if width >= 64 {
		return v
	}
	return v & ((uint64(1) << uint(width)) - 1)
}

// Equal implements [Value]. Two Bits are equal iff width, signedness, and
// masked payload all match.
func (b *Bits) Equal(other Value) bool {
	o, ok := other.(*Bits)
	return ok && b.Width == o.Width && b.Signed == o.Signed && b.Payload == o.Payload
}

// String implements [Value].
func (b *Bits) String() string {
	sign := "u"
	if b.Signed {
		sign = "s"
	}
	return fmt.Sprintf("BITS { %d, 10%s%d }", b.Width, sign, b.Payload)
}

// ToNumber implements `Bits/to_number`: interprets Payload as a signed or
// unsigned integer per b.Signed, sign-extending from b.Width when signed.
func (b *Bits) ToNumber() Number {
	if !b.Signed {
		return Number(b.Payload)
	}
	signBit := uint64(1) << uint(b.Width-1)
	if b.Payload&signBit == 0 {
		return Number(b.Payload)
	}
	// Sign-extend: fill the high bits above Width with 1s, then reinterpret
	// as a two's-complement int64.
	extended := b.Payload | ^((uint64(1) << uint(b.Width)) - 1)
	return Number(int64(extended))
}

// BitsUFromNumber implements `Bits/u_from_number(width:)`: truncates n to
// an unsigned integer of the given width.
func BitsUFromNumber(n Number, width int) *Bits {
	return NewBits(width, false, uint64(int64(n)))
}

// BitsSFromNumber implements `Bits/s_from_number(width:)`: truncates n to
// a signed (two's-complement) integer of the given width.
func BitsSFromNumber(n Number, width int) *Bits {
	return NewBits(width, true, uint64(int64(n)))
}

// Decompose implements the `BITS { width, { field… } }` pattern form
// (§4.3.2): splits Payload into consecutive bit fields of the given
// widths, most-significant field first. At most the last width may be the
// wildcard sentinel -1 ("__"), which consumes every remaining bit. Returns
// false if the non-wildcard widths don't fit within b.Width, or if a
// wildcard appears anywhere but last.
func (b *Bits) Decompose(widths []int) ([]uint64, bool) {
	sum := 0
	for i, w := range widths {
		if w == -1 {
			if i != len(widths)-1 {
				return nil, false
			}
			continue
		}
		sum += w
	}
	if sum > b.Width {
		return nil, false
	}

	out := make([]uint64, len(widths))
	remaining := b.Width
	shift := b.Width
	for i, w := range widths {
		fieldWidth := w
		if w == -1 {
			fieldWidth = remaining
		}
		shift -= fieldWidth
		out[i] = maskTo(b.Payload>>uint(shift), fieldWidth)
		remaining -= fieldWidth
	}
	return out, true
}
