// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuesEqual(t *testing.T) {
	assert.True(t, ValuesEqual(Number(1), Number(1)))
	assert.False(t, ValuesEqual(Number(1), Number(2)))
	assert.True(t, ValuesEqual(Text("a"), Text("a")))
	assert.False(t, ValuesEqual(Number(1), Text("1")))
	assert.True(t, ValuesEqual(nil, nil))
	assert.False(t, ValuesEqual(Number(1), nil))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "<nil>", FormatValue(nil))
	assert.Equal(t, "True", FormatValue(Bool(true)))
	assert.Equal(t, "42", FormatValue(Number(42)))
}

func TestTagEquality(t *testing.T) {
	a := NewTag("Ok", map[string]Value{"value": Number(1)})
	b := NewTag("Ok", map[string]Value{"value": Number(1)})
	c := NewTag("Ok", map[string]Value{"value": Number(2)})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(NewTag("Err", nil)))
}

func TestTagFieldPunningRoundTrip(t *testing.T) {
	tag := NewTag("Active", map[string]Value{"at": Number(3)})
	v, ok := tag.Field("at")
	assert.True(t, ok)
	assert.Equal(t, Number(3), v)
	_, ok = tag.Field("missing")
	assert.False(t, ok)
}

func TestTagWithSpread(t *testing.T) {
	base := map[string]Value{"a": Number(1), "b": Number(2)}
	tag := NewTag("Point", map[string]Value{"b": Number(9)})
	merged := tag.WithSpread(base)
	a, _ := merged.Field("a")
	b, _ := merged.Field("b")
	assert.Equal(t, Number(1), a)
	assert.Equal(t, Number(9), b) // tag's own field wins over spread base
}

func TestNewErrorTag(t *testing.T) {
	tag := NewErrorTag("oops")
	msg, ok := tag.Field("msg")
	assert.True(t, ok)
	assert.Equal(t, Text("oops"), msg)
	assert.Equal(t, "Error", tag.Name)
}

func TestListEqualityIgnoresIdentity(t *testing.T) {
	a := NewList(Number(1), Number(2))
	b := NewList(Number(1), Number(2))
	assert.True(t, a.Equal(b)) // different minted ids, same content
	assert.NotEqual(t, a.Items[0].ID, b.Items[0].ID)
}

func TestListWithAppend(t *testing.T) {
	l := NewList(Number(1))
	producer := NewPersistenceID("test")
	appended := l.WithAppend(producer, Number(2))
	assert.Equal(t, 2, appended.Len())
	assert.Equal(t, 1, l.Len()) // original untouched
	assert.Equal(t, Number(2), appended.Items[1].Value)
}

func TestDiffListsSingleInsertAndRemove(t *testing.T) {
	producer := NewPersistenceID("list")
	base := NewList(Number(1), Number(2))
	inserted := base.WithAppend(producer, Number(3))

	ev := DiffLists(base, inserted)
	insert, ok := ev.(InsertAt)
	assert.True(t, ok)
	assert.Equal(t, 2, insert.Index)

	removed := &List{Items: inserted.Items[:2]}
	ev2 := DiffLists(inserted, removed)
	remove, ok := ev2.(RemoveItem)
	assert.True(t, ok)
	assert.Equal(t, inserted.Items[2].ID, remove.ID)
}

func TestDiffListsFallsBackToReplaceAll(t *testing.T) {
	a := NewList(Number(1), Number(2), Number(3))
	b := NewList(Number(9), Number(8))
	ev := DiffLists(a, b)
	_, ok := ev.(ReplaceAll)
	assert.True(t, ok)
}

func TestObjectSpreadLastWriteWins(t *testing.T) {
	base := NewObject([]string{"a", "b"}, map[string]Value{"a": Number(1), "b": Number(2)})
	override := NewObject([]string{"b"}, map[string]Value{"b": Number(99)})
	merged := override.WithSpread(base)
	a, _ := merged.Field("a")
	b, _ := merged.Field("b")
	assert.Equal(t, Number(1), a)
	assert.Equal(t, Number(99), b)
	assert.Equal(t, []string{"a", "b"}, merged.Order())
}

func TestObjectEqualityIgnoresOrder(t *testing.T) {
	a := NewObject([]string{"x", "y"}, map[string]Value{"x": Number(1), "y": Number(2)})
	b := NewObject([]string{"y", "x"}, map[string]Value{"y": Number(2), "x": Number(1)})
	assert.True(t, a.Equal(b))
}

func TestBitsMaskingAndEquality(t *testing.T) {
	b := NewBits(4, false, 0b11111)
	assert.Equal(t, uint64(0b1111), b.Payload)
	other := NewBits(4, false, 0b1111)
	assert.True(t, b.Equal(other))
}

func TestBitsToNumberSignExtends(t *testing.T) {
	neg := NewBits(4, true, 0b1000) // -8 in 4-bit two's complement
	assert.Equal(t, Number(-8), neg.ToNumber())

	pos := NewBits(4, true, 0b0111)
	assert.Equal(t, Number(7), pos.ToNumber())

	unsigned := NewBits(4, false, 0b1000)
	assert.Equal(t, Number(8), unsigned.ToNumber())
}

func TestBitsUSFromNumberRoundTrip(t *testing.T) {
	u := BitsUFromNumber(Number(200), 8)
	assert.Equal(t, Number(200), u.ToNumber())

	s := BitsSFromNumber(Number(-5), 8)
	assert.Equal(t, Number(-5), s.ToNumber())
}

func TestBitsDecomposeFixedWidths(t *testing.T) {
	b := NewBits(8, false, 0b10110010)
	parts, ok := b.Decompose([]int{4, 4})
	assert.True(t, ok)
	assert.Equal(t, uint64(0b1011), parts[0])
	assert.Equal(t, uint64(0b0010), parts[1])
}

func TestBitsDecomposeWildcardLast(t *testing.T) {
	b := NewBits(8, false, 0b10110010)
	parts, ok := b.Decompose([]int{4, -1})
	assert.True(t, ok)
	assert.Equal(t, uint64(0b1011), parts[0])
	assert.Equal(t, uint64(0b0010), parts[1])
}

func TestBitsDecomposeRejectsOverflow(t *testing.T) {
	b := NewBits(4, false, 0b1010)
	_, ok := b.Decompose([]int{4, 4})
	assert.False(t, ok)
}

func TestFlushRoundTrip(t *testing.T) {
	f := Flush(Number(5))
	assert.Equal(t, Number(5), Unwrap(f))
	assert.Equal(t, Number(5), Unwrap(Number(5))) // non-flushed passes through

	got, ok := IsFlushed(f)
	assert.True(t, ok)
	assert.Equal(t, Number(5), got.Inner)

	_, ok = IsFlushed(Number(5))
	assert.False(t, ok)
}
