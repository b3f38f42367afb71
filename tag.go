// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"sort"
	"strings"
	"sync"
)

// Tag is a PascalCase constructor value, optionally carrying named fields
// (e.g. `Active`, `InputInterior[focus: f]`). Fields is empty for bare
// tags. Tag.Name is an interned identifier (see [internTagName]).
type Tag struct {
	Name   string
	Fields map[string]Value
}

func (*Tag) isValue() {}

// NewTag constructs a [*Tag], interning its name.
func NewTag(name string, fields map[string]Value) *Tag {
	if fields == nil {
		fields = map[string]Value{}
	}
	return &Tag{Name: internTagName(name), Fields: fields}
}

// Field returns the named field and whether it is present.
func (t *Tag) Field(name string) (Value, bool) {
	v, ok := t.Fields[name]
	return v, ok
}

// Equal implements [Value]. Two tags are equal iff their names match and
// every field compares equal; field iteration order never affects the
// result.
func (t *Tag) Equal(other Value) bool {
	o, ok := other.(*Tag)
	if !ok || t.Name != o.Name || len(t.Fields) != len(o.Fields) {
		return false
	}
	for k, v := range t.Fields {
		ov, ok := o.Fields[k]
		if !ok || !ValuesEqual(v, ov) {
			return false
		}
	}
	return true
}

// String implements [Value], rendering `Name` or `Name[field: value, …]`
// with fields sorted for deterministic diagnostics output.
func (t *Tag) String() string {
	if len(t.Fields) == 0 {
		return t.Name
	}
	names := make([]string, 0, len(t.Fields))
	for k := range t.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(t.Name)
	b.WriteByte('[')
	for i, n := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n)
		b.WriteString(": ")
		b.WriteString(FormatValue(t.Fields[n]))
	}
	b.WriteByte(']')
	return b.String()
}

// WithSpread returns a copy of t with base's fields merged in, base fields
// written first, t's fields overriding on conflict (§4.3 spread
// semantics: "last write wins"). Passing a nil base is the identity.
func (t *Tag) WithSpread(base map[string]Value) *Tag {
	merged := make(map[string]Value, len(base)+len(t.Fields))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range t.Fields {
		merged[k] = v
	}
	return &Tag{Name: t.Name, Fields: merged}
}

// tagInternTable interns tag names so repeated construction of the same
// constructor (e.g. `Ok` emitted per list element) shares one string
// header, matching the "Tag.name is an interned identifier" invariant.
var tagInternTable = struct {
	mu    sync.Mutex
	names map[string]string
}{names: map[string]string{}}

func internTagName(name string) string {
	tagInternTable.mu.Lock()
	defer tagInternTable.mu.Unlock()
	if interned, ok := tagInternTable.names[name]; ok {
		return interned
	}
	tagInternTable.names[name] = name
	return name
}

// Well-known tags used pervasively by the stdlib and the evaluator's
// error surface (§6).
var (
	TagUnit = func() *Tag { return NewTag("Unit", nil) }
)

// NewErrorTag builds the `Error[msg: Text]` tag named in §6's error
// surface.
func NewErrorTag(msg string) *Tag {
	return NewTag("Error", map[string]Value{"msg": Text(msg)})
}

// NewReadErrorTag builds a `ReadError[message: Text]` tag, the example
// domain error used throughout §8's scenarios.
func NewReadErrorTag(message string) *Tag {
	return NewTag("ReadError", map[string]Value{"message": Text(message)})
}
