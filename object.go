// SPDX-License-Identifier: GPL-3.0-or-later

package boon

// Object is a mapping from field name to [Value]. Insertion order is
// preserved for display only (§3) — equality never depends on it.
type Object struct {
	order  []string
	fields map[string]Value
}

func (*Object) isValue() {}

// NewObject builds an [*Object] from fields, in the given display order.
// Fields not mentioned in order are appended in map iteration order (only
// relevant for malformed callers; evaluator call sites always pass a
// complete order slice).
func NewObject(order []string, fields map[string]Value) *Object {
	seen := make(map[string]bool, len(order))
	out := make([]string, 0, len(fields))
	for _, k := range order {
		if _, ok := fields[k]; ok && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	for k := range fields {
		if !seen[k] {
			out = append(out, k)
		}
	}
	return &Object{order: out, fields: fields}
}

// Field returns the named field and whether it is present.
func (o *Object) Field(name string) (Value, bool) {
	v, ok := o.fields[name]
	return v, ok
}

// Order returns the field names in display order.
func (o *Object) Order() []string {
	return append([]string(nil), o.order...)
}

// Equal implements [Value]: objects are equal iff they have the same
// field set with structurally equal values; order never affects equality.
func (o *Object) Equal(other Value) bool {
	p, ok := other.(*Object)
	if !ok || len(o.fields) != len(p.fields) {
		return false
	}
	for k, v := range o.fields {
		pv, ok := p.fields[k]
		if !ok || !ValuesEqual(v, pv) {
			return false
		}
	}
	return true
}

// String implements [Value].
func (o *Object) String() string {
	s := "{ "
	for i, k := range o.order {
		if i > 0 {
			s += ", "
		}
		s += k + ": " + FormatValue(o.fields[k])
	}
	return s + " }"
}

// WithSpread implements the `{ ...base, field: value, … }` merge rule
// (§4.3): base fields first, o's own fields override on conflict
// ("last write wins"). Spreading [Unplugged] is the empty record, so a
// nil base behaves as the identity.
func (o *Object) WithSpread(base *Object) *Object {
	order := []string{}
	fields := map[string]Value{}
	if base != nil {
		order = append(order, base.order...)
		for k, v := range base.fields {
			fields[k] = v
		}
	}
	for _, k := range o.order {
		if _, ok := fields[k]; !ok {
			order = append(order, k)
		}
		fields[k] = o.fields[k]
	}
	return &Object{order: order, fields: fields}
}
