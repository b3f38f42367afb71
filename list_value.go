// SPDX-License-Identifier: GPL-3.0-or-later

package boon

// ListItem pairs a [Value] with the stable [PersistenceId] that identifies
// it for fine-grained diffing (§3, §4.3.3).
type ListItem struct {
	ID    PersistenceId
	Value Value
}

// List is an ordered sequence of [Value]; each element carries a stable
// [PersistenceId] for identity-sensitive diffing.
type List struct {
	Items []ListItem
}

func (*List) isValue() {}

// NewList builds a [*List] from plain values, minting a fresh item
// identity for each one. Use this for literal `LIST { … }` construction;
// producers that need stable identity across recomputation should build
// Items directly.
func NewList(items ...Value) *List {
	lst := &List{Items: make([]ListItem, len(items))}
	for i, v := range items {
		lst.Items[i] = ListItem{ID: PersistenceId{Source: "literal", Ordinal: freshOrdinal()}, Value: v}
	}
	return lst
}

// Len returns the number of elements.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

// Values returns the plain [Value] slice, discarding identity.
func (l *List) Values() []Value {
	if l == nil {
		return nil
	}
	out := make([]Value, len(l.Items))
	for i, it := range l.Items {
		out[i] = it.Value
	}
	return out
}

// Equal implements [Value]: lists are equal iff their elements are equal
// in order (identity is not part of equality — only content is).
func (l *List) Equal(other Value) bool {
	o, ok := other.(*List)
	if !ok || l.Len() != o.Len() {
		return false
	}
	for i := range l.Items {
		if !ValuesEqual(l.Items[i].Value, o.Items[i].Value) {
			return false
		}
	}
	return true
}

// String implements [Value].
func (l *List) String() string {
	s := "LIST { "
	for i, it := range l.Items {
		if i > 0 {
			s += ", "
		}
		s += FormatValue(it.Value)
	}
	return s + " }"
}

// WithAppend returns a new [*List] with v appended, minting v a fresh
// identity derived from producerID (used by the `List/append` lowering,
// e.g. in HOLD accumulator bodies that grow a list).
func (l *List) WithAppend(producerID PersistenceId, v Value) *List {
	items := make([]ListItem, l.Len()+1)
	copy(items, l.Items)
	items[l.Len()] = ListItem{ID: producerID.ListItemID(""), Value: v}
	return &List{Items: items}
}

// ListDiffEvent is one of the incremental list-change notifications
// consumed by downstream list operations (§3): [InsertAt], [RemoveItem],
// [ReplaceAll], [MoveItem], or [UpdateItem].
type ListDiffEvent interface {
	isListDiffEvent()
}

// InsertAt inserts item at index.
type InsertAt struct {
	Index int
	Item  ListItem
}

func (InsertAt) isListDiffEvent() {}

// RemoveItem removes the item with the given identity.
type RemoveItem struct {
	ID PersistenceId
}

func (RemoveItem) isListDiffEvent() {}

// ReplaceAll replaces the entire list contents.
type ReplaceAll struct {
	Full *List
}

func (ReplaceAll) isListDiffEvent() {}

// MoveItem moves the element at From to To.
type MoveItem struct {
	From, To int
}

func (MoveItem) isListDiffEvent() {}

// UpdateItem replaces the value of the item with the given identity.
type UpdateItem struct {
	ID   PersistenceId
	Item Value
}

func (UpdateItem) isListDiffEvent() {}

// DiffLists computes the [ListDiffEvent] to emit when list contents
// change from prev to next, implementing the "smart diffing" optimization
// (§4.3.3 item 5): if the only difference is a single element's presence
// flipping, emit [InsertAt]/[RemoveItem]; otherwise fall back to
// [ReplaceAll].
func DiffLists(prev, next *List) ListDiffEvent {
	prevIdx := indexByID(prev)
	nextIdx := indexByID(next)

	var inserted, removed []PersistenceId
	for id := range nextIdx {
		if _, ok := prevIdx[id]; !ok {
			inserted = append(inserted, id)
		}
	}
	for id := range prevIdx {
		if _, ok := nextIdx[id]; !ok {
			removed = append(removed, id)
		}
	}

	switch {
	case len(inserted) == 1 && len(removed) == 0 && sameOrderExceptOneInsertion(prev, next, inserted[0]):
		idx := nextIdx[inserted[0]]
		return InsertAt{Index: idx, Item: next.Items[idx]}
	case len(removed) == 1 && len(inserted) == 0 && sameOrderExceptOneRemoval(prev, next, removed[0]):
		return RemoveItem{ID: removed[0]}
	default:
		return ReplaceAll{Full: next}
	}
}

func indexByID(l *List) map[PersistenceId]int {
	m := make(map[PersistenceId]int, l.Len())
	for i, it := range l.Items {
		m[it.ID] = i
	}
	return m
}

func sameOrderExceptOneInsertion(prev, next *List, inserted PersistenceId) bool {
	j := 0
	for _, it := range next.Items {
		if it.ID == inserted {
			continue
		}
		if j >= prev.Len() || prev.Items[j].ID != it.ID {
			return false
		}
		j++
	}
	return j == prev.Len()
}

func sameOrderExceptOneRemoval(prev, next *List, removed PersistenceId) bool {
	j := 0
	for _, it := range prev.Items {
		if it.ID == removed {
			continue
		}
		if j >= next.Len() || next.Items[j].ID != it.ID {
			return false
		}
		j++
	}
	return j == next.Len()
}
