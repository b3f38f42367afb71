// SPDX-License-Identifier: GPL-3.0-or-later
//
// The span-id discipline ("time-ordered, safe-to-log, attach-once-to-a-
// logger") is grounded on this package's ancestor library's spanid.go;
// PersistenceId generalizes it from a fresh-UUID-per-call scheme to a
// deterministic, content-addressed id plus a UUIDv7 fallback.
//

package boon

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PersistenceId is a stable identifier for every bindable location
// (§4.2): `(source-id, scope-path, syntactic-position)`. It keys durable
// storage across program reloads and provides list-item identity so
// fine-grained diffs survive recomputation.
//
// The zero value is not a valid id; use [ResolvePersistence] or
// [NewPersistenceID].
type PersistenceId struct {
	Source   string   // source id, e.g. the module file name
	ScopePath []string // enclosing binding names/positions, outermost first
	Ordinal  int      // the binding's ordinal within its block
}

// String renders a [PersistenceId] as a single stable string, suitable as
// a storage key and for lexicographic tie-breaking (§8 scenario S6,
// §4.3.3's ordering policy).
func (id PersistenceId) String() string {
	var b strings.Builder
	b.WriteString(id.Source)
	for _, seg := range id.ScopePath {
		b.WriteByte('/')
		b.WriteString(seg)
	}
	fmt.Fprintf(&b, "#%d", id.Ordinal)
	return b.String()
}

// Less implements the lexicographic PersistenceId tie-break used to break
// ties in the logical clock (§4.3.3, §8 S6, Open Question 1).
func (id PersistenceId) Less(other PersistenceId) bool {
	return id.String() < other.String()
}

// Child derives the PersistenceId of a binding nested one level deeper
// under id, e.g. a function body instantiated in response to an event, or
// an arm of a pattern match. ordinal is the binding's position within its
// enclosing block.
func (id PersistenceId) Child(scopeSegment string, ordinal int) PersistenceId {
	path := make([]string, len(id.ScopePath), len(id.ScopePath)+1)
	copy(path, id.ScopePath)
	path = append(path, scopeSegment)
	return PersistenceId{Source: id.Source, ScopePath: path, Ordinal: ordinal}
}

// ListItemID derives a list element's PersistenceId from its producer's
// id combined with an identity hint (§4.2: "List items reuse the id
// computed from their producer combined with the emitted item's identity
// hint if available"). When hint is empty, a fresh UUIDv7-backed id is
// minted instead — the fallback path named in SPEC_FULL.md's domain-stack
// table.
func (id PersistenceId) ListItemID(hint string) PersistenceId {
	if hint == "" {
		return PersistenceId{
			Source:    id.Source,
			ScopePath: append(append([]string{}, id.ScopePath...), "item"),
			Ordinal:   freshOrdinal(),
		}
	}
	return id.Child("item:"+hint, 0)
}

// freshOrdinal mints a process-unique ordinal from a UUIDv7, used only
// when no stable identity hint is available for a list item (e.g. a
// literal LIST element with no producer-side position, or a dynamically
// constructed item from a function-call body instantiated per event).
func freshOrdinal() int {
	id := PanicOnError1(uuid.NewV7())
	// A UUIDv7's low bytes are effectively random; folding them into an
	// int gives a stable-within-process, non-colliding-in-practice ordinal
	// without requiring a monotonic counter of its own.
	b := id[:]
	var n int
	for _, c := range b[10:] {
		n = n<<8 | int(c)
	}
	if n < 0 {
		n = -n
	}
	return n
}

// NewPersistenceID returns a PersistenceId rooted at source with no scope
// path, ordinal 0 — the id assigned to a module's top-level implicit
// binding.
func NewPersistenceID(source string) PersistenceId {
	return PersistenceId{Source: source, Ordinal: 0}
}
