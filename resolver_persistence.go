// SPDX-License-Identifier: GPL-3.0-or-later

package boon

// PersistenceTable maps each binding to its deterministically assigned
// [PersistenceId] (§4.2). Keyed by pointer identity of the *BindingExpr,
// which is stable for the lifetime of a single parse — a hot reload
// re-parses and re-resolves from scratch, then migrates state by
// matching the resulting ids (§4.5), not by matching *BindingExpr
// pointers across parses.
type PersistenceTable struct {
	ids map[*BindingExpr]PersistenceId
}

// Lookup returns b's assigned id.
func (t *PersistenceTable) Lookup(b *BindingExpr) (PersistenceId, bool) {
	id, ok := t.ids[b]
	return id, ok
}

// ResolvePersistence assigns every binding in prog a [PersistenceId]
// deterministically: composed from the source id, the scope path (the
// list of enclosing binding names), and the binding's ordinal within its
// block (§4.2). Two resolutions of the same source text, run
// independently, produce identical ids — this is what makes hot-reload
// state migration possible (§4.5).
func ResolvePersistence(prog *Program) *PersistenceTable {
	t := &PersistenceTable{ids: make(map[*BindingExpr]PersistenceId)}
	root := NewPersistenceID(prog.Source)
	assignBlock(t, root, prog.Bindings)
	return t
}

func assignBlock(t *PersistenceTable, scopeID PersistenceId, bindings []*BindingExpr) {
	for i, b := range bindings {
		id := scopeID.Child(b.Name, i)
		t.ids[b] = id
		assignExpr(t, id, b.Value)
	}
}

// assignExpr descends into nested blocks, assigning each one a scope path
// segment derived from its containing construct so that two structurally
// identical nested blocks under different bindings never collide.
func assignExpr(t *PersistenceTable, id PersistenceId, e Expr) {
	switch v := e.(type) {
	case *PipeExpr:
		assignExpr(t, id, v.Left)
		assignCallArgs(t, id, v.Call)
	case *CallExpr:
		assignCallArgs(t, id, v)
		if v.Body != nil {
			assignBlock(t, id.Child("body", 0), v.Body.Bindings)
			assignExpr(t, id.Child("result", 0), v.Body.Result)
		}
	case *BlockExpr:
		assignBlock(t, id, v.Bindings)
		assignExpr(t, id.Child("result", 0), v.Result)
	case *LatestExpr:
		for i, arm := range v.Arms {
			assignExpr(t, id.Child("arm", i), arm)
		}
	case *WhenExpr:
		assignExpr(t, id, v.Subject)
		for i, arm := range v.Arms {
			assignExpr(t, id.Child("arm", i), arm.Result)
		}
	case *ThenExpr:
		assignExpr(t, id, v.Input)
		assignExpr(t, id.Child("body", 0), v.Body)
	case *HoldExpr:
		assignExpr(t, id, v.Initial)
		assignExpr(t, id.Child(v.Name, 0), v.Body)
	case *PulsesExpr:
		assignExpr(t, id, v.Count)
	case *FlushExpr:
		assignExpr(t, id, v.Value)
	case *TagExpr:
		for i, f := range v.Fields {
			assignExpr(t, id.Child("field", i), f.Value)
		}
	case *ListExpr:
		for i, item := range v.Items {
			assignExpr(t, id.Child("item", i), item)
		}
	case *ObjectExpr:
		for i, f := range v.Fields {
			assignExpr(t, id.Child(f.Name, i), f.Value)
		}
		for i, sp := range v.Spreads {
			assignExpr(t, id.Child("spread", i), sp)
		}
	case *TextExpr:
		for i, val := range v.Values {
			assignExpr(t, id.Child("interp", i), val)
		}
	case *FieldAccessExpr:
		assignExpr(t, id, v.Base)
	case *UnplugExpr:
		assignExpr(t, id, v.Base)
	case *BinaryExpr:
		assignExpr(t, id.Child("lhs", 0), v.Left)
		assignExpr(t, id.Child("rhs", 0), v.Right)
	default:
		// Literal, Ident, Passed, Link, Bytes, Bits: no nested bindings.
	}
}

func assignCallArgs(t *PersistenceTable, id PersistenceId, call *CallExpr) {
	for i, arg := range call.Args {
		assignExpr(t, id.Child("arg", i), arg.Value)
	}
}
