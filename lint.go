// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import "fmt"

// Warning is a non-fatal static finding produced by [Evaluator.Lint]. A
// program with warnings still evaluates normally — detection, not
// rejection (Open Question 3's resolution, carried into SPEC_FULL.md's
// list of decided questions).
type Warning struct {
	At      Span
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.At, w.Message)
}

// Lint walks prog looking for a HOLD whose body is a strict
// `List/append` of the HOLD's own accumulator with no corresponding
// trim — the unbounded-growth shape named in Open Question 3. It is a
// syntactic check, not a lifetime analysis: it flags every such HOLD
// regardless of whether the event source driving it is actually
// infinite, since a finite source makes the warning merely moot rather
// than wrong.
func (ev *Evaluator) Lint(prog *Program) []Warning {
	var warnings []Warning
	for _, b := range prog.Bindings {
		lintExpr(b.Value, &warnings)
	}
	return warnings
}

func lintExpr(e Expr, warnings *[]Warning) {
	switch v := e.(type) {
	case *HoldExpr:
		lintExpr(v.Initial, warnings)
		if appendsSelf(v.Body, v.Name) {
			*warnings = append(*warnings, Warning{
				At: v.Span,
				Message: fmt.Sprintf(
					"HOLD %q grows its list every firing via List/append with no retain/trim; "+
						"this is unbounded if the driving event source never stops", v.Name),
			})
		}
		lintExpr(v.Body, warnings)
	case *BlockExpr:
		for _, bind := range v.Bindings {
			lintExpr(bind.Value, warnings)
		}
		if v.Result != nil {
			lintExpr(v.Result, warnings)
		}
	case *CallExpr:
		for _, a := range v.Args {
			lintExpr(a.Value, warnings)
		}
	case *PipeExpr:
		lintExpr(v.Call, warnings)
	case *LatestExpr:
		for _, arm := range v.Arms {
			lintExpr(arm, warnings)
		}
	case *WhenExpr:
		lintExpr(v.Subject, warnings)
		for _, arm := range v.Arms {
			lintExpr(arm.Result, warnings)
		}
	case *ThenExpr:
		lintExpr(v.Input, warnings)
		lintExpr(v.Body, warnings)
	case *FlushExpr:
		lintExpr(v.Value, warnings)
	case *TagExpr:
		for _, f := range v.Fields {
			lintExpr(f.Value, warnings)
		}
	case *ListExpr:
		for _, item := range v.Items {
			lintExpr(item, warnings)
		}
	case *ObjectExpr:
		for _, f := range v.Fields {
			lintExpr(f.Value, warnings)
		}
		for _, s := range v.Spreads {
			lintExpr(s, warnings)
		}
	case *TextExpr:
		for _, val := range v.Values {
			lintExpr(val, warnings)
		}
	case *FieldAccessExpr:
		lintExpr(v.Base, warnings)
	case *UnplugExpr:
		lintExpr(v.Base, warnings)
	case *BinaryExpr:
		lintExpr(v.Left, warnings)
		lintExpr(v.Right, warnings)
	}
}

// appendsSelf reports whether body is (or resolves, through an
// unconditional block result, to) a `List/append` call whose list
// argument directly names selfName — the HOLD's own accumulator
// binding.
func appendsSelf(body Expr, selfName string) bool {
	switch v := body.(type) {
	case *BlockExpr:
		if v.Result != nil {
			return appendsSelf(v.Result, selfName)
		}
		return false
	case *PipeExpr:
		return appendsSelf(v.Call, selfName)
	case *CallExpr:
		if v.Callee != "List/append" {
			return false
		}
		for _, a := range v.Args {
			if a.Name == "" || a.Name == "list" {
				if id, ok := a.Value.(*IdentExpr); ok && id.Name == selfName {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}
