// SPDX-License-Identifier: GPL-3.0-or-later

package boon

// scope is one block's binding table, chained to its enclosing scope
// (§4.2: "walks the AST top-down threading a scope chain").
type scope struct {
	parent *scope
	names  map[string]bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]bool)}
}

// declare records name as bound in this block, rejecting a second
// binding of the same name within the same block (§4.2: "redefinition
// within the same block is rejected"). Shadowing an outer name from an
// inner block is allowed and is not checked here.
func (s *scope) declare(name string, at Span) error {
	if s.names[name] {
		return &ResolveError{At: at, Message: "redefinition of '" + name + "' in the same block"}
	}
	s.names[name] = true
	return nil
}

func (s *scope) resolves(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.names[name] {
			return true
		}
	}
	return false
}

// ResolveScopes walks prog's AST top-down, rejecting same-block
// redefinitions and unresolved identifier references (§4.2). It does not
// assign identity — see [ResolvePersistence] for that.
func ResolveScopes(prog *Program) error {
	top := newScope(nil)
	return resolveBlockLike(top, prog.Bindings, nil)
}

// resolveBlockLike declares each binding in order (checking redefinition
// as it goes, so a binding may reference only bindings declared earlier
// in the same block or in an outer scope) then resolves its value
// expression, and finally the trailing result expression if present.
func resolveBlockLike(s *scope, bindings []*BindingExpr, result Expr) error {
	for _, b := range bindings {
		if err := s.declare(b.Name, b.Span); err != nil {
			return err
		}
		if err := resolveExpr(s, b.Value); err != nil {
			return err
		}
	}
	if result != nil {
		return resolveExpr(s, result)
	}
	return nil
}

func resolveExpr(s *scope, e Expr) error {
	switch v := e.(type) {
	case nil:
		return nil
	case *LiteralExpr, *PassedExpr, *LinkExpr:
		return nil
	case *IdentExpr:
		if !s.resolves(v.Name) {
			return &ResolveError{At: v.Span, Message: "undefined name '" + v.Name + "'"}
		}
		return nil
	case *PipeExpr:
		if err := resolveExpr(s, v.Left); err != nil {
			return err
		}
		return resolveCallArgs(s, v.Call)
	case *CallExpr:
		if err := resolveCallArgs(s, v); err != nil {
			return err
		}
		if v.Body != nil {
			return resolveExpr(s, v.Body)
		}
		return nil
	case *BlockExpr:
		inner := newScope(s)
		return resolveBlockLike(inner, v.Bindings, v.Result)
	case *LatestExpr:
		for _, arm := range v.Arms {
			if err := resolveExpr(s, arm); err != nil {
				return err
			}
		}
		return nil
	case *WhenExpr:
		if err := resolveExpr(s, v.Subject); err != nil {
			return err
		}
		for _, arm := range v.Arms {
			inner := newScope(s)
			for _, name := range patternBinders(arm.Pattern) {
				if err := inner.declare(name, arm.Span); err != nil {
					return err
				}
			}
			if err := resolveExpr(inner, arm.Result); err != nil {
				return err
			}
		}
		return nil
	case *ThenExpr:
		if err := resolveExpr(s, v.Input); err != nil {
			return err
		}
		return resolveExpr(s, v.Body)
	case *HoldExpr:
		if err := resolveExpr(s, v.Initial); err != nil {
			return err
		}
		inner := newScope(s)
		if err := inner.declare(v.Name, v.Span); err != nil {
			return err
		}
		return resolveExpr(inner, v.Body)
	case *PulsesExpr:
		return resolveExpr(s, v.Count)
	case *FlushExpr:
		return resolveExpr(s, v.Value)
	case *TagExpr:
		for _, f := range v.Fields {
			if err := resolveExpr(s, f.Value); err != nil {
				return err
			}
		}
		return nil
	case *ListExpr:
		for _, item := range v.Items {
			if err := resolveExpr(s, item); err != nil {
				return err
			}
		}
		return nil
	case *BytesExpr, *BitsExpr:
		return nil
	case *ObjectExpr:
		for _, f := range v.Fields {
			if err := resolveExpr(s, f.Value); err != nil {
				return err
			}
		}
		for _, spread := range v.Spreads {
			if err := resolveExpr(s, spread); err != nil {
				return err
			}
		}
		return nil
	case *TextExpr:
		for _, val := range v.Values {
			if err := resolveExpr(s, val); err != nil {
				return err
			}
		}
		return nil
	case *FieldAccessExpr:
		return resolveExpr(s, v.Base)
	case *UnplugExpr:
		return resolveExpr(s, v.Base)
	case *BinaryExpr:
		if err := resolveExpr(s, v.Left); err != nil {
			return err
		}
		return resolveExpr(s, v.Right)
	default:
		return &InvariantError{Invariant: "resolve-scope-unhandled-expr", Detail: FormatValue(nil)}
	}
}

func resolveCallArgs(s *scope, call *CallExpr) error {
	for _, arg := range call.Args {
		if err := resolveExpr(s, arg.Value); err != nil {
			return err
		}
	}
	return nil
}

// patternBinders returns the identifier names a pattern introduces into
// its arm's scope (§4.3.2).
func patternBinders(p Pattern) []string {
	switch v := p.(type) {
	case *TagPattern:
		var out []string
		for _, f := range v.FieldVars {
			if f != "" {
				out = append(out, f)
			}
		}
		return out
	case *ListPattern:
		var out []string
		for _, e := range v.Elements {
			if e != "" {
				out = append(out, e)
			}
		}
		return out
	case *BitsPattern:
		var out []string
		for _, f := range v.FieldVars {
			if f != "" {
				out = append(out, f)
			}
		}
		return out
	case *IdentPattern:
		return []string{v.Name}
	default:
		return nil
	}
}
