// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// PassFrame is the dynamic `PASS { … }` context propagated down the call
// tree (§4.2, §6 glossary: "dynamic context propagated down the call
// tree"). It is lexical in extent — threaded explicitly through eval, not
// read from any ambient global — so two concurrently-evaluated bodies
// never see each other's frame (§4.4's "PASS/PASSED is lexical, not
// global").
type PassFrame map[string]Value

func (f PassFrame) field(name string) (Value, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f[name]
	return v, ok
}

// bound is one name's binding in an [Env]: either a long-lived [*Node]
// (a top-level binding, subscribed to independently by every reference)
// or an ephemeral [Stream] (a local block binding, or a HOLD's
// accumulator name bound to the round's current value, re-evaluated
// fresh with every instantiation of its enclosing body).
type bound struct {
	node   *Node
	stream Stream
}

// Env is the evaluator's lexical scope chain, mirroring [scope] from
// resolution but carrying live values instead of a presence bit (§4.2).
type Env struct {
	parent *Env
	names  map[string]bound
}

func newEnv(parent *Env) *Env {
	return &Env{parent: parent, names: make(map[string]bound)}
}

func (e *Env) bindNode(name string, n *Node) {
	e.names[name] = bound{node: n}
}

func (e *Env) bindStream(name string, s Stream) {
	e.names[name] = bound{stream: s}
}

func (e *Env) lookup(name string) (Stream, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.names[name]; ok {
			if b.node != nil {
				return nodeStream(b.node), true
			}
			return b.stream, true
		}
	}
	return nil, false
}

// nodeStream adapts a [*Node] back into a [Stream] by subscribing once
// per Open call: every reference to a bound name gets its own
// subscription, matching the engine's fan-out discipline (§4.4).
func nodeStream(n *Node) Stream {
	return &streamFunc{
		lifetime: Infinite,
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			sub := n.Subscribe(ctx)
			defer sub.Close()
			for {
				env, ok := sub.Recv(ctx)
				if !ok {
					return
				}
				select {
				case out <- env:
				case <-ctx.Done():
					return
				}
			}
		},
	}
}

// Evaluator lowers a resolved [*Program] into a live graph of [*Node]s
// (§4.3, §4.4): it is the component named "Evaluator" in §1's subsystem
// table, walking the AST and instantiating actors according to the
// combinator semantics, handling PASS/PASSED, LINK aliasing, and FLUSH
// propagation.
type Evaluator struct {
	ids    *PersistenceTable
	links  *LinkRegistry
	clock  *Clock
	logger SLogger
	errCl  ErrClassifier
	bridge Bridge

	mu     sync.Mutex
	caches map[PersistenceId]*TransformCache
}

// SetBridge attaches the host collaborator used for HOLD state migration
// across a reload (doc.go's "Design Boundaries"). A nil bridge — the
// default — leaves HOLD state unpersisted. `Log/*` always writes to the
// evaluator's logger, with or without a bridge.
func (ev *Evaluator) SetBridge(b Bridge) { ev.bridge = b }

// NewEvaluator builds an Evaluator. A nil links/clock/logger/errCl takes
// the package default, matching the "never write to stdout/stderr unless
// a caller opts in" policy carried from the logging convention.
func NewEvaluator(ids *PersistenceTable, links *LinkRegistry, clock *Clock, logger SLogger, errCl ErrClassifier) *Evaluator {
	if links == nil {
		links = NewLinkRegistry()
	}
	if clock == nil {
		clock = NewClock(0)
	}
	if logger == nil {
		logger = DefaultSLogger()
	}
	if errCl == nil {
		errCl = DefaultErrClassifier
	}
	return &Evaluator{ids: ids, links: links, clock: clock, logger: logger, errCl: errCl, caches: make(map[PersistenceId]*TransformCache)}
}

// Evaluate lowers prog's top-level bindings into live [*Node]s, wired in
// declaration order so a later binding may reference an earlier one
// (§4.2). Every top-level binding is also registered in the evaluator's
// [LinkRegistry] under its own name, so a `LINK { name }` elsewhere — in
// particular a bridge-attached element tree outside this program's lexical
// scope — can subscribe to it (§4.3's LINK entry).
func (ev *Evaluator) Evaluate(ctx context.Context, prog *Program) (map[string]*Node, error) {
	env := newEnv(nil)
	out := make(map[string]*Node, len(prog.Bindings))
	for i, b := range prog.Bindings {
		id, ok := ev.ids.Lookup(b)
		if !ok {
			id = NewPersistenceID(prog.Source).Child(b.Name, i)
		}
		s, err := ev.eval(ctx, env, nil, id, b.Value)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", b.Name, err)
		}
		node := NewNode(ctx, id, b.Name, EagerActor, s, ev.clock, ev.logger, ev.errCl)
		env.bindNode(b.Name, node)
		ev.links.Link(b.Name, node)
		out[b.Name] = node
	}
	return out, nil
}

// eval lowers one expression to the [Stream] it denotes, recursing
// top-down over every construct named in §4.3. id is the expression's own
// [PersistenceId], used to mint fresh identity for constructs that need
// it (list item ids, LATEST arm tie-break ids, transform caches).
func (ev *Evaluator) eval(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, e Expr) (Stream, error) {
	switch v := e.(type) {
	case *LiteralExpr:
		return ConstantStream(v.Value), nil

	case *IdentExpr:
		s, ok := env.lookup(v.Name)
		if !ok {
			return nil, &ResolveError{At: v.Span, Message: "undefined name '" + v.Name + "' at evaluation time"}
		}
		return s, nil

	case *PassedExpr:
		val, ok := pass.field(v.Field)
		if !ok {
			return nil, &ResolveError{At: v.Span, Message: "PASSED." + v.Field + " referenced outside a matching PASS context"}
		}
		return ConstantStream(val), nil

	case *PipeExpr:
		return ev.eval(ctx, env, pass, id, v.Call)

	case *CallExpr:
		return ev.evalCall(ctx, env, pass, id, v)

	case *BlockExpr:
		return ev.evalBlock(ctx, env, pass, id, v)

	case *LatestExpr:
		arms := make([]Stream, len(v.Arms))
		ids := make([]PersistenceId, len(v.Arms))
		for i, arm := range v.Arms {
			armID := id.Child("arm", i)
			s, err := ev.eval(ctx, env, pass, armID, arm)
			if err != nil {
				return nil, err
			}
			arms[i] = s
			ids[i] = armID
		}
		return Latest(arms, ids), nil

	case *WhenExpr:
		return ev.evalWhen(ctx, env, pass, id, v)

	case *ThenExpr:
		input, err := ev.eval(ctx, env, pass, id, v.Input)
		if err != nil {
			return nil, err
		}
		return Then(input, func(firing int) Stream {
			bodyID := id.Child("body", 0)
			s, err := ev.eval(ctx, env, pass, bodyID, v.Body)
			if err != nil {
				ev.logError(err, "thenBodyError")
				return SliceStream()
			}
			return s
		}), nil

	case *HoldExpr:
		initialStream, err := ev.eval(ctx, env, pass, id, v.Initial)
		if err != nil {
			return nil, err
		}
		initial, err := evalOnce(ctx, ev.clock, initialStream)
		if err != nil {
			return nil, fmt.Errorf("HOLD initial value: %w", err)
		}
		if ev.bridge != nil {
			initial = restoreHoldState(ev.bridge.Storage(), id, initial)
		}
		bodyID := id.Child(v.Name, 0)
		repeat := holdBodyHasExternalTrigger(v.Body)
		return Hold(initial, repeat, func(current Value) Stream {
			if ev.bridge != nil {
				persistHoldState(ev.bridge.Storage(), id, current)
			}
			bodyEnv := newEnv(env)
			bodyEnv.bindStream(v.Name, ConstantStream(current))
			s, err := ev.eval(ctx, bodyEnv, pass, bodyID, v.Body)
			if err != nil {
				ev.logError(err, "holdBodyError")
				return SliceStream()
			}
			return s
		}), nil

	case *LinkExpr:
		node, ok := ev.links.Resolve(v.Alias)
		if !ok {
			ev.logger.Warn("linkUnresolved", slog.String("alias", v.Alias))
			return &streamFunc{lifetime: Infinite, run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
				<-ctx.Done()
			}}, nil
		}
		return nodeStream(node), nil

	case *PulsesExpr:
		countStream, err := ev.eval(ctx, env, pass, id, v.Count)
		if err != nil {
			return nil, err
		}
		countVal, err := evalOnce(ctx, ev.clock, countStream)
		if err != nil {
			return nil, fmt.Errorf("PULSES count: %w", err)
		}
		n, ok := countVal.(Number)
		if !ok {
			return nil, &InvariantError{Invariant: "pulses-count-not-number", Detail: FormatValue(countVal)}
		}
		return Pulses(int(n)), nil

	case *FlushExpr:
		inner, err := ev.eval(ctx, env, pass, id, v.Value)
		if err != nil {
			return nil, err
		}
		return MapStream(inner, func(val Value) Value { return Flush(val) }), nil

	case *TagExpr:
		return ev.evalTag(ctx, env, pass, id, v)

	case *ListExpr:
		return ev.evalList(ctx, env, pass, id, v)

	case *BytesExpr:
		return ConstantStream(BytesLiteral(id, v.Raw)), nil

	case *BitsExpr:
		return ConstantStream(NewBits(v.Width, v.Signed, v.Payload)), nil

	case *ObjectExpr:
		return ev.evalObject(ctx, env, pass, id, v)

	case *TextExpr:
		return ev.evalText(ctx, env, pass, id, v)

	case *FieldAccessExpr:
		base, err := ev.eval(ctx, env, pass, id, v.Base)
		if err != nil {
			return nil, err
		}
		field := v.Field
		at := v.Span
		return MapStream(base, func(val Value) Value {
			result, err := fieldOf(val, field)
			if err != nil {
				return NewErrorTag(fmt.Sprintf("%s: %s", at, err))
			}
			return result
		}), nil

	case *UnplugExpr:
		base, err := ev.eval(ctx, env, pass, id, v.Base)
		if err != nil {
			return nil, err
		}
		fa, ok := v.Base.(*FieldAccessExpr)
		if !ok {
			return MapStream(base, func(val Value) Value { return val }), nil
		}
		field := fa.Field
		return MapStream(base, func(val Value) Value {
			if result, err := fieldOf(val, field); err == nil {
				return result
			}
			return Unplugged{}
		}), nil

	case *BinaryExpr:
		return ev.evalBinary(ctx, env, pass, id, v)

	default:
		return nil, &InvariantError{Invariant: "eval-unhandled-expr", Detail: fmt.Sprintf("%T", e)}
	}
}

// holdBodyHasExternalTrigger reports whether a HOLD body's firing can ever
// be driven by something other than its own self-reference: a LINK to
// another node, a THEN gate, or a PULSES source. A body built purely from
// literals, field access, and its self-reference (§8 scenario S4:
// `x: 0 |> HOLD x { x + 1 }`) settles to a single value the moment it is
// evaluated once — looping and re-evaluating it again can never produce
// anything but a fresh, immediate firing, so [Hold] must not repeat it.
func holdBodyHasExternalTrigger(e Expr) bool {
	switch v := e.(type) {
	case nil:
		return false
	case *LinkExpr, *ThenExpr, *PulsesExpr:
		return true
	case *BlockExpr:
		for _, b := range v.Bindings {
			if holdBodyHasExternalTrigger(b.Value) {
				return true
			}
		}
		return holdBodyHasExternalTrigger(v.Result)
	case *PipeExpr:
		return holdBodyHasExternalTrigger(v.Left) || holdBodyHasExternalTrigger(v.Call)
	case *CallExpr:
		if v.Body != nil && holdBodyHasExternalTrigger(v.Body) {
			return true
		}
		for _, a := range v.Args {
			if holdBodyHasExternalTrigger(a.Value) {
				return true
			}
		}
		return false
	case *BinaryExpr:
		return holdBodyHasExternalTrigger(v.Left) || holdBodyHasExternalTrigger(v.Right)
	case *LatestExpr:
		for _, a := range v.Arms {
			if holdBodyHasExternalTrigger(a) {
				return true
			}
		}
		return false
	case *WhenExpr:
		if holdBodyHasExternalTrigger(v.Subject) {
			return true
		}
		for _, a := range v.Arms {
			if holdBodyHasExternalTrigger(a.Result) {
				return true
			}
		}
		return false
	case *HoldExpr:
		return holdBodyHasExternalTrigger(v.Initial)
	case *FlushExpr:
		return holdBodyHasExternalTrigger(v.Value)
	case *TagExpr:
		for _, f := range v.Fields {
			if holdBodyHasExternalTrigger(f.Value) {
				return true
			}
		}
		return false
	case *ListExpr:
		for _, it := range v.Items {
			if holdBodyHasExternalTrigger(it) {
				return true
			}
		}
		return false
	case *ObjectExpr:
		for _, f := range v.Fields {
			if holdBodyHasExternalTrigger(f.Value) {
				return true
			}
		}
		for _, s := range v.Spreads {
			if holdBodyHasExternalTrigger(s) {
				return true
			}
		}
		return false
	case *TextExpr:
		for _, val := range v.Values {
			if holdBodyHasExternalTrigger(val) {
				return true
			}
		}
		return false
	case *FieldAccessExpr:
		return holdBodyHasExternalTrigger(v.Base)
	case *UnplugExpr:
		return holdBodyHasExternalTrigger(v.Base)
	default:
		return false
	}
}

// evalOnce pulls exactly one [Value] from s, used at the synchronous
// boundaries where the surface grammar requires a plain value rather than
// an ongoing stream: a HOLD's initial expression, a PULSES count, a WHEN
// arm body, a per-element list-operation body, and a timer's `millis`
// argument.
func evalOnce(ctx context.Context, clock *Clock, s Stream) (Value, error) {
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch := s.Open(cctx, clock)
	select {
	case env, ok := <-ch:
		if !ok {
			return nil, &InvariantError{Invariant: "evalOnce-no-emission", Detail: "stream closed without producing a value"}
		}
		return env.Payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (ev *Evaluator) logError(err error, event string) {
	class := ""
	if ev.errCl != nil {
		class = ev.errCl.Classify(err)
	}
	ev.logger.Warn(event, slog.String("err", err.Error()), slog.String("errClass", class))
}

// evalBlock lowers a `{ bindings…; result }` body (§4.2): each binding is
// a local, ephemeral [Stream] visible to the bindings and result after
// it, shadowing outer names per the usual scope rules.
func (ev *Evaluator) evalBlock(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, block *BlockExpr) (Stream, error) {
	inner := newEnv(env)
	for i, b := range block.Bindings {
		s, err := ev.eval(ctx, inner, pass, id.Child(b.Name, i), b.Value)
		if err != nil {
			return nil, err
		}
		inner.bindStream(b.Name, s)
	}
	if block.Result == nil {
		return ConstantStream(Unplugged{}), nil
	}
	return ev.eval(ctx, inner, pass, id.Child("result", 0), block.Result)
}

// evalTag lowers a tag constructor, combining every field expression's
// current value via [CombineLatest] (§4.1, §4.3.2's field-punning
// convention: `Name[field]` is sugar for `Name[field: field]`, already
// expanded by the parser).
func (ev *Evaluator) evalTag(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, v *TagExpr) (Stream, error) {
	if len(v.Fields) == 0 {
		return ConstantStream(NewTag(v.Name, nil)), nil
	}
	arms := make([]Stream, len(v.Fields))
	names := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		s, err := ev.eval(ctx, env, pass, id.Child("field", i), f.Value)
		if err != nil {
			return nil, err
		}
		arms[i] = s
		names[i] = f.Name
	}
	return CombineLatest(arms, func(values []Value) Value {
		fields := make(map[string]Value, len(values))
		for i, val := range values {
			fields[names[i]] = val
		}
		return NewTag(v.Name, fields)
	}), nil
}

// evalList lowers `LIST { … }` (§4.1): each item keeps the identity
// minted by [PersistenceId.Child] off id, stable across
// recomputation so downstream [DiffLists] sees a move/update rather than
// a wholesale replace when only one item's value actually changed.
func (ev *Evaluator) evalList(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, v *ListExpr) (Stream, error) {
	if len(v.Items) == 0 {
		return ConstantStream(&List{}), nil
	}
	arms := make([]Stream, len(v.Items))
	itemIDs := make([]PersistenceId, len(v.Items))
	for i, item := range v.Items {
		itemID := id.Child("item", i)
		s, err := ev.eval(ctx, env, pass, itemID, item)
		if err != nil {
			return nil, err
		}
		arms[i] = s
		itemIDs[i] = itemID
	}
	return CombineLatest(arms, func(values []Value) Value {
		items := make([]ListItem, len(values))
		for i, val := range values {
			items[i] = ListItem{ID: itemIDs[i], Value: val}
		}
		return &List{Items: items}
	}), nil
}

// evalObject lowers `{ field: value, …, ...spread }` (§4.3's spread
// rule): spreads are evaluated left to right and merged first, own fields
// applied after so they win on conflict, matching [*Object.WithSpread]'s
// "last write wins".
func (ev *Evaluator) evalObject(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, v *ObjectExpr) (Stream, error) {
	var arms []Stream
	var kind []bool // true = spread, false = named field
	var names []string
	for i, sp := range v.Spreads {
		s, err := ev.eval(ctx, env, pass, id.Child("spread", i), sp)
		if err != nil {
			return nil, err
		}
		arms = append(arms, s)
		kind = append(kind, true)
		names = append(names, "")
	}
	for i, f := range v.Fields {
		s, err := ev.eval(ctx, env, pass, id.Child(f.Name, i), f.Value)
		if err != nil {
			return nil, err
		}
		arms = append(arms, s)
		kind = append(kind, false)
		names = append(names, f.Name)
	}
	if len(arms) == 0 {
		return ConstantStream(NewObject(nil, map[string]Value{})), nil
	}
	return CombineLatest(arms, func(values []Value) Value {
		order := []string{}
		fields := map[string]Value{}
		for i, val := range values {
			if kind[i] {
				if base, ok := val.(*Object); ok {
					for _, k := range base.Order() {
						if _, seen := fields[k]; !seen {
							order = append(order, k)
						}
						bv, _ := base.Field(k)
						fields[k] = bv
					}
				}
				continue
			}
			if _, seen := fields[names[i]]; !seen {
				order = append(order, names[i])
			}
			fields[names[i]] = val
		}
		return NewObject(order, fields)
	}), nil
}

// evalText lowers `TEXT { literal {expr} … }` (§4.1): Parts has one more
// element than Values, alternating literal/interpolated/literal/… .
func (ev *Evaluator) evalText(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, v *TextExpr) (Stream, error) {
	if len(v.Values) == 0 {
		text := ""
		if len(v.Parts) > 0 {
			text = v.Parts[0]
		}
		return ConstantStream(Text(text)), nil
	}
	arms := make([]Stream, len(v.Values))
	for i, val := range v.Values {
		s, err := ev.eval(ctx, env, pass, id.Child("interp", i), val)
		if err != nil {
			return nil, err
		}
		arms[i] = s
	}
	parts := v.Parts
	return CombineLatest(arms, func(values []Value) Value {
		return TextInterpolate(parts, values)
	}), nil
}

// evalBinary lowers a comparison/arithmetic operator application,
// combining both operands' current values via [CombineLatest] (§4.1's
// Pratt precedence table).
func (ev *Evaluator) evalBinary(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, v *BinaryExpr) (Stream, error) {
	left, err := ev.eval(ctx, env, pass, id.Child("lhs", 0), v.Left)
	if err != nil {
		return nil, err
	}
	right, err := ev.eval(ctx, env, pass, id.Child("rhs", 0), v.Right)
	if err != nil {
		return nil, err
	}
	op := v.Op
	at := v.Span
	return CombineLatest([]Stream{left, right}, func(values []Value) Value {
		result, err := applyBinaryOp(op, values[0], values[1])
		if err != nil {
			return NewErrorTag(fmt.Sprintf("%s: %s", at, err))
		}
		return result
	}), nil
}

func applyBinaryOp(op TokenKind, l, r Value) (Value, error) {
	switch op {
	case TokEq:
		return Bool(ValuesEqual(l, r)), nil
	case TokNotEq:
		return Bool(!ValuesEqual(l, r)), nil
	}
	ln, lok := l.(Number)
	rn, rok := r.(Number)
	switch op {
	case TokLt, TokGt, TokLtEq, TokGtEq:
		if !lok || !rok {
			return nil, fmt.Errorf("comparison operator requires Number operands, got %T and %T", l, r)
		}
		switch op {
		case TokLt:
			return Bool(ln < rn), nil
		case TokGt:
			return Bool(ln > rn), nil
		case TokLtEq:
			return Bool(ln <= rn), nil
		default:
			return Bool(ln >= rn), nil
		}
	case TokPlus:
		if lt, ok := l.(Text); ok {
			if rt, ok := r.(Text); ok {
				return TextConcat(lt, rt), nil
			}
		}
		if !lok || !rok {
			return nil, fmt.Errorf("'+' requires two Numbers or two Texts, got %T and %T", l, r)
		}
		return ln + rn, nil
	case TokMinus, TokStar, TokSlash:
		if !lok || !rok {
			return nil, fmt.Errorf("arithmetic operator requires Number operands, got %T and %T", l, r)
		}
		switch op {
		case TokMinus:
			return ln - rn, nil
		case TokStar:
			return ln * rn, nil
		default:
			if rn == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return ln / rn, nil
		}
	default:
		return nil, fmt.Errorf("unsupported binary operator %s", op)
	}
}

// fieldOf implements postfix `.field` over [*Tag] and [*Object] (§4.3).
func fieldOf(v Value, field string) (Value, error) {
	switch t := v.(type) {
	case *Tag:
		if fv, ok := t.Field(field); ok {
			return fv, nil
		}
		return nil, fmt.Errorf("tag %q has no field %q", t.Name, field)
	case *Object:
		if fv, ok := t.Field(field); ok {
			return fv, nil
		}
		return nil, fmt.Errorf("object has no field %q", field)
	default:
		return nil, fmt.Errorf("%T is not a tag or object, has no field %q", v, field)
	}
}

// evalWhen lowers `x |> WHEN { pattern => result, … }` / WHILE (§4.3,
// §4.3.2): arm bodies are instantiated fresh per firing, bindings that
// the matched pattern introduces resolved as ephemeral local streams.
func (ev *Evaluator) evalWhen(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, v *WhenExpr) (Stream, error) {
	subject, err := ev.eval(ctx, env, pass, id, v.Subject)
	if err != nil {
		return nil, err
	}
	arms := make([]WhenArm, len(v.Arms))
	for i, a := range v.Arms {
		a := a
		armID := id.Child("arm", i)
		_, isWildcard := a.Pattern.(*WildcardPattern)
		arms[i] = WhenArm{
			IsDefault: isWildcard,
			Match: func(val Value) (map[string]Value, bool) {
				return matchPattern(a.Pattern, val)
			},
			Eval: func(bindings map[string]Value) Value {
				bodyEnv := newEnv(env)
				for name, val := range bindings {
					if name == "" {
						continue
					}
					bodyEnv.bindStream(name, ConstantStream(val))
				}
				s, err := ev.eval(ctx, bodyEnv, pass, armID, a.Result)
				if err != nil {
					ev.logError(err, "whenArmError")
					return NewErrorTag(err.Error())
				}
				val, err := evalOnce(ctx, ev.clock, s)
				if err != nil {
					ev.logError(err, "whenArmError")
					return NewErrorTag(err.Error())
				}
				return val
			},
		}
	}
	if v.IsWhile {
		return While(subject, arms, v.Span, ev.logger, ev.errCl), nil
	}
	return When(subject, arms, v.Span, ev.logger, ev.errCl), nil
}

// matchPattern implements §4.3.2's pattern forms: literal, bare/field-
// binding tag, positional list destructuring, bits decomposition,
// wildcard, identifier binder, and the UNPLUGGED sentinel.
func matchPattern(p Pattern, v Value) (map[string]Value, bool) {
	switch pat := p.(type) {
	case *LiteralPattern:
		if ValuesEqual(pat.Value, v) {
			return map[string]Value{}, true
		}
		return nil, false

	case *TagPattern:
		t, ok := v.(*Tag)
		if !ok || t.Name != internTagName(pat.Name) {
			return nil, false
		}
		bindings := map[string]Value{}
		for _, name := range pat.FieldVars {
			fv, ok := t.Field(name)
			if !ok {
				return nil, false
			}
			bindings[name] = fv
		}
		return bindings, true

	case *ListPattern:
		l, ok := v.(*List)
		if !ok || l.Len() != len(pat.Elements) {
			return nil, false
		}
		bindings := map[string]Value{}
		for i, name := range pat.Elements {
			if name == "" {
				continue
			}
			bindings[name] = l.Items[i].Value
		}
		return bindings, true

	case *BitsPattern:
		b, ok := v.(*Bits)
		if !ok {
			return nil, false
		}
		parts, ok := b.Decompose(pat.Widths)
		if !ok {
			return nil, false
		}
		fixedWidth := 0
		for _, w := range pat.Widths {
			if w != -1 {
				fixedWidth += w
			}
		}
		bindings := map[string]Value{}
		for i, name := range pat.FieldVars {
			if name == "" {
				continue
			}
			w := pat.Widths[i]
			if w == -1 {
				w = b.Width - fixedWidth
			}
			bindings[name] = NewBits(w, false, parts[i])
		}
		return bindings, true

	case *WildcardPattern:
		return map[string]Value{}, true

	case *IdentPattern:
		return map[string]Value{pat.Name: v}, true

	case *UnpluggedPattern:
		if _, ok := v.(Unplugged); ok {
			return map[string]Value{}, true
		}
		return nil, false

	default:
		return nil, false
	}
}

// evalCall lowers `Module/function(args…)` (§4.1's "Function calls
// require named arguments except for the first argument when piped").
// The callee's argument expressions are evaluated in the caller's Env —
// no fresh PASS context is introduced here, except for the list
// operations that invoke a per-element body (ListMap's `f`), which push
// `item` onto PASS for the duration of that one element, with `index`
// always 0 rather than the element's position (§4.2's
// "PASSED.x is resolved dynamically against the nearest enclosing PASS
// context at call time").
func (ev *Evaluator) evalCall(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
	fn, ok := stdlibFuncs[call.Callee]
	if !ok {
		return nil, &InvariantError{
			Invariant: "unknown-module-function",
			Detail:    call.Callee + " does not resolve to a stdlib or user-module function",
		}
	}
	return fn(ev, ctx, env, pass, id, call)
}

// callArg evaluates call's named argument name, or the implicit
// pipe-supplied first argument (Name == "") when pos == 0 and no later
// arg has claimed position 0 by name.
func (ev *Evaluator) callArg(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr, name string) (Stream, bool, error) {
	for i, a := range call.Args {
		if a.Name == name || (name == "" && a.Name == "" && i == 0) {
			s, err := ev.eval(ctx, env, pass, id.Child("arg", i), a.Value)
			if err != nil {
				return nil, false, err
			}
			return s, true, nil
		}
	}
	return nil, false, nil
}

func (ev *Evaluator) requireArg(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr, name string) (Stream, error) {
	s, ok, err := ev.callArg(ctx, env, pass, id, call, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &InvariantError{Invariant: "missing-argument", Detail: call.Callee + " requires argument '" + name + "'"}
	}
	return s, nil
}

func (ev *Evaluator) transformCache(id PersistenceId) *TransformCache {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	c, ok := ev.caches[id]
	if !ok {
		c = NewTransformCache()
		ev.caches[id] = c
	}
	return c
}

func asNumber(v Value) (Number, error) {
	n, ok := v.(Number)
	if !ok {
		return 0, fmt.Errorf("expected Number, got %T", v)
	}
	return n, nil
}

func asList(v Value) (*List, error) {
	l, ok := v.(*List)
	if !ok {
		return nil, fmt.Errorf("expected LIST, got %T", v)
	}
	return l, nil
}

func asText(v Value) (Text, error) {
	t, ok := v.(Text)
	if !ok {
		return "", fmt.Errorf("expected Text, got %T", v)
	}
	return t, nil
}

// stdlibFn is one Module/function's lowering: given the call's already-
// resolved argument expressions, produce the Stream the call denotes.
type stdlibFn func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error)

// stdlibFuncs is the dispatch table for every `Module/function` named in
// §4.3.3 and SPEC_FULL.md's domain-stack section. Pure, single-valued
// functions recompute via [CombineLatest] over their argument streams;
// functions with a per-element body (List/map, List/retain, …) evaluate
// that body synchronously per element via [evalOnce], with the element
// pushed onto a fresh [PassFrame] as `item` (its `index` is always 0).
var stdlibFuncs = map[string]stdlibFn{
	"List/map":     evalListMap,
	"List/retain":  evalListRetain,
	"List/sort_by": evalListSortBy,
	"List/every":   evalListEvery,
	"List/any":     evalListAny,
	"List/append":  evalListAppend,
	"List/fold":    evalListFold,
	"List/coalesce": func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		inner, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		return CoalesceStream(inner), nil
	},
	"List/dedup": func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		inner, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		return DedupStream(inner, ValuesEqual), nil
	},
	"Math/sum":   wrapListToNumber(MathSum),
	"Math/min":   wrapListToValue(MathMin),
	"Math/max":   wrapListToValue(MathMax),
	"Math/abs":   wrapNumberToNumber(MathAbs),
	"Math/floor": wrapNumberToNumber(MathFloor),
	"Math/ceil":  wrapNumberToNumber(MathCeil),
	"Math/round": wrapNumberToNumber(MathRound),
	"Text/concat": func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		a, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		b, err := ev.requireArg(ctx, env, pass, id, call, "b")
		if err != nil {
			return nil, err
		}
		return CombineLatest([]Stream{a, b}, func(vs []Value) Value {
			at, aerr := asText(vs[0])
			bt, berr := asText(vs[1])
			if aerr != nil || berr != nil {
				return NewErrorTag("Text/concat requires Text arguments")
			}
			return TextConcat(at, bt)
		}), nil
	},
	"Text/len":      wrapTextToNumber(TextLen),
	"Text/to_upper": wrapTextToText(TextToUpper),
	"Text/to_lower": wrapTextToText(TextToLower),
	"Text/trim":     wrapTextToText(TextTrim),
	"Text/split": func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		t, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		sep, err := ev.requireArg(ctx, env, pass, id, call, "sep")
		if err != nil {
			return nil, err
		}
		return CombineLatest([]Stream{t, sep}, func(vs []Value) Value {
			tt, terr := asText(vs[0])
			st, serr := asText(vs[1])
			if terr != nil || serr != nil {
				return NewErrorTag("Text/split requires Text arguments")
			}
			return TextSplit(id, tt, st)
		}), nil
	},
	"Text/contains": func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		t, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		sub, err := ev.requireArg(ctx, env, pass, id, call, "sub")
		if err != nil {
			return nil, err
		}
		return CombineLatest([]Stream{t, sub}, func(vs []Value) Value {
			tt, terr := asText(vs[0])
			st, serr := asText(vs[1])
			if terr != nil || serr != nil {
				return NewErrorTag("Text/contains requires Text arguments")
			}
			return TextContains(tt, st)
		}), nil
	},
	"Bytes/to_hex": func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		l, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		return MapStream(l, func(v Value) Value {
			lst, err := asList(v)
			if err != nil {
				return NewErrorTag(err.Error())
			}
			return BytesToHex(lst)
		}), nil
	},
	"Bytes/from_hex": func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		t, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		return MapStream(t, func(v Value) Value {
			tt, err := asText(v)
			if err != nil {
				return NewErrorTag(err.Error())
			}
			lst, ok := BytesFromHex(id, tt)
			if !ok {
				return NewErrorTag("Bytes/from_hex: odd-length or non-hex input")
			}
			return lst
		}), nil
	},
	"Bits/to_number": func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		b, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		return MapStream(b, func(v Value) Value {
			bits, ok := v.(*Bits)
			if !ok {
				return NewErrorTag("Bits/to_number requires a BITS value")
			}
			return bits.ToNumber()
		}), nil
	},
	"Bits/u_from_number": wrapBitsFromNumber(BitsUFromNumber),
	"Bits/s_from_number": wrapBitsFromNumber(BitsSFromNumber),
	"Stream/interval":    evalStreamInterval,
	"Stream/delay":       evalStreamDelay,
	"Log/info":           evalLog(func(l SLogger, msg string) { l.Info(msg) }),
	"Log/warn":           evalLog(func(l SLogger, msg string) { l.Warn(msg) }),
	"Log/error":          evalLog(func(l SLogger, msg string) { l.Warn(msg) }),
}

func wrapNumberToNumber(f func(Number) Number) stdlibFn {
	return func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		arg, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		return MapStream(arg, func(v Value) Value {
			n, err := asNumber(v)
			if err != nil {
				return NewErrorTag(err.Error())
			}
			return f(n)
		}), nil
	}
}

func wrapListToNumber(f func(*List) Number) stdlibFn {
	return func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		arg, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		return MapStream(arg, func(v Value) Value {
			l, err := asList(v)
			if err != nil {
				return NewErrorTag(err.Error())
			}
			return f(l)
		}), nil
	}
}

func wrapListToValue(f func(*List) Value) stdlibFn {
	return func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		arg, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		return MapStream(arg, func(v Value) Value {
			l, err := asList(v)
			if err != nil {
				return NewErrorTag(err.Error())
			}
			return f(l)
		}), nil
	}
}

func wrapTextToText(f func(Text) Text) stdlibFn {
	return func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		arg, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		return MapStream(arg, func(v Value) Value {
			t, err := asText(v)
			if err != nil {
				return NewErrorTag(err.Error())
			}
			return f(t)
		}), nil
	}
}

func wrapTextToNumber(f func(Text) Number) stdlibFn {
	return func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		arg, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		return MapStream(arg, func(v Value) Value {
			t, err := asText(v)
			if err != nil {
				return NewErrorTag(err.Error())
			}
			return f(t)
		}), nil
	}
}

func wrapBitsFromNumber(f func(Number, int) *Bits) stdlibFn {
	return func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		n, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		w, err := ev.requireArg(ctx, env, pass, id, call, "width")
		if err != nil {
			return nil, err
		}
		return CombineLatest([]Stream{n, w}, func(vs []Value) Value {
			num, nerr := asNumber(vs[0])
			width, werr := asNumber(vs[1])
			if nerr != nil || werr != nil {
				return NewErrorTag("Bits conversion requires Number arguments")
			}
			return f(num, int(width))
		}), nil
	}
}

// bodyFn lowers a List operation's per-element body argument, evaluated
// synchronously for each element with `item`/`index` pushed onto the PASS
// context (§4.2).
func (ev *Evaluator) bodyFn(ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr, argName string) (func(item Value, index int) (Value, error), error) {
	bodyExpr, ok := argExpr(call, argName)
	if !ok {
		return nil, &InvariantError{Invariant: "missing-argument", Detail: call.Callee + " requires argument '" + argName + "'"}
	}
	return func(item Value, index int) (Value, error) {
		itemPass := make(PassFrame, len(pass)+2)
		for k, v := range pass {
			itemPass[k] = v
		}
		itemPass["item"] = item
		itemPass["index"] = Number(index)
		s, err := ev.eval(ctx, env, itemPass, id.Child("body", index), bodyExpr)
		if err != nil {
			return nil, err
		}
		return evalOnce(ctx, ev.clock, s)
	}, nil
}

func argExpr(call *CallExpr, name string) (Expr, bool) {
	for i, a := range call.Args {
		if a.Name == name || (name == "" && a.Name == "" && i == 0) {
			return a.Value, true
		}
	}
	return nil, false
}

func evalListMap(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
	listArg, err := ev.requireArg(ctx, env, pass, id, call, "")
	if err != nil {
		return nil, err
	}
	body, err := ev.bodyFn(ctx, env, pass, id, call, "body")
	if err != nil {
		return nil, err
	}
	cache := ev.transformCache(id)
	return MapStream(listArg, func(v Value) Value {
		l, err := asList(v)
		if err != nil {
			return NewErrorTag(err.Error())
		}
		out, err := cache.ListMap(ctx, l, func(item Value) (Value, error) {
			return body(item, 0)
		})
		if err != nil {
			return NewErrorTag(err.Error())
		}
		// out is either the mapped *List or, per §4.3.1/invariant 7, the
		// first *Flushed one of the bodies produced — returned as-is so
		// the binding boundary (flush.go's Unwrap) restores it.
		return out
	}), nil
}

func evalListRetain(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
	listArg, err := ev.requireArg(ctx, env, pass, id, call, "")
	if err != nil {
		return nil, err
	}
	body, err := ev.bodyFn(ctx, env, pass, id, call, "body")
	if err != nil {
		return nil, err
	}
	return MapStream(listArg, func(v Value) Value {
		l, err := asList(v)
		if err != nil {
			return NewErrorTag(err.Error())
		}
		return ListRetain(l, func(item Value) bool {
			result, err := body(item, 0)
			if err != nil {
				return false
			}
			b, _ := result.(Bool)
			return bool(b)
		})
	}), nil
}

func evalListSortBy(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
	listArg, err := ev.requireArg(ctx, env, pass, id, call, "")
	if err != nil {
		return nil, err
	}
	keyExpr, ok := argExpr(call, "key")
	if !ok {
		return nil, &InvariantError{Invariant: "missing-argument", Detail: "List/sort_by requires argument 'key'"}
	}
	return MapStream(listArg, func(v Value) Value {
		l, err := asList(v)
		if err != nil {
			return NewErrorTag(err.Error())
		}
		keyOf := func(item Value) Value {
			itemPass := make(PassFrame, len(pass)+1)
			for k, pv := range pass {
				itemPass[k] = pv
			}
			itemPass["item"] = item
			s, err := ev.eval(ctx, env, itemPass, id.Child("key", 0), keyExpr)
			if err != nil {
				return nil
			}
			val, err := evalOnce(ctx, ev.clock, s)
			if err != nil {
				return nil
			}
			return val
		}
		return ListSortBy(l, func(a, b Value) bool {
			ka, kb := keyOf(a), keyOf(b)
			an, aok := ka.(Number)
			bn, bok := kb.(Number)
			if aok && bok {
				return an < bn
			}
			return FormatValue(ka) < FormatValue(kb)
		})
	}), nil
}

func evalListEvery(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
	listArg, err := ev.requireArg(ctx, env, pass, id, call, "")
	if err != nil {
		return nil, err
	}
	body, err := ev.bodyFn(ctx, env, pass, id, call, "body")
	if err != nil {
		return nil, err
	}
	return MapStream(listArg, func(v Value) Value {
		l, err := asList(v)
		if err != nil {
			return NewErrorTag(err.Error())
		}
		return ListEvery(l, func(item Value) bool {
			result, err := body(item, 0)
			b, _ := result.(Bool)
			return err == nil && bool(b)
		})
	}), nil
}

func evalListAny(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
	listArg, err := ev.requireArg(ctx, env, pass, id, call, "")
	if err != nil {
		return nil, err
	}
	body, err := ev.bodyFn(ctx, env, pass, id, call, "body")
	if err != nil {
		return nil, err
	}
	return MapStream(listArg, func(v Value) Value {
		l, err := asList(v)
		if err != nil {
			return NewErrorTag(err.Error())
		}
		return ListAny(l, func(item Value) bool {
			result, err := body(item, 0)
			b, _ := result.(Bool)
			return err == nil && bool(b)
		})
	}), nil
}

func evalListAppend(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
	listArg, err := ev.requireArg(ctx, env, pass, id, call, "")
	if err != nil {
		return nil, err
	}
	itemArg, err := ev.requireArg(ctx, env, pass, id, call, "item")
	if err != nil {
		return nil, err
	}
	return CombineLatest([]Stream{listArg, itemArg}, func(vs []Value) Value {
		l, err := asList(vs[0])
		if err != nil {
			return NewErrorTag(err.Error())
		}
		return l.WithAppend(id, vs[1])
	}), nil
}

func evalListFold(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
	listArg, err := ev.requireArg(ctx, env, pass, id, call, "")
	if err != nil {
		return nil, err
	}
	initArg, err := ev.requireArg(ctx, env, pass, id, call, "initial")
	if err != nil {
		return nil, err
	}
	bodyExpr, ok := argExpr(call, "body")
	if !ok {
		return nil, &InvariantError{Invariant: "missing-argument", Detail: "List/fold requires argument 'body'"}
	}
	return CombineLatest([]Stream{listArg, initArg}, func(vs []Value) Value {
		l, err := asList(vs[0])
		if err != nil {
			return NewErrorTag(err.Error())
		}
		result, err := ListFold(l, vs[1], func(acc, item Value) (Value, error) {
			itemPass := make(PassFrame, len(pass)+2)
			for k, pv := range pass {
				itemPass[k] = pv
			}
			itemPass["acc"] = acc
			itemPass["item"] = item
			s, err := ev.eval(ctx, env, itemPass, id.Child("fold", 0), bodyExpr)
			if err != nil {
				return nil, err
			}
			return evalOnce(ctx, ev.clock, s)
		})
		if err != nil {
			return NewErrorTag(err.Error())
		}
		return result
	}), nil
}

// evalStreamInterval lowers the bridge's `Stream/interval(millis:)` timer
// source (§5): a finite-free recurring tick, one Number (a monotonically
// increasing tick count starting at 1) per period.
func evalStreamInterval(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
	millisArg, err := ev.requireArg(ctx, env, pass, id, call, "millis")
	if err != nil {
		return nil, err
	}
	millisVal, err := evalOnce(ctx, ev.clock, millisArg)
	if err != nil {
		return nil, err
	}
	millis, err := asNumber(millisVal)
	if err != nil {
		return nil, err
	}
	return &streamFunc{
		lifetime: Infinite,
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			ticker := time.NewTicker(time.Duration(millis) * time.Millisecond)
			defer ticker.Stop()
			count := Number(0)
			for {
				select {
				case <-ticker.C:
					count++
					select {
					case out <- clock.Tick(count):
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		},
	}, nil
}

// evalStreamDelay lowers `x |> Stream/delay(millis:)`: re-emits every
// value from x after a fixed delay, preserving order.
func evalStreamDelay(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
	inputArg, err := ev.requireArg(ctx, env, pass, id, call, "")
	if err != nil {
		return nil, err
	}
	millisArg, err := ev.requireArg(ctx, env, pass, id, call, "millis")
	if err != nil {
		return nil, err
	}
	millisVal, err := evalOnce(ctx, ev.clock, millisArg)
	if err != nil {
		return nil, err
	}
	millis, err := asNumber(millisVal)
	if err != nil {
		return nil, err
	}
	delay := time.Duration(millis) * time.Millisecond
	return &streamFunc{
		lifetime: inputArg.Lifetime(),
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			in := inputArg.Open(ctx, clock)
			for {
				select {
				case env, ok := <-in:
					if !ok {
						return
					}
					select {
					case <-time.After(delay):
					case <-ctx.Done():
						return
					}
					select {
					case out <- clock.Tick(env.Payload):
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		},
	}, nil
}

// evalLog lowers `x |> Log/info()` (and `Log/warn`, `Log/error`): a
// pass-through of its piped input x, logged as a side effect through the
// configured [SLogger] on every firing, matching the bridge contract's
// logging surface (§5). `Log/error` logs at Warn level.
func evalLog(write func(SLogger, string)) stdlibFn {
	return func(ev *Evaluator, ctx context.Context, env *Env, pass PassFrame, id PersistenceId, call *CallExpr) (Stream, error) {
		msgArg, err := ev.requireArg(ctx, env, pass, id, call, "")
		if err != nil {
			return nil, err
		}
		return MapStream(msgArg, func(v Value) Value {
			write(ev.logger, FormatValue(v))
			return v
		}), nil
	}
}
