// SPDX-License-Identifier: GPL-3.0-or-later

package boon

// Node types for the parsed, pre-resolution AST (§4.1, §4.3). Every Expr
// implementation carries its own source [Span] for diagnostics.
type Expr interface {
	exprSpan() Span
}

// Program is a parsed source file: a sequence of top-level bindings.
type Program struct {
	Source   string
	Bindings []*BindingExpr
}

// BindingExpr is `name: expr` (§4.2): the fundamental unit of scope.
type BindingExpr struct {
	Span  Span
	Name  string
	Value Expr
}

func (e *BindingExpr) exprSpan() Span { return e.Span }

// LiteralExpr is a number or UNPLUGGED literal.
type LiteralExpr struct {
	Span  Span
	Value Value
}

func (e *LiteralExpr) exprSpan() Span { return e.Span }

// IdentExpr references a bound name.
type IdentExpr struct {
	Span Span
	Name string
}

func (e *IdentExpr) exprSpan() Span { return e.Span }

// PassedExpr is `PASSED.field` (§4.2): resolved dynamically against the
// nearest enclosing PASS context at call time.
type PassedExpr struct {
	Span  Span
	Field string
}

func (e *PassedExpr) exprSpan() Span { return e.Span }

// PipeExpr is `a |> f(args…)` (§4.3): sugar for calling f with a as its
// first argument.
type PipeExpr struct {
	Span Span
	Left Expr
	Call *CallExpr
}

func (e *PipeExpr) exprSpan() Span { return e.Span }

// CallExpr is `Module/function(args…)` or `name(args…)`. Args are named
// except the implicit first argument supplied by a pipe (§4.1). HOLD,
// WHEN/WHILE and THEN parse to [HoldExpr], [WhenExpr] and [ThenExpr]
// instead, so the parser never sets Body or BindName.
type CallExpr struct {
	Span     Span
	Callee   string
	Args     []Arg
	Body     *BlockExpr // present for combinators taking a trailing block
	BindName string     // HOLD's `name`, empty otherwise
}

func (e *CallExpr) exprSpan() Span { return e.Span }

// Arg is one named call argument.
type Arg struct {
	Name  string
	Value Expr
}

// BlockExpr is a `{ … }` sequence of bindings ending in a final
// expression — the body of a HOLD/THEN/WHEN-arm/function.
type BlockExpr struct {
	Span     Span
	Bindings []*BindingExpr
	Result   Expr
}

func (e *BlockExpr) exprSpan() Span { return e.Span }

// LatestExpr is `LATEST { s1, s2, … }` (§4.3).
type LatestExpr struct {
	Span Span
	Arms []Expr
}

func (e *LatestExpr) exprSpan() Span { return e.Span }

// WhenExpr is `x |> WHEN { p => e, … }` / WHILE (§4.3, §4.3.2). IsWhile
// distinguishes the two purely for diagnostics; matching semantics are
// identical.
type WhenExpr struct {
	Span    Span
	Subject Expr
	Arms    []WhenArmExpr
	IsWhile bool
}

func (e *WhenExpr) exprSpan() Span { return e.Span }

// WhenArmExpr is one `pattern => expr` arm.
type WhenArmExpr struct {
	Span    Span
	Pattern Pattern
	Result  Expr
}

// ThenExpr is `x |> THEN { body }` (§4.3).
type ThenExpr struct {
	Span  Span
	Input Expr
	Body  Expr
}

func (e *ThenExpr) exprSpan() Span { return e.Span }

// HoldExpr is `initial |> HOLD name { body }` (§4.3).
type HoldExpr struct {
	Span    Span
	Initial Expr
	Name    string
	Body    Expr
}

func (e *HoldExpr) exprSpan() Span { return e.Span }

// LinkExpr is `LINK { alias }` (§4.3).
type LinkExpr struct {
	Span  Span
	Alias string
}

func (e *LinkExpr) exprSpan() Span { return e.Span }

// PulsesExpr is `PULSES { N }` (§4.3).
type PulsesExpr struct {
	Span  Span
	Count Expr
}

func (e *PulsesExpr) exprSpan() Span { return e.Span }

// FlushExpr is `FLUSH { value }` (§4.3.1).
type FlushExpr struct {
	Span  Span
	Value Expr
}

func (e *FlushExpr) exprSpan() Span { return e.Span }

// TagExpr is a tag literal or constructor: bare (`Active`) or with fields
// (`InputInterior[focus]`, `Ok[v]`).
type TagExpr struct {
	Span   Span
	Name   string
	Fields []Arg
}

func (e *TagExpr) exprSpan() Span { return e.Span }

// ListExpr is `LIST { e, … }` (§4.1).
type ListExpr struct {
	Span  Span
	Items []Expr
}

func (e *ListExpr) exprSpan() Span { return e.Span }

// BytesExpr is `BYTES { 16#FF, 255, … }` (§4.1).
type BytesExpr struct {
	Span Span
	Raw  []byte
}

func (e *BytesExpr) exprSpan() Span { return e.Span }

// BitsExpr is `BITS { width, base[s|u]digits }` (§4.1).
type BitsExpr struct {
	Span    Span
	Width   int
	Signed  bool
	Payload uint64
}

func (e *BitsExpr) exprSpan() Span { return e.Span }

// ObjectExpr is `{ field: value, …, ...spread }` (§4.3's spread rule).
type ObjectExpr struct {
	Span    Span
	Fields  []Arg
	Spreads []Expr
}

func (e *ObjectExpr) exprSpan() Span { return e.Span }

// TextExpr is `TEXT { literal {expr} … }` (§4.1).
type TextExpr struct {
	Span   Span
	Parts  []string
	Values []Expr
}

func (e *TextExpr) exprSpan() Span { return e.Span }

// FieldAccessExpr is postfix `.field`.
type FieldAccessExpr struct {
	Span  Span
	Base  Expr
	Field string
}

func (e *FieldAccessExpr) exprSpan() Span { return e.Span }

// UnplugExpr is postfix `?` (§4.3: "produces either the field value or
// Unplugged").
type UnplugExpr struct {
	Span Span
	Base Expr
}

func (e *UnplugExpr) exprSpan() Span { return e.Span }

// BinaryExpr is a comparison or arithmetic operator application.
type BinaryExpr struct {
	Span  Span
	Op    TokenKind
	Left  Expr
	Right Expr
}

func (e *BinaryExpr) exprSpan() Span { return e.Span }

// --- Patterns (§4.3.2) ---------------------------------------------------

// Pattern is a WHEN/WHILE arm's match pattern.
type Pattern interface {
	patternSpan() Span
}

// LiteralPattern matches an exact value.
type LiteralPattern struct {
	Span  Span
	Value Value
}

func (p *LiteralPattern) patternSpan() Span { return p.Span }

// TagPattern matches a bare tag or a tagged constructor with field
// binders (`InputInterior[focus]`).
type TagPattern struct {
	Span      Span
	Name      string
	FieldVars []string
}

func (p *TagPattern) patternSpan() Span { return p.Span }

// ListPattern matches `LIST[a, __, c]`: positional binders with `__` as a
// positional wildcard.
type ListPattern struct {
	Span     Span
	Elements []string // "" for wildcard
}

func (p *ListPattern) patternSpan() Span { return p.Span }

// BitsPattern matches `BITS { width, { field… } }` decomposition.
type BitsPattern struct {
	Span      Span
	Width     int
	FieldVars []string // width per field tracked by Widths
	Widths    []int    // -1 for wildcard, only valid as last entry
}

func (p *BitsPattern) patternSpan() Span { return p.Span }

// WildcardPattern is bare `__`.
type WildcardPattern struct {
	Span Span
}

func (p *WildcardPattern) patternSpan() Span { return p.Span }

// IdentPattern binds the whole matched value to a name.
type IdentPattern struct {
	Span Span
	Name string
}

func (p *IdentPattern) patternSpan() Span { return p.Span }

// UnpluggedPattern matches the `UNPLUGGED` sentinel.
type UnpluggedPattern struct {
	Span Span
}

func (p *UnpluggedPattern) patternSpan() Span { return p.Span }
