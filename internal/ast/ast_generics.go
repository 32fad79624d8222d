package ast

import (
	"strings"

	"github.com/sumlower/sumlower/internal/token"
)

// GenericParam is a symbolic binder introduced by a parameter list. The three
// kinds are lifetime-valued, type-valued and compile-time-value-valued.
// Identity for conflict purposes is kind-compatibility plus name equality:
// type and const parameters share one declarative namespace, lifetimes form
// their own.
type GenericParam interface {
	Node
	// ParamName is the binder's bare name (without the quote for lifetimes).
	ParamName() string
	CloneParam() GenericParam
	genericParamNode()
}

// LifetimeParam declares a lifetime parameter, optionally with lifetime
// bounds: 'a or 'a: 'b + 'c. The bounds are evaluated in the enclosing scope,
// not in the scope the parameter itself introduces.
type LifetimeParam struct {
	Lifetime Lifetime
	Bounds   []*Lifetime
	Span     token.Span
}

func (p *LifetimeParam) GetSpan() token.Span { return p.Span }
func (p *LifetimeParam) ParamName() string   { return p.Lifetime.Name }
func (p *LifetimeParam) genericParamNode()   {}

func (p *LifetimeParam) String() string {
	if len(p.Bounds) == 0 {
		return p.Lifetime.String()
	}
	parts := make([]string, len(p.Bounds))
	for i, b := range p.Bounds {
		parts[i] = b.String()
	}
	return p.Lifetime.String() + ": " + strings.Join(parts, " + ")
}

// TypeParam declares a type parameter with optional trait bounds: T or
// T: Trait<X>.
type TypeParam struct {
	Ident  string
	Bounds []*TraitBound
	Span   token.Span
}

func (p *TypeParam) GetSpan() token.Span { return p.Span }
func (p *TypeParam) ParamName() string   { return p.Ident }
func (p *TypeParam) genericParamNode()   {}

func (p *TypeParam) String() string {
	if len(p.Bounds) == 0 {
		return p.Ident
	}
	parts := make([]string, len(p.Bounds))
	for i, b := range p.Bounds {
		parts[i] = b.String()
	}
	return p.Ident + ": " + strings.Join(parts, " + ")
}

// ConstParam declares a compile-time value parameter: const N: usize.
type ConstParam struct {
	Ident string
	Type  Type
	Span  token.Span
}

func (p *ConstParam) GetSpan() token.Span { return p.Span }
func (p *ConstParam) ParamName() string   { return p.Ident }
func (p *ConstParam) genericParamNode()   {}
func (p *ConstParam) String() string      { return "const " + p.Ident + ": " + p.Type.String() }

// SelfTypeParam builds the implicit dispatch-subject parameter carrying the
// given bounds.
func SelfTypeParam(bounds []*TraitBound, span token.Span) *TypeParam {
	return &TypeParam{Ident: SelfTypeName, Bounds: bounds, Span: span}
}

// WherePredicate is a single `Target: Bounds` constraint in a where clause.
type WherePredicate struct {
	Target Type
	Bounds []*TraitBound
	Span   token.Span
}

func (w *WherePredicate) GetSpan() token.Span { return w.Span }

func (w *WherePredicate) String() string {
	parts := make([]string, len(w.Bounds))
	for i, b := range w.Bounds {
		parts[i] = b.String()
	}
	return w.Target.String() + ": " + strings.Join(parts, " + ")
}

// WhereClause carries the constraints whose presence makes pattern dispatch
// structurally required for a declaration.
type WhereClause struct {
	Predicates []*WherePredicate
	Span       token.Span
}

func (w *WhereClause) GetSpan() token.Span { return w.Span }

func (w *WhereClause) String() string {
	parts := make([]string, len(w.Predicates))
	for i, p := range w.Predicates {
		parts[i] = p.String()
	}
	return "where " + strings.Join(parts, ", ")
}

// Generics is an ordered parameter list with an optional where clause.
type Generics struct {
	Params []GenericParam
	Where  *WhereClause
	Span   token.Span
}

func (g *Generics) GetSpan() token.Span { return g.Span }

// ParamsString renders just the angle-bracketed parameter list, or "" when
// there are no parameters.
func (g *Generics) ParamsString() string {
	if len(g.Params) == 0 {
		return ""
	}
	parts := make([]string, len(g.Params))
	for i, p := range g.Params {
		parts[i] = p.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (g *Generics) String() string {
	var sb strings.Builder
	sb.WriteString(g.ParamsString())
	if g.Where != nil {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(g.Where.String())
	}
	return sb.String()
}

// GenericArg is a concrete argument supplied for a generic parameter.
type GenericArg interface {
	Node
	CloneArg() GenericArg
	genericArgNode()
}

// LifetimeArg supplies a lifetime.
type LifetimeArg struct {
	Lifetime *Lifetime
}

func (a *LifetimeArg) GetSpan() token.Span { return a.Lifetime.Span }
func (a *LifetimeArg) String() string      { return a.Lifetime.String() }
func (a *LifetimeArg) genericArgNode()     {}

// TypeArg supplies a type.
type TypeArg struct {
	Type Type
}

func (a *TypeArg) GetSpan() token.Span { return a.Type.GetSpan() }
func (a *TypeArg) String() string      { return a.Type.String() }
func (a *TypeArg) genericArgNode()     {}

// ConstArg supplies a compile-time value. Anything but a bare path renders
// inside braces, which is how the argument re-enters type position.
type ConstArg struct {
	Expr Expr
}

func (a *ConstArg) GetSpan() token.Span { return a.Expr.GetSpan() }
func (a *ConstArg) genericArgNode()     {}

func (a *ConstArg) String() string {
	if p, ok := a.Expr.(*ExprPath); ok && p.Qual == nil {
		return p.String()
	}
	return "{" + a.Expr.String() + "}"
}

// GenericsContext is the immutable scope chain enclosing an expression,
// innermost first. A scope is either a single implicit self parameter or an
// ordered parameter list. The nil context is the outermost (empty) one.
type GenericsContext struct {
	SelfParam GenericParam // single dispatch-subject scope
	Generics  *Generics    // ordinary parameter-list scope
	Next      *GenericsContext
}

// WithSelf prepends a single-parameter scope.
func WithSelf(p GenericParam, next *GenericsContext) *GenericsContext {
	return &GenericsContext{SelfParam: p, Next: next}
}

// WithGenerics prepends an ordinary parameter-list scope.
func WithGenerics(g *Generics, next *GenericsContext) *GenericsContext {
	return &GenericsContext{Generics: g, Next: next}
}
