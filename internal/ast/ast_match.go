package ast

import (
	"strings"

	"github.com/sumlower/sumlower/internal/token"
)

// TypeLevelExpr is either a plain node (a Type, Expr or GenericArg) or a
// match construct. Exactly one of the two fields is set.
type TypeLevelExpr struct {
	Plain Node
	Match *Match
}

func (e *TypeLevelExpr) GetSpan() token.Span {
	if e.Match != nil {
		return e.Match.Span
	}
	if e.Plain != nil {
		return e.Plain.GetSpan()
	}
	return token.Span{}
}

func (e *TypeLevelExpr) String() string {
	if e.Match != nil {
		return e.Match.String()
	}
	if e.Plain != nil {
		return e.Plain.String()
	}
	return ""
}

// IsMatch reports whether the expression is a match construct.
func (e *TypeLevelExpr) IsMatch() bool { return e != nil && e.Match != nil }

// PlainExpr wraps a plain node.
func PlainExpr(n Node) TypeLevelExpr { return TypeLevelExpr{Plain: n} }

// MatchExpr wraps a match construct.
func MatchExpr(m *Match) TypeLevelExpr { return TypeLevelExpr{Match: m} }

// Match is the pattern-dispatch construct: match <S1, S2> { arms }. The
// scrutinee tuple is matched position-wise by each arm's selector list.
type Match struct {
	Scrutinees []Type
	Arms       []*Arm
	Span       token.Span
}

func (m *Match) GetSpan() token.Span { return m.Span }

func (m *Match) String() string {
	parts := make([]string, len(m.Scrutinees))
	for i, s := range m.Scrutinees {
		parts[i] = s.String()
	}
	var sb strings.Builder
	sb.WriteString("match <" + strings.Join(parts, ", ") + "> {")
	for _, a := range m.Arms {
		sb.WriteString(" " + a.String() + ",")
	}
	sb.WriteString(" }")
	return sb.String()
}

// Arm is one match arm: one selector per scrutinee, then a body. The body is
// itself a type-level expression, so matches nest.
type Arm struct {
	Selectors []*Selector
	Body      TypeLevelExpr
	Span      token.Span
}

func (a *Arm) GetSpan() token.Span { return a.Span }

func (a *Arm) String() string {
	parts := make([]string, len(a.Selectors))
	for i, s := range a.Selectors {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ") + " => " + a.Body.String()
}

// SpecificGenerics returns the parameter lists introduced by the arm's
// specific selectors; default selectors introduce none.
func (a *Arm) SpecificGenerics() []*Generics {
	var gs []*Generics
	for _, s := range a.Selectors {
		if !s.IsDefault() {
			gs = append(gs, &s.Generics)
		}
	}
	return gs
}

// Selector names one variant (with a fresh local parameter list the body may
// reference) or is the default selector `_`.
type Selector struct {
	Variant  string // "" for the default selector
	Generics Generics
	Span     token.Span
}

func (s *Selector) GetSpan() token.Span { return s.Span }
func (s *Selector) IsDefault() bool     { return s.Variant == "" }

func (s *Selector) String() string {
	if s.IsDefault() {
		return "_"
	}
	return s.Variant + s.Generics.ParamsString()
}
