package ast

import (
	"strings"

	"github.com/sumlower/sumlower/internal/token"
)

// SelfTypeName is the reserved name of the implicit dispatch subject. A match
// compiled into a trait-associated item refers to the matched parameter
// through this name.
const SelfTypeName = "Self"

// Node is the base interface for all tree fragments that participate in
// lowering.
type Node interface {
	GetSpan() token.Span
	String() string
}

// Lifetime is a lifetime reference such as 'a.
type Lifetime struct {
	Name string // without the leading quote
	Span token.Span
}

func (l *Lifetime) GetSpan() token.Span { return l.Span }
func (l *Lifetime) String() string      { return "'" + l.Name }

// PathSegment is one segment of a path, optionally carrying generic
// arguments: Name or Name<Args...>.
type PathSegment struct {
	Ident string
	Args  []GenericArg
	Span  token.Span
}

func (s *PathSegment) GetSpan() token.Span { return s.Span }

func (s *PathSegment) String() string {
	if len(s.Args) == 0 {
		return s.Ident
	}
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return s.Ident + "<" + strings.Join(parts, ", ") + ">"
}

// Path is a possibly absolute sequence of segments: A::B<X>::C.
type Path struct {
	Absolute bool // leading ::
	Segments []PathSegment
}

func (p *Path) GetSpan() token.Span {
	if len(p.Segments) > 0 {
		return p.Segments[0].Span
	}
	return token.Span{}
}

func (p *Path) String() string {
	var sb strings.Builder
	if p.Absolute {
		sb.WriteString("::")
	}
	for i := range p.Segments {
		if i > 0 {
			sb.WriteString("::")
		}
		sb.WriteString(p.Segments[i].String())
	}
	return sb.String()
}

// IsIdent reports whether the path is exactly one bare, relative segment with
// the given name. Only such paths are substitution targets.
func (p *Path) IsIdent(name string) bool {
	return !p.Absolute && len(p.Segments) == 1 &&
		len(p.Segments[0].Args) == 0 && p.Segments[0].Ident == name
}

// PathOf builds a relative single-segment path.
func PathOf(ident string, span token.Span) Path {
	return Path{Segments: []PathSegment{{Ident: ident, Span: span}}}
}

// Qualifier is the explicit type ascription at the head of a qualified path:
// <T>::Rest or <T as Trait>::Rest.
type Qualifier struct {
	Type  Type
	Trait *Path // nil for plain <T>:: qualification
}

func (q *Qualifier) String() string {
	if q.Trait != nil {
		return "<" + q.Type.String() + " as " + q.Trait.String() + ">"
	}
	return "<" + q.Type.String() + ">"
}

// TraitBound is a single trait bound on a type parameter: Trait or
// Trait<Args...>.
type TraitBound struct {
	Path Path
	Span token.Span
}

func (b *TraitBound) GetSpan() token.Span { return b.Span }
func (b *TraitBound) String() string      { return b.Path.String() }

// EqualTokens reports token-for-token structural equality of two nodes, the
// way the lowering validates that an implementation block re-declares its
// target's exact parameter list.
func EqualTokens(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}
