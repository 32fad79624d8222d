package ast

import (
	"strings"

	"github.com/sumlower/sumlower/internal/token"
)

// Type is a type expression.
type Type interface {
	Node
	CloneType() Type
	typeNode()
}

// TypePath is a (possibly qualified) path in type position: A, A::C,
// F<X, Y>, <(X, Y)>::C, <T as Trait>::Item.
type TypePath struct {
	Qual *Qualifier
	Path Path
	Span token.Span
}

func (t *TypePath) GetSpan() token.Span { return t.Span }
func (t *TypePath) typeNode()           {}

func (t *TypePath) String() string {
	if t.Qual != nil {
		s := t.Qual.String()
		if len(t.Path.Segments) > 0 {
			s += "::" + t.Path.String()
		}
		return s
	}
	return t.Path.String()
}

// TypeIdent builds a bare single-segment path type.
func TypeIdent(name string, span token.Span) *TypePath {
	return &TypePath{Path: PathOf(name, span), Span: span}
}

// TypeIsIdent reports whether the type is a bare, unqualified reference to
// the given name.
func TypeIsIdent(t Type, name string) bool {
	p, ok := t.(*TypePath)
	return ok && p.Qual == nil && p.Path.IsIdent(name)
}

// TypeTuple is a tuple type: (X, Y).
type TypeTuple struct {
	Elems []Type
	Span  token.Span
}

func (t *TypeTuple) GetSpan() token.Span { return t.Span }
func (t *TypeTuple) typeNode()           {}

func (t *TypeTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// TypeRef is a reference type with an optional lifetime: &'a T.
type TypeRef struct {
	Lifetime *Lifetime
	Elem     Type
	Span     token.Span
}

func (t *TypeRef) GetSpan() token.Span { return t.Span }
func (t *TypeRef) typeNode()           {}

func (t *TypeRef) String() string {
	if t.Lifetime != nil {
		return "&" + t.Lifetime.String() + " " + t.Elem.String()
	}
	return "&" + t.Elem.String()
}
