package ast

import (
	"strings"

	"github.com/sumlower/sumlower/internal/token"
)

// Decl is a top-level declaration handed over by the parser.
type Decl interface {
	Node
	declNode()
}

// Variant is one named variant of a sum-type declaration, carrying its own
// extra parameter list.
type Variant struct {
	Ident    string
	Generics Generics
	Span     token.Span
}

func (v *Variant) GetSpan() token.Span { return v.Span }
func (v *Variant) String() string      { return v.Ident + v.Generics.ParamsString() }

// AliasArg is one argument of an alias declaration's target path. Its value
// may itself be a match construct, which makes the alias "non-trivial" and
// dispatch structurally required.
type AliasArg struct {
	Value TypeLevelExpr
	Span  token.Span
}

func (a *AliasArg) GetSpan() token.Span { return a.Span }
func (a *AliasArg) String() string      { return a.Value.String() }

// TraitPath is the target of an alias declaration: a named trait path plus
// argument expressions.
type TraitPath struct {
	Path Path
	Args []*AliasArg
	Span token.Span
}

func (t *TraitPath) GetSpan() token.Span { return t.Span }

func (t *TraitPath) String() string {
	if len(t.Args) == 0 {
		return t.Path.String()
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Path.String() + "<" + strings.Join(parts, ", ") + ">"
}

// HasComplexArg reports whether any argument holds a match construct.
func (t *TraitPath) HasComplexArg() bool {
	for _, a := range t.Args {
		if a.Value.IsMatch() {
			return true
		}
	}
	return false
}

// TraitDef declares a closed sum type with dispatchable behavior: either an
// explicit variant list or an alias to another trait path. Once declared,
// the variant set (or alias target) never changes.
type TraitDef struct {
	Ident    string
	Generics Generics
	Variants []*Variant // enum form; nil for the alias form
	Alias    *TraitPath // alias form; nil for the enum form
	Span     token.Span
}

func (d *TraitDef) GetSpan() token.Span { return d.Span }
func (d *TraitDef) declNode()           {}

// IsAlias reports whether the declaration is an alias rather than an
// explicit variant list.
func (d *TraitDef) IsAlias() bool { return d.Alias != nil }

func (d *TraitDef) String() string {
	var sb strings.Builder
	if d.IsAlias() {
		sb.WriteString("trait " + d.Ident + d.Generics.ParamsString())
		sb.WriteString(" = " + d.Alias.String())
		if d.Generics.Where != nil {
			sb.WriteString(" " + d.Generics.Where.String())
		}
		sb.WriteString(";")
		return sb.String()
	}
	sb.WriteString("enum trait " + d.Ident + d.Generics.ParamsString())
	if d.Generics.Where != nil {
		sb.WriteString(" " + d.Generics.Where.String())
	}
	sb.WriteString(" {")
	for _, v := range d.Variants {
		sb.WriteString(" " + v.String() + ",")
	}
	sb.WriteString(" }")
	return sb.String()
}

// ImplItem is one item body supplied by an implementation block, keyed by an
// unqualified name unique per target.
type ImplItem interface {
	Node
	ItemName() string
	CloneImplItem() ImplItem
	implItemNode()
}

// ImplConst is an associated constant: const NAME: Type = expr;.
type ImplConst struct {
	Ident    string
	Generics Generics
	Type     Type
	Value    TypeLevelExpr
	Span     token.Span
}

func (c *ImplConst) GetSpan() token.Span { return c.Span }
func (c *ImplConst) ItemName() string    { return c.Ident }
func (c *ImplConst) implItemNode()       {}

func (c *ImplConst) String() string {
	return "const " + c.Ident + c.Generics.ParamsString() + ": " + c.Type.String() +
		" = " + c.Value.String() + ";"
}

// ImplType is an associated type alias: type NAME<G>: Bounds = ty;.
type ImplType struct {
	Ident    string
	Generics Generics
	Bounds   []*TraitBound
	Value    TypeLevelExpr
	Span     token.Span
}

func (t *ImplType) GetSpan() token.Span { return t.Span }
func (t *ImplType) ItemName() string    { return t.Ident }
func (t *ImplType) implItemNode()       {}

func (t *ImplType) String() string {
	var sb strings.Builder
	sb.WriteString("type " + t.Ident + t.Generics.ParamsString())
	if len(t.Bounds) > 0 {
		parts := make([]string, len(t.Bounds))
		for i, b := range t.Bounds {
			parts[i] = b.String()
		}
		sb.WriteString(": " + strings.Join(parts, " + "))
	}
	sb.WriteString(" = " + t.Value.String() + ";")
	return sb.String()
}

// ImplFn is an associated function.
type ImplFn struct {
	Sig  Signature
	Body TypeLevelExpr
	Span token.Span
}

func (f *ImplFn) GetSpan() token.Span { return f.Span }
func (f *ImplFn) ItemName() string    { return f.Sig.Ident }
func (f *ImplFn) implItemNode()       {}

func (f *ImplFn) String() string {
	return f.Sig.String() + " { " + f.Body.String() + " }"
}

// TraitImpl supplies item bodies for one previously declared sum type. Its
// parameter list must be structurally identical to the target's, and the
// target arguments must be bare references to those same parameters.
type TraitImpl struct {
	Generics Generics
	Target   Path
	Items    []ImplItem
	Span     token.Span
}

func (d *TraitImpl) GetSpan() token.Span { return d.Span }
func (d *TraitImpl) declNode()           {}

func (d *TraitImpl) String() string {
	var sb strings.Builder
	sb.WriteString("trait impl" + d.Generics.ParamsString() + " " + d.Target.String() + " {")
	for _, it := range d.Items {
		sb.WriteString(" " + it.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

// TypeDecl is a free type-level alias whose body may be a match construct.
type TypeDecl struct {
	Ident    string
	Generics Generics
	Bounds   []*TraitBound
	Value    TypeLevelExpr
	Span     token.Span
}

func (d *TypeDecl) GetSpan() token.Span { return d.Span }
func (d *TypeDecl) declNode()           {}

func (d *TypeDecl) String() string {
	var sb strings.Builder
	sb.WriteString("type " + d.Ident + d.Generics.ParamsString())
	if len(d.Bounds) > 0 {
		parts := make([]string, len(d.Bounds))
		for i, b := range d.Bounds {
			parts[i] = b.String()
		}
		sb.WriteString(": " + strings.Join(parts, " + "))
	}
	sb.WriteString(" = " + d.Value.String() + ";")
	return sb.String()
}

// FnDecl is a free function whose body may be a match construct.
type FnDecl struct {
	Sig  Signature
	Body TypeLevelExpr
	Span token.Span
}

func (d *FnDecl) GetSpan() token.Span { return d.Span }
func (d *FnDecl) declNode()           {}

func (d *FnDecl) String() string {
	return d.Sig.String() + " { " + d.Body.String() + " }"
}
