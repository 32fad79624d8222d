package ast

import (
	"strings"

	"github.com/sumlower/sumlower/internal/token"
)

// Expr is a value-level expression. The subset covers everything a
// compile-time value parameter can be substituted into.
type Expr interface {
	Node
	CloneExpr() Expr
	exprNode()
}

// ExprPath is a (possibly qualified) path in expression position.
type ExprPath struct {
	Qual *Qualifier
	Path Path
	Span token.Span
}

func (e *ExprPath) GetSpan() token.Span { return e.Span }
func (e *ExprPath) exprNode()           {}

func (e *ExprPath) String() string {
	if e.Qual != nil {
		s := e.Qual.String()
		if len(e.Path.Segments) > 0 {
			s += "::" + e.Path.String()
		}
		return s
	}
	return e.Path.String()
}

// ExprIdent builds a bare single-segment path expression.
func ExprIdent(name string, span token.Span) *ExprPath {
	return &ExprPath{Path: PathOf(name, span), Span: span}
}

// ExprLit is an opaque literal: 42, "s".
type ExprLit struct {
	Text string
	Span token.Span
}

func (e *ExprLit) GetSpan() token.Span { return e.Span }
func (e *ExprLit) String() string      { return e.Text }
func (e *ExprLit) exprNode()           {}

// ExprCall is a call: f(a, b). The callee may itself be any expression.
type ExprCall struct {
	Fn   Expr
	Args []Expr
	Span token.Span
}

func (e *ExprCall) GetSpan() token.Span { return e.Span }
func (e *ExprCall) exprNode()           {}

func (e *ExprCall) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Fn.String() + "(" + strings.Join(parts, ", ") + ")"
}

// ExprBinary is an infix operation: X + 42.
type ExprBinary struct {
	X    Expr
	Op   string
	Y    Expr
	Span token.Span
}

func (e *ExprBinary) GetSpan() token.Span { return e.Span }
func (e *ExprBinary) String() string      { return e.X.String() + " " + e.Op + " " + e.Y.String() }
func (e *ExprBinary) exprNode()           {}

// ExprTuple is a tuple expression: (a, b).
type ExprTuple struct {
	Elems []Expr
	Span  token.Span
}

func (e *ExprTuple) GetSpan() token.Span { return e.Span }
func (e *ExprTuple) exprNode()           {}

func (e *ExprTuple) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ExprClosure is an anonymous function: |a| body.
type ExprClosure struct {
	Params []string
	Body   Expr
	Span   token.Span
}

func (e *ExprClosure) GetSpan() token.Span { return e.Span }
func (e *ExprClosure) exprNode()           {}

func (e *ExprClosure) String() string {
	return "|" + strings.Join(e.Params, ", ") + "| " + e.Body.String()
}

// LetBinding is one `let name: ty = value;` entry of a block.
type LetBinding struct {
	Name  string
	Type  Type
	Value Expr
	Span  token.Span
}

func (l *LetBinding) GetSpan() token.Span { return l.Span }

func (l *LetBinding) String() string {
	if l.Type != nil {
		return "let " + l.Name + ": " + l.Type.String() + " = " + l.Value.String() + ";"
	}
	return "let " + l.Name + " = " + l.Value.String() + ";"
}

// ExprBlock is a block of let bindings followed by a value. Substituting a
// value argument into a compound expression produces exactly this shape, so
// the argument is evaluated once no matter how often the binder occurs.
type ExprBlock struct {
	Lets  []*LetBinding
	Value Expr
	Span  token.Span
}

func (e *ExprBlock) GetSpan() token.Span { return e.Span }
func (e *ExprBlock) exprNode()           {}

func (e *ExprBlock) String() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for _, l := range e.Lets {
		sb.WriteString(l.String())
		sb.WriteString(" ")
	}
	if e.Value != nil {
		sb.WriteString(e.Value.String())
		sb.WriteString(" ")
	}
	sb.WriteString("}")
	return sb.String()
}

// FnParam is a named value parameter of a signature.
type FnParam struct {
	Name string
	Type Type
	Span token.Span
}

func (p *FnParam) GetSpan() token.Span { return p.Span }
func (p *FnParam) String() string      { return p.Name + ": " + p.Type.String() }

// Signature is a function header participating in substitution: generics,
// inputs and output all may contain binder occurrences.
type Signature struct {
	Const    bool
	Ident    string
	Generics Generics
	Inputs   []*FnParam
	Output   Type // nil when the function returns nothing
	Span     token.Span
}

func (s *Signature) GetSpan() token.Span { return s.Span }

func (s *Signature) String() string {
	var sb strings.Builder
	if s.Const {
		sb.WriteString("const ")
	}
	sb.WriteString("fn ")
	sb.WriteString(s.Ident)
	sb.WriteString(s.Generics.ParamsString())
	parts := make([]string, len(s.Inputs))
	for i, p := range s.Inputs {
		parts[i] = p.String()
	}
	sb.WriteString("(" + strings.Join(parts, ", ") + ")")
	if s.Output != nil {
		sb.WriteString(" -> " + s.Output.String())
	}
	if s.Generics.Where != nil {
		sb.WriteString(" " + s.Generics.Where.String())
	}
	return sb.String()
}
