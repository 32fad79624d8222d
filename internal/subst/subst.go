// Package subst implements capture-avoiding substitution of generic
// parameters throughout declaration trees, the renaming machinery built on
// it, and the closure-conversion algorithm that lifts expressions out of
// nested binder scopes.
package subst

import (
	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/diagnostics"
	"github.com/sumlower/sumlower/internal/token"
)

type argMode int

const (
	testOnly argMode = iota
	paramMode
	valueMode
)

// Arg is the substitution argument. It is either test-only (occurrences are
// collected but nothing is rewritten), another parameter (used while
// renaming), or a concrete generic argument (used for an instantiation).
type Arg struct {
	mode  argMode
	param ast.GenericParam
	value ast.GenericArg
}

// TestOnly collects occurrence locations without mutating anything.
func TestOnly() Arg { return Arg{mode: testOnly} }

// ParamArg substitutes one parameter for another of the same kind.
func ParamArg(p ast.GenericParam) Arg { return Arg{mode: paramMode, param: p} }

// ValueArg substitutes a concrete tree fragment.
func ValueArg(v ast.GenericArg) Arg { return Arg{mode: valueMode, value: v} }

// IsTestOnly reports whether the argument never rewrites.
func (a Arg) IsTestOnly() bool { return a.mode == testOnly }

// lifetime resolves the argument for a lifetime occurrence. A nil result
// with nil error means test-only mode.
func (a Arg) lifetime(span token.Span) (*ast.Lifetime, *diagnostics.DiagnosticError) {
	switch a.mode {
	case paramMode:
		lp, ok := a.param.(*ast.LifetimeParam)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrS001, a.param.GetSpan(), "non-lifetime arg for lifetime param")
		}
		return &ast.Lifetime{Name: lp.Lifetime.Name, Span: span}, nil
	case valueMode:
		la, ok := a.value.(*ast.LifetimeArg)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrS001, a.value.GetSpan(), "non-lifetime arg for lifetime param")
		}
		return la.Lifetime.CloneLifetime(), nil
	}
	return nil, nil
}

// expr resolves the argument for a value occurrence.
func (a Arg) expr(span token.Span) (ast.Expr, *diagnostics.DiagnosticError) {
	switch a.mode {
	case paramMode:
		cp, ok := a.param.(*ast.ConstParam)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrS001, a.param.GetSpan(), "non-const arg for const param")
		}
		return ast.ExprIdent(cp.Ident, span), nil
	case valueMode:
		ca, ok := a.value.(*ast.ConstArg)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrS001, a.value.GetSpan(), "non-const arg for const param")
		}
		return ca.Expr.CloneExpr(), nil
	}
	return nil, nil
}

// typ resolves the argument for a type occurrence.
func (a Arg) typ(span token.Span) (ast.Type, *diagnostics.DiagnosticError) {
	switch a.mode {
	case paramMode:
		tp, ok := a.param.(*ast.TypeParam)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrS001, a.param.GetSpan(), "non-type arg for type param")
		}
		return ast.TypeIdent(tp.Ident, span), nil
	case valueMode:
		ta, ok := a.value.(*ast.TypeArg)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrS001, a.value.GetSpan(), "non-type arg for type param")
		}
		return ta.Type.CloneType(), nil
	}
	return nil, nil
}

// Substitutable is the capability implemented by every tree slot the engine
// can rewrite. Slots wrap pointers so the root node itself may be replaced.
type Substitutable interface {
	substituteInto(ps *paramSubst)
}

// TypeSlot addresses a Type-valued slot.
type TypeSlot struct{ Type *ast.Type }

func (s TypeSlot) substituteInto(ps *paramSubst) { ps.rewriteType(s.Type) }

// ExprSlot addresses an Expr-valued slot.
type ExprSlot struct{ Expr *ast.Expr }

func (s ExprSlot) substituteInto(ps *paramSubst) { ps.rewriteExpr(s.Expr) }

// GenericArgSlot addresses a generic-argument slot.
type GenericArgSlot struct{ Arg *ast.GenericArg }

func (s GenericArgSlot) substituteInto(ps *paramSubst) { ps.rewriteGenericArg(s.Arg) }

// TypeLevelSlot addresses a type-level expression (possibly a match).
type TypeLevelSlot struct{ Expr *ast.TypeLevelExpr }

func (s TypeLevelSlot) substituteInto(ps *paramSubst) { ps.rewriteTypeLevel(s.Expr) }

// GenericsSlot addresses a whole parameter list.
type GenericsSlot struct{ Generics *ast.Generics }

func (s GenericsSlot) substituteInto(ps *paramSubst) { ps.rewriteGenerics(s.Generics) }

// ParamSlot addresses a single parameter (its bounds and metadata).
type ParamSlot struct{ Param ast.GenericParam }

func (s ParamSlot) substituteInto(ps *paramSubst) { ps.rewriteParamContents(s.Param) }

// SignatureSlot addresses a function signature's inputs and output.
type SignatureSlot struct{ Sig *ast.Signature }

func (s SignatureSlot) substituteInto(ps *paramSubst) { ps.rewriteSignature(s.Sig) }

// ImplItemSlot addresses an implementation item; the item's own generics
// shadow the substituted parameter.
type ImplItemSlot struct{ Item ast.ImplItem }

func (s ImplItemSlot) substituteInto(ps *paramSubst) {
	switch it := s.Item.(type) {
	case *ast.ImplConst:
		ps.substWithGenerics(&it.Generics, func(sub *paramSubst) {
			sub.rewriteType(&it.Type)
			sub.rewriteTypeLevel(&it.Value)
		})
	case *ast.ImplType:
		ps.substWithGenerics(&it.Generics, func(sub *paramSubst) {
			for _, b := range it.Bounds {
				sub.walkPathArgs(&b.Path)
			}
			sub.rewriteTypeLevel(&it.Value)
		})
	case *ast.ImplFn:
		ps.substWithGenerics(&it.Sig.Generics, func(sub *paramSubst) {
			sub.rewriteSignature(&it.Sig)
			sub.rewriteTypeLevel(&it.Body)
		})
	default:
		ps.fail(diagnostics.NewError(diagnostics.ErrS005, s.Item.GetSpan(), "substitution not supported within this item"))
	}
}

// Group substitutes over several slots as one unit.
type Group []Substitutable

func (g Group) substituteInto(ps *paramSubst) {
	for _, s := range g {
		s.substituteInto(ps)
	}
}

// Substitute rewrites all occurrences of param in node with arg and returns
// their source locations. Zero occurrences is a successful no-op; a kind
// mismatch is a hard failure.
func Substitute(node Substitutable, param ast.GenericParam, arg Arg) ([]token.Span, *diagnostics.DiagnosticError) {
	ps := newParamSubst(param, arg)
	node.substituteInto(ps)
	if ps.err != nil {
		return nil, ps.err
	}
	return ps.spans, nil
}

// ParamReferences collects the locations where node references param without
// mutating anything.
func ParamReferences(node Substitutable, param ast.GenericParam) ([]token.Span, *diagnostics.DiagnosticError) {
	return Substitute(node, param, TestOnly())
}

// References reports whether node depends on param.
func References(node Substitutable, param ast.GenericParam) (bool, *diagnostics.DiagnosticError) {
	spans, err := ParamReferences(node, param)
	if err != nil {
		return false, err
	}
	return len(spans) > 0, nil
}

// SubstituteAllParams substitutes every parameter of generics with the
// positionally corresponding parameter of args. Conflicting parameters in a
// working copy of generics are renamed away first so the rewrites cannot
// capture each other.
func SubstituteAllParams(node Substitutable, generics, args *ast.Generics) (bool, *diagnostics.DiagnosticError) {
	g := generics.CloneGenerics()
	substituted, err := renameConflictingParams(&g,
		func(p ast.GenericParam) (bool, *diagnostics.DiagnosticError) {
			return GenericsConflict(p, args), nil
		},
		func(sub *paramSubst) { node.substituteInto(sub) })
	if err != nil {
		return substituted, err
	}
	for i, param := range g.Params {
		if i >= len(args.Params) {
			return substituted, diagnostics.NewError(diagnostics.ErrS006, args.GetSpan(), "too few parameters")
		}
		spans, serr := Substitute(node, param, ParamArg(args.Params[i]))
		if serr != nil {
			return substituted, serr
		}
		substituted = substituted || len(spans) > 0
	}
	if len(args.Params) > len(g.Params) {
		return substituted, diagnostics.NewError(diagnostics.ErrS006, args.Params[len(g.Params)].GetSpan(), "superfluous parameter")
	}
	return substituted, nil
}

// SubstituteAll substitutes every parameter of generics with the positionally
// corresponding concrete argument.
func SubstituteAll(node Substitutable, generics *ast.Generics, args []ast.GenericArg, argsSpan token.Span) (bool, *diagnostics.DiagnosticError) {
	g := generics.CloneGenerics()
	substituted, err := renameConflictingParams(&g,
		func(p ast.GenericParam) (bool, *diagnostics.DiagnosticError) {
			for _, a := range args {
				ac := a.CloneArg()
				refs, rerr := References(GenericArgSlot{Arg: &ac}, p)
				if rerr != nil {
					return false, rerr
				}
				if refs {
					return true, nil
				}
			}
			return false, nil
		},
		func(sub *paramSubst) { node.substituteInto(sub) })
	if err != nil {
		return substituted, err
	}
	for i, param := range g.Params {
		if i >= len(args) {
			return substituted, diagnostics.NewError(diagnostics.ErrS006, argsSpan, "too few arguments")
		}
		spans, serr := Substitute(node, param, ValueArg(args[i]))
		if serr != nil {
			return substituted, serr
		}
		substituted = substituted || len(spans) > 0
	}
	if len(args) > len(g.Params) {
		return substituted, diagnostics.NewError(diagnostics.ErrS006, args[len(g.Params)].GetSpan(), "superfluous argument")
	}
	return substituted, nil
}

// ParamsConflict reports whether two binders collide: lifetimes collide only
// with lifetimes, while type and const parameters share one namespace.
func ParamsConflict(a, b ast.GenericParam) bool {
	if _, ok := a.(*ast.LifetimeParam); ok {
		_, bOK := b.(*ast.LifetimeParam)
		return bOK && a.ParamName() == b.ParamName()
	}
	if _, ok := b.(*ast.LifetimeParam); ok {
		return false
	}
	return a.ParamName() == b.ParamName()
}

// GenericsConflict reports whether any parameter of g collides with p.
func GenericsConflict(p ast.GenericParam, g *ast.Generics) bool {
	if g == nil {
		return false
	}
	for _, gp := range g.Params {
		if ParamsConflict(p, gp) {
			return true
		}
	}
	return false
}

// ContextConflict reports whether any scope of the chain declares a
// parameter colliding with p.
func ContextConflict(p ast.GenericParam, ctx *ast.GenericsContext) bool {
	for ; ctx != nil; ctx = ctx.Next {
		if ctx.SelfParam != nil && ParamsConflict(p, ctx.SelfParam) {
			return true
		}
		if ctx.Generics != nil && GenericsConflict(p, ctx.Generics) {
			return true
		}
	}
	return false
}

// GenericParamArg builds the argument that refers back to a parameter by
// name, used at the call site of a lifted declaration.
func GenericParamArg(p ast.GenericParam, span token.Span) ast.GenericArg {
	switch pp := p.(type) {
	case *ast.LifetimeParam:
		return &ast.LifetimeArg{Lifetime: &ast.Lifetime{Name: pp.Lifetime.Name, Span: span}}
	case *ast.ConstParam:
		return &ast.ConstArg{Expr: ast.ExprIdent(pp.Ident, span)}
	default:
		return &ast.TypeArg{Type: ast.TypeIdent(p.ParamName(), span)}
	}
}

// GenericArgs builds the positional argument list that passes a parameter
// list through unchanged.
func GenericArgs(g *ast.Generics) []ast.GenericArg {
	if g == nil || len(g.Params) == 0 {
		return nil
	}
	args := make([]ast.GenericArg, len(g.Params))
	for i, p := range g.Params {
		args[i] = GenericParamArg(p, p.GetSpan())
	}
	return args
}
