package subst

import (
	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/diagnostics"
	"github.com/sumlower/sumlower/internal/token"
)

// paramSubst walks a tree replacing occurrences of one generic parameter.
// The first error wins; once set, no further locations are recorded and no
// further rewrites happen.
type paramSubst struct {
	param ast.GenericParam
	arg   Arg
	spans []token.Span
	err   *diagnostics.DiagnosticError
}

func newParamSubst(param ast.GenericParam, arg Arg) *paramSubst {
	return &paramSubst{param: param, arg: arg}
}

func (ps *paramSubst) fail(err *diagnostics.DiagnosticError) {
	if ps.err == nil {
		ps.err = err
	}
}

func (ps *paramSubst) record(span token.Span) {
	if ps.err == nil {
		ps.spans = append(ps.spans, span)
	}
}

func (ps *paramSubst) rewriteLifetime(l *ast.Lifetime) {
	lp, ok := ps.param.(*ast.LifetimeParam)
	if !ok || l.Name != lp.Lifetime.Name {
		return
	}
	arg, err := ps.arg.lifetime(l.Span)
	if err != nil {
		ps.fail(err)
		return
	}
	ps.record(l.Span)
	if arg != nil && ps.err == nil {
		*l = *arg
	}
}

func (ps *paramSubst) rewriteType(t *ast.Type) {
	if tp, ok := ps.param.(*ast.TypeParam); ok && ast.TypeIsIdent(*t, tp.Ident) {
		span := (*t).GetSpan()
		arg, err := ps.arg.typ(span)
		if err != nil {
			ps.fail(err)
			return
		}
		ps.record(span)
		if arg != nil && ps.err == nil {
			*t = arg
		}
		return
	}
	switch x := (*t).(type) {
	case *ast.TypePath:
		if ps.substInPath(&x.Qual, &x.Path) {
			return
		}
		ps.walkQualifier(x.Qual)
		ps.walkPathArgs(&x.Path)
	case *ast.TypeTuple:
		for i := range x.Elems {
			ps.rewriteType(&x.Elems[i])
		}
	case *ast.TypeRef:
		if x.Lifetime != nil {
			ps.rewriteLifetime(x.Lifetime)
		}
		ps.rewriteType(&x.Elem)
	}
}

func (ps *paramSubst) rewriteExpr(e *ast.Expr) {
	if cp, ok := ps.param.(*ast.ConstParam); ok {
		if p, isPath := (*e).(*ast.ExprPath); isPath {
			if p.Qual == nil && p.Path.IsIdent(cp.Ident) {
				span := p.GetSpan()
				arg, err := ps.arg.expr(span)
				if err != nil {
					ps.fail(err)
					return
				}
				ps.record(span)
				if arg != nil && ps.err == nil {
					*e = arg
				}
				return
			}
		} else if !ps.arg.IsTestOnly() {
			// Compound expression: the argument must be evaluated exactly
			// once, so bind it to the parameter name in front of the body
			// instead of duplicating it at every occurrence. Skipped when
			// the body never mentions the parameter.
			refs, err := References(ExprSlot{Expr: e}, ps.param)
			if err != nil {
				ps.fail(err)
				return
			}
			if !refs {
				return
			}
			span := (*e).GetSpan()
			arg, aerr := ps.arg.expr(span)
			if aerr != nil {
				ps.fail(aerr)
				return
			}
			ps.record(span)
			if arg != nil && ps.err == nil {
				*e = &ast.ExprBlock{
					Lets: []*ast.LetBinding{{
						Name:  cp.Ident,
						Type:  cp.Type.CloneType(),
						Value: arg,
						Span:  span,
					}},
					Value: *e,
					Span:  span,
				}
			}
			return
		}
	}
	switch x := (*e).(type) {
	case *ast.ExprPath:
		if ps.substInPath(&x.Qual, &x.Path) {
			return
		}
		ps.walkQualifier(x.Qual)
		ps.walkPathArgs(&x.Path)
	case *ast.ExprCall:
		ps.rewriteExpr(&x.Fn)
		for i := range x.Args {
			ps.rewriteExpr(&x.Args[i])
		}
	case *ast.ExprBinary:
		ps.rewriteExpr(&x.X)
		ps.rewriteExpr(&x.Y)
	case *ast.ExprTuple:
		for i := range x.Elems {
			ps.rewriteExpr(&x.Elems[i])
		}
	case *ast.ExprClosure:
		ps.rewriteExpr(&x.Body)
	case *ast.ExprBlock:
		for _, l := range x.Lets {
			if l.Type != nil {
				ps.rewriteType(&l.Type)
			}
			ps.rewriteExpr(&l.Value)
		}
		if x.Value != nil {
			ps.rewriteExpr(&x.Value)
		}
	}
}

// substInPath handles a type parameter occurring as the head segment of an
// unqualified path. Substituting another parameter renames the segment;
// substituting a concrete type re-expresses the path as a qualified one,
// which fails when no further segments remain.
func (ps *paramSubst) substInPath(qual **ast.Qualifier, path *ast.Path) bool {
	tp, ok := ps.param.(*ast.TypeParam)
	if !ok {
		return false
	}
	if *qual != nil || path.Absolute || len(path.Segments) == 0 {
		return false
	}
	first := &path.Segments[0]
	if first.Ident != tp.Ident || len(first.Args) != 0 {
		return false
	}
	span := first.Span
	switch ps.arg.mode {
	case paramMode:
		argTp, tok := ps.arg.param.(*ast.TypeParam)
		if !tok {
			ps.fail(diagnostics.NewError(diagnostics.ErrS001, ps.arg.param.GetSpan(), "non-type arg for type param"))
		} else {
			first.Ident = argTp.Ident
		}
	case valueMode:
		ta, tok := ps.arg.value.(*ast.TypeArg)
		if !tok {
			ps.fail(diagnostics.NewError(diagnostics.ErrS001, ps.arg.value.GetSpan(), "non-type arg for type param"))
		} else if len(path.Segments) == 1 {
			ps.fail(diagnostics.NewError(diagnostics.ErrS005, span, "cannot replace single-segment path with type arg"))
		} else {
			*qual = &ast.Qualifier{Type: ta.Type.CloneType()}
			path.Segments = append([]ast.PathSegment(nil), path.Segments[1:]...)
		}
	}
	ps.record(span)
	return true
}

func (ps *paramSubst) walkQualifier(q *ast.Qualifier) {
	if q == nil {
		return
	}
	ps.rewriteType(&q.Type)
	if q.Trait != nil {
		ps.walkPathArgs(q.Trait)
	}
}

func (ps *paramSubst) walkPathArgs(p *ast.Path) {
	for si := range p.Segments {
		seg := &p.Segments[si]
		for i := range seg.Args {
			ps.rewriteGenericArg(&seg.Args[i])
		}
	}
}

func (ps *paramSubst) rewriteGenericArg(a *ast.GenericArg) {
	if ta, ok := (*a).(*ast.TypeArg); ok {
		// A const parameter used as a bare argument parses as a type
		// argument; resolve it to a const argument here.
		if cp, cok := ps.param.(*ast.ConstParam); cok && ast.TypeIsIdent(ta.Type, cp.Ident) {
			span := ta.GetSpan()
			arg, err := ps.arg.expr(span)
			if err != nil {
				ps.fail(err)
				return
			}
			ps.record(span)
			if arg != nil && ps.err == nil {
				*a = &ast.ConstArg{Expr: arg}
			}
			return
		}
	}
	switch x := (*a).(type) {
	case *ast.LifetimeArg:
		ps.rewriteLifetime(x.Lifetime)
	case *ast.TypeArg:
		ps.rewriteType(&x.Type)
	case *ast.ConstArg:
		ps.rewriteExpr(&x.Expr)
	}
}

// rewriteParamContents visits a parameter's bounds and metadata, never its
// binder name. A bound on a shadowing binder still refers to the outer
// scope, so it is always visited.
func (ps *paramSubst) rewriteParamContents(p ast.GenericParam) {
	switch pp := p.(type) {
	case *ast.LifetimeParam:
		for _, b := range pp.Bounds {
			ps.rewriteLifetime(b)
		}
	case *ast.TypeParam:
		for _, b := range pp.Bounds {
			ps.walkPathArgs(&b.Path)
		}
	case *ast.ConstParam:
		ps.rewriteType(&pp.Type)
	}
}

func (ps *paramSubst) rewriteGenerics(g *ast.Generics) {
	if g == nil {
		return
	}
	for _, p := range g.Params {
		ps.rewriteParamContents(p)
	}
	if g.Where != nil {
		for _, pred := range g.Where.Predicates {
			ps.rewriteType(&pred.Target)
			for _, b := range pred.Bounds {
				ps.walkPathArgs(&b.Path)
			}
		}
	}
}

func (ps *paramSubst) rewriteSignature(sig *ast.Signature) {
	for _, in := range sig.Inputs {
		ps.rewriteType(&in.Type)
	}
	if sig.Output != nil {
		ps.rewriteType(&sig.Output)
	}
}

func (ps *paramSubst) rewriteTypeLevel(e *ast.TypeLevelExpr) {
	if e.Match != nil {
		for i := range e.Match.Scrutinees {
			ps.rewriteType(&e.Match.Scrutinees[i])
		}
		for _, arm := range e.Match.Arms {
			ps.rewriteArm(arm)
		}
		return
	}
	switch n := e.Plain.(type) {
	case ast.Type:
		t := n
		ps.rewriteType(&t)
		e.Plain = t
	case ast.Expr:
		x := n
		ps.rewriteExpr(&x)
		e.Plain = x
	case ast.GenericArg:
		a := n
		ps.rewriteGenericArg(&a)
		e.Plain = a
	}
}

func (ps *paramSubst) rewriteArm(arm *ast.Arm) {
	ps.substWithMultiGenerics(arm.SpecificGenerics(), func(sub *paramSubst) {
		sub.rewriteTypeLevel(&arm.Body)
	})
}

func (ps *paramSubst) substWithGenerics(g *ast.Generics, body func(*paramSubst)) {
	var scopes []*ast.Generics
	if g != nil {
		scopes = append(scopes, g)
	}
	ps.substWithMultiGenerics(scopes, body)
}

// substWithMultiGenerics substitutes under nested binder scopes. A scope
// that re-binds the parameter stops the substitution dead. A scope whose
// binders would capture the argument has those binders renamed first; such
// a forced rename counts as a substitution and records a synthetic location.
func (ps *paramSubst) substWithMultiGenerics(scopes []*ast.Generics, body func(*paramSubst)) {
	for _, g := range scopes {
		if GenericsConflict(ps.param, g) {
			return
		}
		if !ps.arg.IsTestOnly() {
			renamed, err := renameConflictingParams(g, ps.captureConflict, body)
			if err != nil {
				ps.fail(err)
			}
			if renamed {
				ps.record(token.Span{})
			}
		}
		ps.rewriteGenerics(g)
	}
	body(ps)
}

// captureConflict reports whether a binder of an inner scope would capture
// the substitution argument.
func (ps *paramSubst) captureConflict(p ast.GenericParam) (bool, *diagnostics.DiagnosticError) {
	switch ps.arg.mode {
	case paramMode:
		return ParamsConflict(p, ps.arg.param), nil
	case valueMode:
		v := ps.arg.value.CloneArg()
		return References(GenericArgSlot{Arg: &v}, p)
	}
	return false, nil
}
