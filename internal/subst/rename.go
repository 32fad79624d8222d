package subst

import (
	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/diagnostics"
)

// ConflictFunc decides whether a binder name collides with something
// outside the parameter list it belongs to.
type ConflictFunc func(ast.GenericParam) (bool, *diagnostics.DiagnosticError)

// RenameConflictingParams appends underscores to every parameter of g the
// predicate flags, until it no longer does, and rewrites both g and body to
// use the new names. It reports whether anything was renamed.
func RenameConflictingParams(g *ast.Generics, conflicting ConflictFunc, body Substitutable) (bool, *diagnostics.DiagnosticError) {
	var apply func(*paramSubst)
	if body != nil {
		apply = func(sub *paramSubst) { body.substituteInto(sub) }
	}
	return renameConflictingParams(g, conflicting, apply)
}

func renameConflictingParams(g *ast.Generics, conflicting ConflictFunc, apply func(*paramSubst)) (bool, *diagnostics.DiagnosticError) {
	if g == nil {
		return false, nil
	}
	renamed := false
	for i := range g.Params {
		old, err := addUnderscoresIfConflicting(&g.Params[i], conflicting)
		if err != nil {
			return renamed, err
		}
		if old == nil {
			continue
		}
		sub := newParamSubst(old, ParamArg(g.Params[i]))
		sub.rewriteGenerics(g)
		if apply != nil {
			apply(sub)
		}
		if sub.err != nil {
			return renamed, sub.err
		}
		renamed = true
	}
	return renamed, nil
}

// addUnderscoresIfConflicting renames one binder in place, returning the
// original parameter when a rename happened.
func addUnderscoresIfConflicting(slot *ast.GenericParam, conflicting ConflictFunc) (ast.GenericParam, *diagnostics.DiagnosticError) {
	hit, err := conflicting(*slot)
	if err != nil || !hit {
		return nil, err
	}
	old := (*slot).CloneParam()
	for {
		setParamName(*slot, (*slot).ParamName()+"_")
		hit, err = conflicting(*slot)
		if err != nil {
			return nil, err
		}
		if !hit {
			break
		}
	}
	return old, nil
}

func setParamName(p ast.GenericParam, name string) {
	switch pp := p.(type) {
	case *ast.LifetimeParam:
		pp.Lifetime.Name = name
	case *ast.TypeParam:
		pp.Ident = name
	case *ast.ConstParam:
		pp.Ident = name
	}
}

// RenameAllParams renames every parameter of g to the positionally
// corresponding parameter of target, propagating each rename through the
// rest of g. Kinds must line up.
func RenameAllParams(g, target *ast.Generics) *diagnostics.DiagnosticError {
	if _, err := renameConflictingParams(g,
		func(p ast.GenericParam) (bool, *diagnostics.DiagnosticError) {
			return GenericsConflict(p, target), nil
		}, nil); err != nil {
		return err
	}
	for i := range g.Params {
		if i >= len(target.Params) {
			return diagnostics.NewError(diagnostics.ErrS006, target.GetSpan(), "too few parameters")
		}
		tp := target.Params[i]
		old := g.Params[i].CloneParam()
		switch p := g.Params[i].(type) {
		case *ast.LifetimeParam:
			t, ok := tp.(*ast.LifetimeParam)
			if !ok {
				return diagnostics.NewError(diagnostics.ErrS001, tp.GetSpan(), "lifetime parameter expected")
			}
			p.Lifetime.Name = t.Lifetime.Name
		case *ast.TypeParam:
			t, ok := tp.(*ast.TypeParam)
			if !ok {
				return diagnostics.NewError(diagnostics.ErrS001, tp.GetSpan(), "type parameter expected")
			}
			p.Ident = t.Ident
		case *ast.ConstParam:
			t, ok := tp.(*ast.ConstParam)
			if !ok {
				return diagnostics.NewError(diagnostics.ErrS001, tp.GetSpan(), "const parameter expected")
			}
			p.Ident = t.Ident
		}
		sub := newParamSubst(old, ParamArg(tp))
		sub.rewriteGenerics(g)
		if sub.err != nil {
			return sub.err
		}
	}
	if len(target.Params) > len(g.Params) {
		return diagnostics.NewError(diagnostics.ErrS006, target.Params[len(g.Params)].GetSpan(), "superfluous parameter")
	}
	return nil
}

// AddUnderscoresToAllParams renames every parameter of g to a fresh
// underscored variant of itself. The result never collides with the
// original names, so substituting the original names afterwards is safe.
func AddUnderscoresToAllParams(g *ast.Generics) (bool, *diagnostics.DiagnosticError) {
	if g == nil {
		return false, nil
	}
	snapshot := g.CloneGenerics()
	return renameConflictingParams(g,
		func(p ast.GenericParam) (bool, *diagnostics.DiagnosticError) {
			return GenericsConflict(p, &snapshot), nil
		}, nil)
}

// AddPrefixToAllParams prepends prefix to every binder of g, propagating
// the renames through bounds and the where clause.
func AddPrefixToAllParams(g *ast.Generics, prefix string) *diagnostics.DiagnosticError {
	if g == nil {
		return nil
	}
	for i := range g.Params {
		old := g.Params[i].CloneParam()
		setParamName(g.Params[i], prefix+g.Params[i].ParamName())
		sub := newParamSubst(old, ParamArg(g.Params[i]))
		sub.rewriteGenerics(g)
		if sub.err != nil {
			return sub.err
		}
	}
	return nil
}
