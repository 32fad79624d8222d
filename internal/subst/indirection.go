package subst

import (
	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/diagnostics"
	"github.com/sumlower/sumlower/internal/token"
)

// Capture is one generic parameter an expression depends on, paired with
// the argument that forwards it at the lifted declaration's use site.
type Capture struct {
	Param ast.GenericParam
	Arg   ast.GenericArg
}

// BuildIndirection determines the parameters of the binder chain that expr
// references, directly or through bounds of other referenced parameters,
// and renames those whose names would collide across scopes. The returned
// captures are ordered outermost scope first.
func BuildIndirection(expr Substitutable, ctx *ast.GenericsContext) ([]Capture, *diagnostics.DiagnosticError) {
	var stack [][]ast.GenericParam
	return buildIndirectionContents(&stack, expr, ctx)
}

// stack holds, per scope between expr and the current context position, the
// parameters bound there. Index 0 is the scope nearest to expr.
func buildIndirectionContents(stack *[][]ast.GenericParam, expr Substitutable, ctx *ast.GenericsContext) ([]Capture, *diagnostics.DiagnosticError) {
	if ctx == nil {
		return nil, nil
	}
	if ctx.SelfParam != nil {
		*stack = append(*stack, []ast.GenericParam{ctx.SelfParam.CloneParam()})
		conflictLen := len(*stack)
		caps, err := buildIndirectionContents(stack, expr, ctx.Next)
		if err == nil {
			caps, err = addParamIndirections(*stack, expr, conflictLen, caps)
		}
		*stack = (*stack)[:len(*stack)-1]
		return caps, err
	}
	origLen := len(*stack)
	*stack = append(*stack, ast.CloneParams(ctx.Generics.Params))
	caps, err := buildIndirectionContents(stack, expr, ctx.Next)
	if err == nil {
		caps, err = addParamIndirections(*stack, expr, origLen, caps)
	}
	*stack = (*stack)[:len(*stack)-1]
	return caps, err
}

// addParamIndirections captures the referenced parameters of the topmost
// stack scope. Parameters shadowed closer to expr cannot be referenced and
// are skipped; captured parameters whose names collide with any of the
// first conflictLen scopes are renamed, and the rename is propagated into
// expr, the nearer scopes, and the captures themselves.
func addParamIndirections(stack [][]ast.GenericParam, expr Substitutable, conflictLen int, caps []Capture) ([]Capture, *diagnostics.DiagnosticError) {
	indir := len(stack) - 1
	var referenced []Capture
	for i := range stack[indir] {
		p := stack[indir][i]
		shadowed := false
		for _, scope := range stack[:indir] {
			for _, sp := range scope {
				if ParamsConflict(p, sp) {
					shadowed = true
				}
			}
		}
		if shadowed {
			continue
		}
		pc := p.CloneParam()
		span, found, err := firstParamReference(stack, expr, pc)
		if err != nil {
			return nil, err
		}
		if found {
			referenced = append(referenced, Capture{Param: pc, Arg: GenericParamArg(pc, span)})
		}
	}
	for i := range referenced {
		old, err := addUnderscoresIfConflicting(&referenced[i].Param,
			func(p ast.GenericParam) (bool, *diagnostics.DiagnosticError) {
				for _, scope := range stack[:conflictLen] {
					for _, sp := range scope {
						if ParamsConflict(p, sp) {
							return true, nil
						}
					}
				}
				return false, nil
			})
		if err != nil {
			return nil, err
		}
		if old == nil {
			continue
		}
		sub := newParamSubst(old, ParamArg(referenced[i].Param))
		for si := indir - 1; si >= 0; si-- {
			for _, sp := range stack[si] {
				sub.rewriteParamContents(sp)
			}
		}
		for j := range referenced {
			sub.rewriteParamContents(referenced[j].Param)
		}
		expr.substituteInto(sub)
		if sub.err != nil {
			return nil, sub.err
		}
	}
	return append(caps, referenced...), nil
}

// firstParamReference finds where expr first depends on param, either
// directly or transitively through the bounds of another parameter expr
// references.
func firstParamReference(stack [][]ast.GenericParam, expr Substitutable, param ast.GenericParam) (token.Span, bool, *diagnostics.DiagnosticError) {
	spans, err := ParamReferences(expr, param)
	if err != nil {
		return token.Span{}, false, err
	}
	if len(spans) > 0 {
		return spans[0], true, nil
	}
	for si := range stack {
		for j := range stack[si] {
			sp := stack[si][j]
			if ParamsConflict(sp, param) {
				continue
			}
			refs, rerr := ParamReferences(ParamSlot{Param: sp}, param)
			if rerr != nil {
				return token.Span{}, false, rerr
			}
			if len(refs) == 0 {
				continue
			}
			span, found, ferr := firstParamReference(stack, expr, sp.CloneParam())
			if ferr != nil {
				return token.Span{}, false, ferr
			}
			if found {
				return span, true, nil
			}
		}
	}
	return token.Span{}, false, nil
}

// IsolateTypeParam is BuildIndirection specialized for lifting into an
// associated item of a trait: it locates the type parameter named name in
// the binder chain, replaces its occurrences in expr with Self, and returns
// it separately from the remaining captures.
func IsolateTypeParam(expr Substitutable, ctx *ast.GenericsContext, name string, reqSpan token.Span) (*ast.TypeParam, []Capture, *diagnostics.DiagnosticError) {
	var stack [][]ast.GenericParam
	return isolateTypeParam(&stack, expr, ctx, name, reqSpan)
}

func isolateTypeParam(stack *[][]ast.GenericParam, expr Substitutable, ctx *ast.GenericsContext, name string, reqSpan token.Span) (*ast.TypeParam, []Capture, *diagnostics.DiagnosticError) {
	if ctx == nil {
		return nil, nil, diagnostics.Errorf(diagnostics.ErrL004, reqSpan, "type param `%s` not found", name)
	}
	if ctx.SelfParam != nil {
		if tp, ok := ctx.SelfParam.(*ast.TypeParam); ok && tp.Ident == name {
			*stack = append(*stack, []ast.GenericParam{ctx.SelfParam.CloneParam()})
			caps, err := buildIndirectionContents(stack, expr, ctx.Next)
			*stack = (*stack)[:len(*stack)-1]
			return tp, caps, err
		}
		*stack = append(*stack, []ast.GenericParam{ctx.SelfParam.CloneParam()})
		conflictLen := len(*stack)
		tp, caps, err := isolateTypeParam(stack, expr, ctx.Next, name, reqSpan)
		if err == nil {
			caps, err = addParamIndirections(*stack, expr, conflictLen, caps)
		}
		*stack = (*stack)[:len(*stack)-1]
		return tp, caps, err
	}
	for i, p := range ctx.Generics.Params {
		switch pp := p.(type) {
		case *ast.TypeParam:
			if pp.Ident != name {
				continue
			}
			origLen := len(*stack)
			*stack = append(*stack, ast.CloneParams(ctx.Generics.Params))
			caps, err := buildIndirectionContents(stack, expr, ctx.Next)
			if err == nil {
				scope := (*stack)[origLen]
				(*stack)[origLen] = append(scope[:i:i], scope[i+1:]...)
				caps, err = addParamIndirections(*stack, expr, origLen, caps)
			}
			if err == nil {
				selfParam := ast.SelfTypeParam(ast.CloneBounds(pp.Bounds), pp.Span)
				_, err = Substitute(expr, pp, ParamArg(selfParam))
			}
			*stack = (*stack)[:len(*stack)-1]
			return pp, caps, err
		case *ast.ConstParam:
			if pp.Ident == name {
				return nil, nil, diagnostics.Errorf(diagnostics.ErrS001, reqSpan, "type param expected, but `%s` is a const param", name)
			}
		}
	}
	origLen := len(*stack)
	*stack = append(*stack, ast.CloneParams(ctx.Generics.Params))
	tp, caps, err := isolateTypeParam(stack, expr, ctx.Next, name, reqSpan)
	if err == nil {
		caps, err = addParamIndirections(*stack, expr, origLen, caps)
	}
	*stack = (*stack)[:len(*stack)-1]
	return tp, caps, err
}
