package lower

import (
	"fmt"

	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/diagnostics"
	"github.com/sumlower/sumlower/internal/subst"
	"github.com/sumlower/sumlower/internal/token"
)

// position tells the compiler whether a lifted match becomes an associated
// type or an associated constant.
type position int

const (
	typePosition position = iota
	valuePosition
)

// implContext is the scope chain of an implementation block: the implicit
// dispatch subject bounded by the target trait, over the trait's canonical
// parameter list.
func (lo *lowerer) implContext(entry *traitEntry) *ast.GenericsContext {
	def := entry.def
	bound := &ast.TraitBound{
		Path: ast.Path{Segments: []ast.PathSegment{{
			Ident: def.Ident,
			Args:  subst.GenericArgs(&entry.generics),
			Span:  def.Span,
		}}},
		Span: def.Span,
	}
	self := ast.SelfTypeParam([]*ast.TraitBound{bound}, def.Span)
	return ast.WithSelf(self, ast.WithGenerics(&entry.generics, nil))
}

// mergeImplItem files one item of an implementation block. A whole-body
// match on the subject is filed directly under the item's own name; any
// other match is lifted into a fresh internal item. The item is rewritten
// to the trait's canonical parameter names first.
func (lo *lowerer) mergeImplItem(entry *traitEntry, raw ast.ImplItem) *diagnostics.DiagnosticError {
	item := raw.CloneImplItem()
	if _, err := subst.SubstituteAllParams(subst.ImplItemSlot{Item: item}, &entry.def.Generics, &entry.generics); err != nil {
		return err
	}
	base := lo.implContext(entry)
	switch it := item.(type) {
	case *ast.ImplConst:
		ctx := ast.WithGenerics(&it.Generics, base)
		if isSubjectMatch(&it.Value) && entry.variants != nil {
			if err := lo.addItem(entry, bodylessItem(it)); err != nil {
				return err
			}
			return lo.fileArms(entry, it.Value.Match, &it.Generics, valuePosition, it.Type, it.Ident,
				func(body ast.TypeLevelExpr) ast.ImplItem {
					return &ast.ImplConst{Ident: it.Ident, Generics: it.Generics.CloneGenerics(),
						Type: it.Type.CloneType(), Value: body, Span: it.Span}
				})
		}
		if err := lo.lowerValue(&it.Value, ctx, valuePosition, it.Type, nil, it.Ident); err != nil {
			return err
		}
		if err := lo.addItem(entry, bodylessItem(it)); err != nil {
			return err
		}
		lo.replicateShared(entry, it)
		return nil
	case *ast.ImplType:
		ctx := ast.WithGenerics(&it.Generics, base)
		if isSubjectMatch(&it.Value) && entry.variants != nil {
			if err := lo.addItem(entry, bodylessItem(it)); err != nil {
				return err
			}
			return lo.fileArms(entry, it.Value.Match, &it.Generics, typePosition, nil, it.Ident,
				func(body ast.TypeLevelExpr) ast.ImplItem {
					return &ast.ImplType{Ident: it.Ident, Generics: it.Generics.CloneGenerics(),
						Bounds: ast.CloneBounds(it.Bounds), Value: body, Span: it.Span}
				})
		}
		if err := lo.lowerValue(&it.Value, ctx, typePosition, nil, it.Bounds, it.Ident); err != nil {
			return err
		}
		if err := lo.addItem(entry, bodylessItem(it)); err != nil {
			return err
		}
		lo.replicateShared(entry, it)
		return nil
	case *ast.ImplFn:
		ctx := ast.WithGenerics(&it.Sig.Generics, base)
		if isSubjectMatch(&it.Body) && entry.variants != nil {
			if err := lo.addItem(entry, bodylessItem(it)); err != nil {
				return err
			}
			return lo.fileArms(entry, it.Body.Match, &it.Sig.Generics, valuePosition, it.Sig.Output, it.Sig.Ident,
				func(body ast.TypeLevelExpr) ast.ImplItem {
					return &ast.ImplFn{Sig: it.Sig.CloneSignature(), Body: body, Span: it.Span}
				})
		}
		if err := lo.lowerValue(&it.Body, ctx, valuePosition, it.Sig.Output, nil, it.Sig.Ident); err != nil {
			return err
		}
		if err := lo.addItem(entry, bodylessItem(it)); err != nil {
			return err
		}
		lo.replicateShared(entry, it)
		return nil
	default:
		return diagnostics.NewError(diagnostics.ErrS005, item.GetSpan(), "unsupported impl item")
	}
}

// isSubjectMatch reports whether the body is a match dispatching directly
// on the implicit subject.
func isSubjectMatch(e *ast.TypeLevelExpr) bool {
	if !e.IsMatch() || len(e.Match.Scrutinees) == 0 {
		return false
	}
	return ast.TypeIsIdent(e.Match.Scrutinees[0], ast.SelfTypeName)
}

// bodylessItem strips the value, leaving the declaration shape for the
// trait side.
func bodylessItem(item ast.ImplItem) ast.ImplItem {
	switch it := item.(type) {
	case *ast.ImplConst:
		return &ast.ImplConst{Ident: it.Ident, Generics: it.Generics.CloneGenerics(), Type: it.Type.CloneType(), Span: it.Span}
	case *ast.ImplType:
		return &ast.ImplType{Ident: it.Ident, Generics: it.Generics.CloneGenerics(), Bounds: ast.CloneBounds(it.Bounds), Span: it.Span}
	case *ast.ImplFn:
		return &ast.ImplFn{Sig: it.Sig.CloneSignature(), Span: it.Span}
	default:
		return item.CloneImplItem()
	}
}

// replicateShared copies a variant-independent item into every variant
// implementation.
func (lo *lowerer) replicateShared(entry *traitEntry, item ast.ImplItem) {
	for _, vs := range entry.variants {
		vs.items = append(vs.items, item.CloneImplItem())
	}
}

func (lo *lowerer) lowerTypeDecl(d *ast.TypeDecl) (ast.Decl, *diagnostics.DiagnosticError) {
	decl := &ast.TypeDecl{
		Ident:    d.Ident,
		Generics: d.Generics.CloneGenerics(),
		Bounds:   ast.CloneBounds(d.Bounds),
		Value:    d.Value.CloneTypeLevel(),
		Span:     d.Span,
	}
	ctx := ast.WithGenerics(&decl.Generics, nil)
	if err := lo.lowerValue(&decl.Value, ctx, typePosition, nil, decl.Bounds, decl.Ident); err != nil {
		return nil, err
	}
	return decl, nil
}

func (lo *lowerer) lowerFnDecl(d *ast.FnDecl) (ast.Decl, *diagnostics.DiagnosticError) {
	decl := &ast.FnDecl{Sig: d.Sig.CloneSignature(), Body: d.Body.CloneTypeLevel(), Span: d.Span}
	ctx := ast.WithGenerics(&decl.Sig.Generics, nil)
	if err := lo.lowerValue(&decl.Body, ctx, valuePosition, decl.Sig.Output, nil, decl.Sig.Ident); err != nil {
		return nil, err
	}
	return decl, nil
}

// lowerValue makes a type-level expression match-free. Plain expressions
// cannot contain matches, so only a match node needs work.
func (lo *lowerer) lowerValue(e *ast.TypeLevelExpr, ctx *ast.GenericsContext, kind position, constType ast.Type, bounds []*ast.TraitBound, hint string) *diagnostics.DiagnosticError {
	if !e.IsMatch() {
		return nil
	}
	return lo.liftMatch(e, ctx, kind, constType, bounds, hint)
}

// liftMatch compiles one match to dispatch: the scrutinee's parameter is
// isolated as the implicit subject, the match is filed as a fresh internal
// associated item of the dispatch trait, and the node is replaced by a
// qualified path selecting that item.
func (lo *lowerer) liftMatch(e *ast.TypeLevelExpr, ctx *ast.GenericsContext, kind position, constType ast.Type, bounds []*ast.TraitBound, hint string) *diagnostics.DiagnosticError {
	m := e.Match
	if len(m.Arms) == 0 {
		return diagnostics.NewError(diagnostics.ErrL002, m.Span, "match expression must have at least one arm")
	}
	if len(m.Scrutinees) == 0 {
		return diagnostics.NewError(diagnostics.ErrS005, m.Span, "match expression without scrutinee")
	}
	span := m.Scrutinees[0].GetSpan()
	subjectName, ok := bareTypeName(m.Scrutinees[0])
	if !ok {
		return diagnostics.NewError(diagnostics.ErrS005, span, "match scrutinee must be a type parameter")
	}
	entry, traitArgs, err := lo.resolveDispatch(ctx, subjectName, span)
	if err != nil {
		return err
	}
	subject := m.Scrutinees[0].CloneType()

	var ct ast.Type
	iso := subst.Substitutable(subst.TypeLevelSlot{Expr: e})
	if kind == valuePosition {
		if constType == nil {
			return diagnostics.NewError(diagnostics.ErrS005, span, "match expression requires a known result type")
		}
		ct = constType.CloneType()
		iso = subst.Group{subst.TypeLevelSlot{Expr: e}, subst.TypeSlot{Type: &ct}}
	}
	_, caps, err := subst.IsolateTypeParam(iso, ctx, subjectName, span)
	if err != nil {
		return err
	}

	itemGenerics := ast.Generics{Span: m.Span}
	capArgs := make([]ast.GenericArg, len(caps))
	for i, c := range caps {
		itemGenerics.Params = append(itemGenerics.Params, c.Param)
		capArgs[i] = c.Arg
	}
	name := lo.internalName(entry, hint)

	var decl ast.ImplItem
	var build func(body ast.TypeLevelExpr) ast.ImplItem
	switch kind {
	case typePosition:
		decl = &ast.ImplType{Ident: name, Generics: itemGenerics.CloneGenerics(), Bounds: ast.CloneBounds(bounds), Span: m.Span}
		build = func(body ast.TypeLevelExpr) ast.ImplItem {
			return &ast.ImplType{Ident: name, Generics: itemGenerics.CloneGenerics(),
				Bounds: ast.CloneBounds(bounds), Value: body, Span: m.Span}
		}
	default:
		decl = &ast.ImplConst{Ident: name, Generics: itemGenerics.CloneGenerics(), Type: ct.CloneType(), Span: m.Span}
		build = func(body ast.TypeLevelExpr) ast.ImplItem {
			return &ast.ImplConst{Ident: name, Generics: itemGenerics.CloneGenerics(),
				Type: ct.CloneType(), Value: body, Span: m.Span}
		}
	}
	if err := lo.addItem(entry, decl); err != nil {
		return err
	}
	if err := lo.fileArms(entry, m, &itemGenerics, kind, ct, hint, build); err != nil {
		return err
	}

	traitPath := ast.Path{Segments: []ast.PathSegment{{Ident: entry.def.Ident, Args: traitArgs, Span: span}}}
	qual := &ast.Qualifier{Type: subject, Trait: &traitPath}
	itemPath := ast.Path{Segments: []ast.PathSegment{{Ident: name, Args: capArgs, Span: m.Span}}}
	e.Match = nil
	switch kind {
	case typePosition:
		e.Plain = &ast.TypePath{Qual: qual, Path: itemPath, Span: m.Span}
	default:
		e.Plain = &ast.ExprPath{Qual: qual, Path: itemPath, Span: m.Span}
	}
	return nil
}

// fileArms distributes the arms of an (already subject-isolated) match over
// the trait's variants. Arm parameters are force-renamed onto the canonical
// variant parameters; with multiple scrutinees every applicable arm
// contributes a residual match on the remaining scrutinees, which is then
// lowered recursively in the variant's scope.
func (lo *lowerer) fileArms(entry *traitEntry, m *ast.Match, itemGenerics *ast.Generics, kind position, constType ast.Type, hint string, build func(body ast.TypeLevelExpr) ast.ImplItem) *diagnostics.DiagnosticError {
	if len(m.Arms) == 0 {
		return diagnostics.NewError(diagnostics.ErrL002, m.Span, "match expression must have at least one arm")
	}
	for _, arm := range m.Arms {
		if len(arm.Selectors) != len(m.Scrutinees) {
			return diagnostics.NewError(diagnostics.ErrL006, arm.Span, "selector count does not match scrutinee count")
		}
		sel := arm.Selectors[0]
		if !sel.IsDefault() && entry.variantByName(sel.Variant) == nil {
			return diagnostics.Errorf(diagnostics.ErrL004, sel.Span, "no variant `%s` in trait `%s`", sel.Variant, entry.def.Ident)
		}
	}
	for _, vs := range entry.variants {
		body, matched, err := lo.armBodyForVariant(m, vs)
		if err != nil {
			return err
		}
		if !matched {
			continue
		}
		vctx := ast.WithGenerics(itemGenerics,
			ast.WithGenerics(&vs.variant.Generics,
				ast.WithGenerics(&entry.generics, nil)))
		if err := lo.lowerValue(&body, vctx, kind, constType, nil, hint); err != nil {
			return err
		}
		vs.items = append(vs.items, build(body))
	}
	return nil
}

// armBodyForVariant selects and prepares the body filed for one variant.
// Specific selectors take priority over default selectors wherever they sit
// in the arm list: with one scrutinee a default arm only serves variants no
// specific arm names; with several, default arms still contribute fallback
// residual arms after the specific ones.
func (lo *lowerer) armBodyForVariant(m *ast.Match, vs *variantState) (ast.TypeLevelExpr, bool, *diagnostics.DiagnosticError) {
	var specifics, defaults []*ast.Arm
	for _, arm := range m.Arms {
		sel := arm.Selectors[0]
		switch {
		case sel.IsDefault():
			defaults = append(defaults, arm)
		case sel.Variant == vs.variant.Ident:
			specifics = append(specifics, arm)
		}
	}
	prepare := func(arm *ast.Arm) (*ast.Arm, *diagnostics.DiagnosticError) {
		armC := arm.CloneArm()
		slots := subst.Group{subst.TypeLevelSlot{Expr: &armC.Body}}
		for _, s := range armC.Selectors[1:] {
			if !s.IsDefault() {
				slots = append(slots, subst.GenericsSlot{Generics: &s.Generics})
			}
		}
		if _, err := subst.SubstituteAllParams(slots, &armC.Selectors[0].Generics, &vs.variant.Generics); err != nil {
			return nil, err
		}
		return armC, nil
	}
	if len(m.Scrutinees) == 1 {
		switch {
		case len(specifics) > 0:
			armC, err := prepare(specifics[0])
			if err != nil {
				return ast.TypeLevelExpr{}, false, err
			}
			return armC.Body, true, nil
		case len(defaults) > 0:
			return defaults[0].CloneArm().Body, true, nil
		default:
			return ast.TypeLevelExpr{}, false, nil
		}
	}
	var residual []*ast.Arm
	for _, arm := range specifics {
		armC, err := prepare(arm)
		if err != nil {
			return ast.TypeLevelExpr{}, false, err
		}
		residual = append(residual, &ast.Arm{Selectors: armC.Selectors[1:], Body: armC.Body, Span: armC.Span})
	}
	for _, arm := range defaults {
		armC := arm.CloneArm()
		residual = append(residual, &ast.Arm{Selectors: armC.Selectors[1:], Body: armC.Body, Span: armC.Span})
	}
	if len(residual) == 0 {
		return ast.TypeLevelExpr{}, false, nil
	}
	rest := make([]ast.Type, len(m.Scrutinees)-1)
	for i, s := range m.Scrutinees[1:] {
		rest[i] = s.CloneType()
	}
	return ast.MatchExpr(&ast.Match{Scrutinees: rest, Arms: residual, Span: m.Span}), true, nil
}

func (e *traitEntry) variantByName(name string) *variantState {
	for _, vs := range e.variants {
		if vs.variant.Ident == name {
			return vs
		}
	}
	return nil
}

// internalName picks the name of a lifted internal item: two leading
// underscores plus the enclosing item's name when free, otherwise a
// per-trait counter.
func (lo *lowerer) internalName(entry *traitEntry, hint string) string {
	if hint != "" {
		name := "__" + hint
		if !entry.names[name] {
			return name
		}
	}
	for {
		name := fmt.Sprintf("__Item%d", entry.nextInternal)
		entry.nextInternal++
		if !entry.names[name] {
			return name
		}
	}
}

func bareTypeName(t ast.Type) (string, bool) {
	p, ok := t.(*ast.TypePath)
	if !ok || p.Qual != nil || p.Path.Absolute || len(p.Path.Segments) != 1 || len(p.Path.Segments[0].Args) != 0 {
		return "", false
	}
	return p.Path.Segments[0].Ident, true
}

// resolveDispatch finds the dispatch trait for the named parameter: the
// first trait bound whose single-segment head names a registered trait.
// Aliases are resolved hop by hop; each hop marks the alias as dispatched
// and re-expresses its target arguments in terms of the bound's arguments,
// lowering match-bearing alias arguments along the way.
func (lo *lowerer) resolveDispatch(ctx *ast.GenericsContext, name string, span token.Span) (*traitEntry, []ast.GenericArg, *diagnostics.DiagnosticError) {
	param, isConst := findScopeParam(ctx, name)
	if isConst {
		return nil, nil, diagnostics.Errorf(diagnostics.ErrS001, span, "type param expected, but `%s` is a const param", name)
	}
	if param == nil {
		return nil, nil, diagnostics.Errorf(diagnostics.ErrL004, span, "type param `%s` not found", name)
	}
	for _, b := range param.Bounds {
		if b.Path.Absolute || len(b.Path.Segments) != 1 {
			continue
		}
		seg := b.Path.Segments[0]
		entry, ok := lo.entries[seg.Ident]
		if !ok {
			continue
		}
		return lo.resolveAlias(entry, cloneArgs(seg.Args), span)
	}
	return nil, nil, diagnostics.Errorf(diagnostics.ErrL004, span, "cannot dispatch on `%s`: no bound names a known trait", name)
}

func (lo *lowerer) resolveAlias(entry *traitEntry, args []ast.GenericArg, span token.Span) (*traitEntry, []ast.GenericArg, *diagnostics.DiagnosticError) {
	seen := map[string]bool{}
	for entry.def.IsAlias() {
		if seen[entry.def.Ident] {
			return nil, nil, diagnostics.Errorf(diagnostics.ErrL002, span, "alias cycle through `%s`", entry.def.Ident)
		}
		seen[entry.def.Ident] = true
		entry.dispatched = true
		head, _ := aliasHead(entry.def.Alias)
		next, ok := lo.entries[head]
		if !ok {
			return nil, nil, diagnostics.Errorf(diagnostics.ErrL004, entry.def.Alias.Span, "trait `%s` not found", head)
		}
		targetArgs := make([]ast.GenericArg, len(entry.def.Alias.Args))
		aliasCtx := ast.WithGenerics(&entry.generics, nil)
		for i, aa := range entry.def.Alias.Args {
			v := aa.Value.CloneTypeLevel()
			if err := lo.lowerValue(&v, aliasCtx, typePosition, nil, nil, entry.def.Ident); err != nil {
				return nil, nil, err
			}
			arg, err := typeLevelToArg(&v)
			if err != nil {
				return nil, nil, err
			}
			if _, serr := subst.SubstituteAll(subst.GenericArgSlot{Arg: &arg}, &entry.generics, args, span); serr != nil {
				return nil, nil, serr
			}
			targetArgs[i] = arg
		}
		entry, args = next, targetArgs
	}
	return entry, args, nil
}

func typeLevelToArg(e *ast.TypeLevelExpr) (ast.GenericArg, *diagnostics.DiagnosticError) {
	switch n := e.Plain.(type) {
	case ast.GenericArg:
		return n.CloneArg(), nil
	case ast.Type:
		return &ast.TypeArg{Type: n.CloneType()}, nil
	case ast.Expr:
		return &ast.ConstArg{Expr: n.CloneExpr()}, nil
	default:
		return nil, diagnostics.NewError(diagnostics.ErrS005, e.GetSpan(), "unsupported alias argument")
	}
}

func cloneArgs(args []ast.GenericArg) []ast.GenericArg {
	if len(args) == 0 {
		return nil
	}
	out := make([]ast.GenericArg, len(args))
	for i, a := range args {
		out[i] = a.CloneArg()
	}
	return out
}

// findScopeParam walks the scope chain innermost first and returns the
// first type parameter with the given name. A const parameter of that name
// shadows any outer type parameter and is reported separately.
func findScopeParam(ctx *ast.GenericsContext, name string) (*ast.TypeParam, bool) {
	for ; ctx != nil; ctx = ctx.Next {
		if ctx.SelfParam != nil {
			if tp, ok := ctx.SelfParam.(*ast.TypeParam); ok && tp.Ident == name {
				return tp, false
			}
			continue
		}
		if ctx.Generics == nil {
			continue
		}
		for _, p := range ctx.Generics.Params {
			switch pp := p.(type) {
			case *ast.TypeParam:
				if pp.Ident == name {
					return pp, false
				}
			case *ast.ConstParam:
				if pp.Ident == name {
					return nil, true
				}
			}
		}
	}
	return nil, false
}
