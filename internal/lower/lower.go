// Package lower turns declarations of closed sum types with dispatchable
// behavior into match-free trait declarations, per-variant implementations
// and plain items. It runs three passes: registration of every trait
// definition (order independent), merging of implementation blocks and
// lowering of bodies, and a final validation of traits that structurally
// require dispatch.
package lower

import (
	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/diagnostics"
	"github.com/sumlower/sumlower/internal/subst"
)

type traitEntry struct {
	def      *ast.TraitDef
	generics ast.Generics // canonical underscored copy (enum form)
	variants []*variantState
	items    []ast.ImplItem // declaration shapes in addition order
	names    map[string]bool

	nextInternal int
	dispatched   bool
}

type variantState struct {
	variant   ast.Variant
	traitArgs []ast.GenericArg
	items     []ast.ImplItem
}

type lowerer struct {
	entries map[string]*traitEntry
	order   []string
}

// Lower processes the declarations and returns their match-free form. The
// first failure aborts the run.
func Lower(decls []ast.Decl) (*Output, *diagnostics.DiagnosticError) {
	lo := &lowerer{entries: map[string]*traitEntry{}}
	if err := lo.register(decls); err != nil {
		return nil, err
	}
	out := &Output{}
	for _, d := range decls {
		switch decl := d.(type) {
		case *ast.TraitDef:
			// handled during registration
		case *ast.TraitImpl:
			if err := lo.mergeImpl(decl); err != nil {
				return nil, err
			}
		case *ast.TypeDecl:
			lowered, err := lo.lowerTypeDecl(decl)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, lowered)
		case *ast.FnDecl:
			lowered, err := lo.lowerFnDecl(decl)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, lowered)
		default:
			return nil, diagnostics.NewError(diagnostics.ErrS005, d.GetSpan(), "unsupported declaration")
		}
	}
	if err := lo.validate(); err != nil {
		return nil, err
	}
	for _, name := range lo.order {
		out.Traits = append(out.Traits, lo.entries[name].render())
	}
	return out, nil
}

// register snapshots every trait definition before any other declaration is
// looked at, so input order never matters for resolution.
func (lo *lowerer) register(decls []ast.Decl) *diagnostics.DiagnosticError {
	for _, d := range decls {
		def, ok := d.(*ast.TraitDef)
		if !ok {
			continue
		}
		if _, dup := lo.entries[def.Ident]; dup {
			return diagnostics.Errorf(diagnostics.ErrL002, def.Span, "trait `%s` already defined", def.Ident)
		}
		entry := &traitEntry{def: def, names: map[string]bool{}}
		if def.IsAlias() {
			entry.generics = def.Generics.CloneGenerics()
			head, ok := aliasHead(def.Alias)
			if !ok {
				return diagnostics.NewError(diagnostics.ErrS005, def.Alias.Span, "alias target must be a single-segment path")
			}
			if head == def.Ident {
				return diagnostics.Errorf(diagnostics.ErrL002, def.Alias.Span, "alias `%s` refers to itself", def.Ident)
			}
		} else {
			entry.generics = def.Generics.CloneGenerics()
			if _, err := subst.AddUnderscoresToAllParams(&entry.generics); err != nil {
				return err
			}
			traitArgs := subst.GenericArgs(&entry.generics)
			for _, v := range def.Variants {
				vs := &variantState{
					variant:   *v.CloneVariant(),
					traitArgs: traitArgs,
				}
				if _, err := subst.AddUnderscoresToAllParams(&vs.variant.Generics); err != nil {
					return err
				}
				entry.variants = append(entry.variants, vs)
			}
		}
		lo.entries[def.Ident] = entry
		lo.order = append(lo.order, def.Ident)
	}
	return nil
}

func aliasHead(p *ast.TraitPath) (string, bool) {
	if p.Path.Absolute || len(p.Path.Segments) != 1 {
		return "", false
	}
	return p.Path.Segments[0].Ident, true
}

// mergeImpl validates one implementation block against its target and files
// all of its items.
func (lo *lowerer) mergeImpl(impl *ast.TraitImpl) *diagnostics.DiagnosticError {
	if impl.Target.Absolute || len(impl.Target.Segments) != 1 {
		return diagnostics.NewError(diagnostics.ErrS005, impl.Span, "trait impl cannot have nontrivial path")
	}
	seg := &impl.Target.Segments[0]
	entry, ok := lo.entries[seg.Ident]
	if !ok {
		return diagnostics.Errorf(diagnostics.ErrL004, seg.Span, "trait `%s` not found", seg.Ident)
	}
	if !ast.EqualTokens(&impl.Generics, &entry.def.Generics) {
		return diagnostics.Errorf(diagnostics.ErrL002, impl.Span,
			"trait impl parameters do not match declaration of `%s`", seg.Ident)
	}
	if err := checkImplArgs(&impl.Generics, seg); err != nil {
		return err
	}
	for _, item := range impl.Items {
		if err := lo.mergeImplItem(entry, item); err != nil {
			return err
		}
	}
	return nil
}

// checkImplArgs requires the target arguments to be bare references to the
// identically named parameters, position by position.
func checkImplArgs(generics *ast.Generics, seg *ast.PathSegment) *diagnostics.DiagnosticError {
	if len(generics.Params) == 0 {
		if len(seg.Args) != 0 {
			return diagnostics.NewError(diagnostics.ErrL006, seg.Span, "no arguments expected")
		}
		return nil
	}
	for i, param := range generics.Params {
		if i >= len(seg.Args) {
			return diagnostics.NewError(diagnostics.ErrL006, seg.Span, "too few arguments")
		}
		arg := seg.Args[i]
		switch p := param.(type) {
		case *ast.LifetimeParam:
			la, ok := arg.(*ast.LifetimeArg)
			if !ok {
				return diagnostics.NewError(diagnostics.ErrS001, arg.GetSpan(), "lifetime expected")
			}
			if la.Lifetime.Name != p.Lifetime.Name {
				return diagnostics.Errorf(diagnostics.ErrL002, arg.GetSpan(), "lifetime `'%s` expected", p.Lifetime.Name)
			}
		case *ast.TypeParam:
			ta, ok := arg.(*ast.TypeArg)
			if !ok {
				return diagnostics.NewError(diagnostics.ErrS001, arg.GetSpan(), "variable expected")
			}
			if !ast.TypeIsIdent(ta.Type, p.Ident) {
				return diagnostics.Errorf(diagnostics.ErrL002, arg.GetSpan(), "type `%s` expected", p.Ident)
			}
		case *ast.ConstParam:
			ta, ok := arg.(*ast.TypeArg)
			if !ok {
				return diagnostics.NewError(diagnostics.ErrS001, arg.GetSpan(), "variable expected")
			}
			if !ast.TypeIsIdent(ta.Type, p.Ident) {
				return diagnostics.Errorf(diagnostics.ErrL002, arg.GetSpan(), "constant `%s` expected", p.Ident)
			}
		}
	}
	if len(seg.Args) > len(generics.Params) {
		return diagnostics.NewError(diagnostics.ErrL006, seg.Args[len(generics.Params)].GetSpan(), "superfluous argument")
	}
	return nil
}

// addItem declares an item on the trait side; unqualified names are unique
// per target across all impl blocks.
func (lo *lowerer) addItem(entry *traitEntry, item ast.ImplItem) *diagnostics.DiagnosticError {
	name := item.ItemName()
	if entry.names[name] {
		return diagnostics.Errorf(diagnostics.ErrL002, item.GetSpan(), "item `%s` already defined for trait `%s`", name, entry.def.Ident)
	}
	entry.names[name] = true
	entry.items = append(entry.items, item)
	return nil
}

// validate flags alias entries that structurally require dispatch but were
// never dispatched through. Enum entries keep their leniency: an arm list
// is never checked for exhaustiveness.
func (lo *lowerer) validate() *diagnostics.DiagnosticError {
	for _, name := range lo.order {
		entry := lo.entries[name]
		if !entry.def.IsAlias() || entry.dispatched {
			continue
		}
		if wc := entry.def.Generics.Where; wc != nil {
			return diagnostics.NewError(diagnostics.ErrL003, wc.Span,
				"at least one `match` expression corresponding to `where` clause required")
		}
		if entry.def.Alias.HasComplexArg() {
			return diagnostics.NewError(diagnostics.ErrL003, entry.def.Alias.Span,
				"at least one `match` expression corresponding to alias arguments required")
		}
	}
	return nil
}

func (e *traitEntry) render() *LoweredTrait {
	t := &LoweredTrait{
		Ident:    e.def.Ident,
		Generics: e.generics,
		Items:    e.items,
		Span:     e.def.Span,
	}
	if e.def.IsAlias() {
		t.Alias = e.def.Alias
		return t
	}
	for _, vs := range e.variants {
		t.Variants = append(t.Variants, &VariantImpl{
			Variant:   vs.variant,
			TraitArgs: vs.traitArgs,
			Items:     vs.items,
		})
	}
	return t
}

func variantArgs(v *ast.Variant) []ast.GenericArg {
	return subst.GenericArgs(&v.Generics)
}
