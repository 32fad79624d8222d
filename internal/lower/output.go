package lower

import (
	"strings"

	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/token"
)

// Output is the lowered, match-free form of the input declarations: all
// registered traits first (their declaration order), then the remaining
// type and function declarations in input order.
type Output struct {
	Traits []*LoweredTrait
	Items  []ast.Decl
}

func (o *Output) String() string {
	var sb strings.Builder
	for _, t := range o.Traits {
		sb.WriteString(t.String())
		sb.WriteString("\n")
	}
	for _, d := range o.Items {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// LoweredTrait is one sum type after lowering: the open declaration with
// its associated item signatures, plus one implementation per variant. An
// alias that was never dispatched through keeps its alias form.
type LoweredTrait struct {
	Ident    string
	Generics ast.Generics // canonical (freshly renamed) parameter list
	Alias    *ast.TraitPath
	Items    []ast.ImplItem // declaration shapes, values ignored
	Variants []*VariantImpl
	Span     token.Span
}

// VariantImpl carries the concrete item bodies of one variant.
type VariantImpl struct {
	Variant   ast.Variant
	TraitArgs []ast.GenericArg
	Items     []ast.ImplItem
}

func (t *LoweredTrait) String() string {
	var sb strings.Builder
	if t.Alias != nil {
		sb.WriteString("trait " + t.Ident + t.Generics.ParamsString())
		sb.WriteString(" = " + t.Alias.String() + ";")
		return sb.String()
	}
	sb.WriteString("trait " + t.Ident + t.Generics.ParamsString() + " {")
	for _, it := range t.Items {
		sb.WriteString(" " + declString(it))
	}
	sb.WriteString(" }")
	for _, v := range t.Variants {
		sb.WriteString("\n")
		sb.WriteString(v.render(t))
	}
	return sb.String()
}

func (v *VariantImpl) render(t *LoweredTrait) string {
	var sb strings.Builder
	implParams := append(ast.CloneParams(t.Generics.Params), ast.CloneParams(v.Variant.Generics.Params)...)
	implGenerics := ast.Generics{Params: implParams}
	sb.WriteString("impl" + implGenerics.ParamsString() + " ")
	sb.WriteString(t.Ident)
	if len(v.TraitArgs) > 0 {
		parts := make([]string, len(v.TraitArgs))
		for i, a := range v.TraitArgs {
			parts[i] = a.String()
		}
		sb.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	sb.WriteString(" for " + v.Variant.Ident)
	varArgs := variantArgs(&v.Variant)
	if len(varArgs) > 0 {
		parts := make([]string, len(varArgs))
		for i, a := range varArgs {
			parts[i] = a.String()
		}
		sb.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	sb.WriteString(" {")
	for _, it := range v.Items {
		sb.WriteString(" " + it.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

// declString renders an item as a bodyless declaration for the trait side.
func declString(item ast.ImplItem) string {
	switch it := item.(type) {
	case *ast.ImplConst:
		return "const " + it.Ident + it.Generics.ParamsString() + ": " + it.Type.String() + ";"
	case *ast.ImplType:
		s := "type " + it.Ident + it.Generics.ParamsString()
		if len(it.Bounds) > 0 {
			parts := make([]string, len(it.Bounds))
			for i, b := range it.Bounds {
				parts[i] = b.String()
			}
			s += ": " + strings.Join(parts, " + ")
		}
		return s + ";"
	case *ast.ImplFn:
		return it.Sig.String() + ";"
	default:
		return item.String()
	}
}
