package subst

import (
	"testing"

	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/diagnostics"
	"github.com/sumlower/sumlower/internal/token"
)

func TestAddUnderscoresToAllParams(t *testing.T) {
	g := gens(tParam("A"), tParam("B", bound("Trait", targ(pathType(seg("A"))))))
	renamed, err := AddUnderscoresToAllParams(g)
	if err != nil {
		t.Fatalf("AddUnderscoresToAllParams() error = %v", err)
	}
	if !renamed {
		t.Error("AddUnderscoresToAllParams() = false, want true")
	}
	if got, want := g.String(), "<A_, B_: Trait<A_>>"; got != want {
		t.Errorf("renamed generics = %q, want %q", got, want)
	}
}

func TestRenameAllParams(t *testing.T) {
	g := gens(tParam("A"), tParam("B", bound("T", targ(pathType(seg("A"))))))
	if err := RenameAllParams(g, gens(tParam("X"), tParam("Y"))); err != nil {
		t.Fatalf("RenameAllParams() error = %v", err)
	}
	if got, want := g.String(), "<X, Y: T<X>>"; got != want {
		t.Errorf("renamed generics = %q, want %q", got, want)
	}
}

func TestRenameAllParamsErrors(t *testing.T) {
	tests := []struct {
		name   string
		g      *ast.Generics
		target *ast.Generics
		want   string
	}{
		{"too few", gens(tParam("A"), tParam("B")), gens(tParam("X")), "too few parameters"},
		{"superfluous", gens(tParam("A")), gens(tParam("X"), tParam("Y")), "superfluous parameter"},
		{"lifetime kind", gens(ltParam("a")), gens(tParam("X")), "lifetime parameter expected"},
		{"type kind", gens(tParam("A")), gens(ltParam("x")), "type parameter expected"},
		{"const kind", gens(cParam("N", "usize")), gens(tParam("X")), "const parameter expected"},
	}
	for _, tt := range tests {
		err := RenameAllParams(tt.g, tt.target)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if err.Message != tt.want {
			t.Errorf("%s: error = %q, want %q", tt.name, err.Message, tt.want)
		}
	}
}

func TestRenameAllParamsAvoidsTargetCollision(t *testing.T) {
	// <Y, X>: renaming Y onto X must not make the old X an occurrence of
	// the new one, so the whole list is moved out of the way first.
	g := gens(tParam("Y"), tParam("X", bound("T", targ(pathType(seg("Y"))))))
	if err := RenameAllParams(g, gens(tParam("X"), tParam("Y"))); err != nil {
		t.Fatalf("RenameAllParams() error = %v", err)
	}
	if got, want := g.String(), "<X, Y: T<X>>"; got != want {
		t.Errorf("renamed generics = %q, want %q", got, want)
	}
}

func TestRenameConflictingParams(t *testing.T) {
	g := gens(tParam("X"), tParam("B"))
	var body ast.Type = &ast.TypeTuple{Elems: []ast.Type{
		ast.TypeIdent("X", token.Span{}),
		ast.TypeIdent("B", token.Span{}),
	}}
	renamed, err := RenameConflictingParams(g,
		func(p ast.GenericParam) (bool, *diagnostics.DiagnosticError) {
			return p.ParamName() == "X", nil
		},
		TypeSlot{Type: &body})
	if err != nil {
		t.Fatalf("RenameConflictingParams() error = %v", err)
	}
	if !renamed {
		t.Error("RenameConflictingParams() = false, want true")
	}
	if got, want := g.String(), "<X_, B>"; got != want {
		t.Errorf("renamed generics = %q, want %q", got, want)
	}
	if got, want := body.String(), "(X_, B)"; got != want {
		t.Errorf("renamed body = %q, want %q", got, want)
	}
}

func TestAddPrefixToAllParams(t *testing.T) {
	g := gens(tParam("A"), tParam("B", bound("T", targ(pathType(seg("A"))))))
	if err := AddPrefixToAllParams(g, "P"); err != nil {
		t.Fatalf("AddPrefixToAllParams() error = %v", err)
	}
	if got, want := g.String(), "<PA, PB: T<PA>>"; got != want {
		t.Errorf("prefixed generics = %q, want %q", got, want)
	}
}
