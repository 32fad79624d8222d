package subst

import (
	"testing"

	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/token"
)

func captureNames(caps []Capture) []string {
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = c.Param.ParamName()
	}
	return names
}

func TestBuildIndirectionDirectReference(t *testing.T) {
	ctx := ast.WithGenerics(gens(tParam("A"), tParam("B")), nil)
	var typ ast.Type = pathType(seg("F", targ(pathType(seg("A")))))
	caps, err := BuildIndirection(TypeSlot{Type: &typ}, ctx)
	if err != nil {
		t.Fatalf("BuildIndirection() error = %v", err)
	}
	got := captureNames(caps)
	if len(got) != 1 || got[0] != "A" {
		t.Errorf("captures = %v, want [A]", got)
	}
	if want := "A"; caps[0].Arg.String() != want {
		t.Errorf("capture arg = %q, want %q", caps[0].Arg.String(), want)
	}
}

func TestBuildIndirectionSkipsShadowed(t *testing.T) {
	inner := gens(tParam("A", bound("T")))
	outer := gens(tParam("A"), tParam("B"))
	ctx := ast.WithGenerics(inner, ast.WithGenerics(outer, nil))
	var typ ast.Type = pathType(seg("F", targ(pathType(seg("A")))))
	caps, err := BuildIndirection(TypeSlot{Type: &typ}, ctx)
	if err != nil {
		t.Fatalf("BuildIndirection() error = %v", err)
	}
	got := captureNames(caps)
	if len(got) != 1 || got[0] != "A" {
		t.Fatalf("captures = %v, want [A]", got)
	}
	if tp, ok := caps[0].Param.(*ast.TypeParam); !ok || len(tp.Bounds) != 1 {
		t.Errorf("captured param = %v, want the inner bounded A", caps[0].Param)
	}
}

func TestBuildIndirectionTransitiveBound(t *testing.T) {
	ctx := ast.WithGenerics(gens(
		tParam("A"),
		tParam("B", bound("T", targ(pathType(seg("A"))))),
	), nil)
	var typ ast.Type = pathType(seg("F", targ(pathType(seg("B")))))
	caps, err := BuildIndirection(TypeSlot{Type: &typ}, ctx)
	if err != nil {
		t.Fatalf("BuildIndirection() error = %v", err)
	}
	got := captureNames(caps)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("captures = %v, want [A B]", got)
	}
}

func TestBuildIndirectionRenamesSelf(t *testing.T) {
	ctx := ast.WithSelf(ast.SelfTypeParam([]*ast.TraitBound{bound("T")}, token.Span{}), nil)
	var typ ast.Type = pathType(seg("F", targ(pathType(seg("Self")))))
	caps, err := BuildIndirection(TypeSlot{Type: &typ}, ctx)
	if err != nil {
		t.Fatalf("BuildIndirection() error = %v", err)
	}
	if len(caps) != 1 {
		t.Fatalf("len(captures) = %d, want 1", len(caps))
	}
	// The lifted declaration cannot bind Self, so the parameter is renamed;
	// the use-site argument still refers to the original Self.
	if got, want := caps[0].Param.ParamName(), "Self_"; got != want {
		t.Errorf("capture param = %q, want %q", got, want)
	}
	if got, want := caps[0].Arg.String(), "Self"; got != want {
		t.Errorf("capture arg = %q, want %q", got, want)
	}
	if got, want := typ.String(), "F<Self_>"; got != want {
		t.Errorf("rewritten expr = %q, want %q", got, want)
	}
}

func TestBuildIndirectionUnreferenced(t *testing.T) {
	ctx := ast.WithGenerics(gens(tParam("A"), tParam("B")), nil)
	var typ ast.Type = pathType(seg("F", targ(pathType(seg("C")))))
	caps, err := BuildIndirection(TypeSlot{Type: &typ}, ctx)
	if err != nil {
		t.Fatalf("BuildIndirection() error = %v", err)
	}
	if len(caps) != 0 {
		t.Errorf("captures = %v, want none", captureNames(caps))
	}
}

func TestIsolateTypeParam(t *testing.T) {
	ctx := ast.WithGenerics(gens(tParam("A", bound("T")), tParam("B")), nil)
	var typ ast.Type = pathType(seg("F",
		targ(pathType(seg("A"))),
		targ(pathType(seg("B"))),
	))
	isolated, caps, err := IsolateTypeParam(TypeSlot{Type: &typ}, ctx, "A", token.Span{})
	if err != nil {
		t.Fatalf("IsolateTypeParam() error = %v", err)
	}
	if isolated == nil || isolated.Ident != "A" || len(isolated.Bounds) != 1 {
		t.Errorf("isolated param = %v, want A: T", isolated)
	}
	got := captureNames(caps)
	if len(got) != 1 || got[0] != "B" {
		t.Errorf("captures = %v, want [B]", got)
	}
	if want := "F<Self, B>"; typ.String() != want {
		t.Errorf("rewritten expr = %q, want %q", typ.String(), want)
	}
}

func TestIsolateTypeParamThroughSelfScope(t *testing.T) {
	ctx := ast.WithSelf(ast.SelfTypeParam([]*ast.TraitBound{bound("T")}, token.Span{}),
		ast.WithGenerics(gens(tParam("I")), nil))
	var typ ast.Type = pathType(seg("F",
		targ(pathType(seg("Self"))),
		targ(pathType(seg("I"))),
	))
	isolated, caps, err := IsolateTypeParam(TypeSlot{Type: &typ}, ctx, "Self", token.Span{})
	if err != nil {
		t.Fatalf("IsolateTypeParam() error = %v", err)
	}
	if isolated == nil || isolated.Ident != "Self" {
		t.Errorf("isolated param = %v, want Self", isolated)
	}
	got := captureNames(caps)
	if len(got) != 1 || got[0] != "I" {
		t.Errorf("captures = %v, want [I]", got)
	}
	if want := "F<Self, I>"; typ.String() != want {
		t.Errorf("rewritten expr = %q, want %q", typ.String(), want)
	}
}

func TestIsolateTypeParamErrors(t *testing.T) {
	var typ ast.Type = pathType(seg("F"))
	ctx := ast.WithGenerics(gens(cParam("N", "usize")), nil)
	_, _, err := IsolateTypeParam(TypeSlot{Type: &typ}, ctx, "N", token.Span{})
	if err == nil {
		t.Fatal("IsolateTypeParam(const param): expected error")
	}
	if got, want := err.Message, "type param expected, but `N` is a const param"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}

	_, _, err = IsolateTypeParam(TypeSlot{Type: &typ}, ctx, "Z", token.Span{})
	if err == nil {
		t.Fatal("IsolateTypeParam(unknown): expected error")
	}
	if got, want := err.Message, "type param `Z` not found"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}
