package subst

import (
	"testing"

	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/token"
)

func seg(name string, args ...ast.GenericArg) ast.PathSegment {
	return ast.PathSegment{Ident: name, Args: args}
}

func pathType(segs ...ast.PathSegment) *ast.TypePath {
	return &ast.TypePath{Path: ast.Path{Segments: segs}}
}

func pathExpr(segs ...ast.PathSegment) *ast.ExprPath {
	return &ast.ExprPath{Path: ast.Path{Segments: segs}}
}

func targ(t ast.Type) ast.GenericArg { return &ast.TypeArg{Type: t} }

func larg(name string) ast.GenericArg {
	return &ast.LifetimeArg{Lifetime: &ast.Lifetime{Name: name}}
}

func bound(name string, args ...ast.GenericArg) *ast.TraitBound {
	return &ast.TraitBound{Path: ast.Path{Segments: []ast.PathSegment{seg(name, args...)}}}
}

func tParam(name string, bounds ...*ast.TraitBound) *ast.TypeParam {
	return &ast.TypeParam{Ident: name, Bounds: bounds}
}

func ltParam(name string) *ast.LifetimeParam {
	return &ast.LifetimeParam{Lifetime: ast.Lifetime{Name: name}}
}

func cParam(name, typeName string) *ast.ConstParam {
	return &ast.ConstParam{Ident: name, Type: ast.TypeIdent(typeName, token.Span{})}
}

func gens(params ...ast.GenericParam) *ast.Generics {
	return &ast.Generics{Params: params}
}

func TestSubstituteLifetimeParam(t *testing.T) {
	param := ltParam("a")
	arg := ParamArg(ltParam("x"))

	var typ ast.Type = pathType(seg("A", larg("a")))
	spans, err := Substitute(TypeSlot{Type: &typ}, param, arg)
	if err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got, want := typ.String(), "A<'x>"; got != want {
		t.Errorf("substituted type = %q, want %q", got, want)
	}
	if len(spans) != 1 {
		t.Errorf("len(spans) = %d, want 1", len(spans))
	}

	typ = pathType(seg("A", larg("b")))
	spans, err = Substitute(TypeSlot{Type: &typ}, param, arg)
	if err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got, want := typ.String(), "A<'b>"; got != want {
		t.Errorf("unrelated lifetime rewritten to %q, want %q", got, want)
	}
	if len(spans) != 0 {
		t.Errorf("len(spans) = %d, want 0", len(spans))
	}
}

func TestSubstituteLifetimeParamShadowedInArm(t *testing.T) {
	param := ltParam("a")
	arg := ParamArg(ltParam("x"))

	expr := ast.MatchExpr(&ast.Match{
		Scrutinees: []ast.Type{ast.TypeIdent("B", token.Span{})},
		Arms: []*ast.Arm{{
			Selectors: []*ast.Selector{{
				Variant:  "C",
				Generics: *gens(ltParam("b"), ltParam("a"), tParam("D")),
			}},
			Body: ast.PlainExpr(pathType(seg("F", larg("a")))),
		}},
	})
	if _, err := Substitute(TypeLevelSlot{Expr: &expr}, param, arg); err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got, want := expr.String(), "match <B> { C<'b, 'a, D> => F<'a>, }"; got != want {
		t.Errorf("shadowed arm changed: got %q, want %q", got, want)
	}
}

func TestSubstituteTypeParamWithParam(t *testing.T) {
	param := tParam("A")
	arg := ParamArg(tParam("X"))

	var typ ast.Type = pathType(seg("F",
		targ(pathType(seg("A"))),
		targ(pathType(seg("B"))),
		targ(pathType(seg("G", targ(pathType(seg("A"), seg("C"), seg("D")))))),
		targ(pathType(seg("E"))),
	))
	spans, err := Substitute(TypeSlot{Type: &typ}, param, arg)
	if err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got, want := typ.String(), "F<X, B, G<X::C::D>, E>"; got != want {
		t.Errorf("substituted type = %q, want %q", got, want)
	}
	if len(spans) != 2 {
		t.Errorf("len(spans) = %d, want 2", len(spans))
	}
}

func TestSubstituteTypeParamWithConcreteType(t *testing.T) {
	param := tParam("A")
	tuple := &ast.TypeTuple{Elems: []ast.Type{
		ast.TypeIdent("X", token.Span{}),
		ast.TypeIdent("Y", token.Span{}),
	}}
	arg := ValueArg(targ(tuple))

	// A multi-segment path headed by the parameter is re-expressed as a
	// qualified path.
	var typ ast.Type = pathType(seg("A"), seg("C"))
	if _, err := Substitute(TypeSlot{Type: &typ}, param, arg); err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got, want := typ.String(), "<(X, Y)>::C"; got != want {
		t.Errorf("substituted path = %q, want %q", got, want)
	}

	// A bare reference in type position is simply replaced.
	typ = pathType(seg("A"))
	if _, err := Substitute(TypeSlot{Type: &typ}, param, arg); err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got, want := typ.String(), "(X, Y)"; got != want {
		t.Errorf("substituted type = %q, want %q", got, want)
	}

	// In expression position there is nothing a bare tuple could mean, so a
	// single-segment path is rejected.
	var expr ast.Expr = pathExpr(seg("A"))
	_, err := Substitute(ExprSlot{Expr: &expr}, param, arg)
	if err == nil {
		t.Fatal("Substitute() on single-segment expr path: expected error")
	}
	if got, want := err.Message, "cannot replace single-segment path with type arg"; got != want {
		t.Errorf("error message = %q, want %q", got, want)
	}
}

func TestSubstituteConstParam(t *testing.T) {
	param := cParam("A", "T")
	value := &ast.ExprBinary{
		X:  ast.ExprIdent("X", token.Span{}),
		Op: "+",
		Y:  &ast.ExprLit{Text: "42"},
	}
	arg := ValueArg(&ast.ConstArg{Expr: value})

	// Compound expression: the argument is bound once in front of the body.
	var expr ast.Expr = &ast.ExprCall{
		Fn: ast.ExprIdent("f", token.Span{}),
		Args: []ast.Expr{
			ast.ExprIdent("A", token.Span{}),
			&ast.ExprCall{
				Fn: ast.ExprIdent("B", token.Span{}),
				Args: []ast.Expr{&ast.ExprCall{
					Fn:   ast.ExprIdent("A", token.Span{}),
					Args: []ast.Expr{ast.ExprIdent("C", token.Span{})},
				}},
			},
		},
	}
	if _, err := Substitute(ExprSlot{Expr: &expr}, param, arg); err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got, want := expr.String(), "{ let A: T = X + 42; f(A, B(A(C))) }"; got != want {
		t.Errorf("substituted expr = %q, want %q", got, want)
	}

	// No occurrence, no binding.
	expr = &ast.ExprCall{
		Fn:   ast.ExprIdent("f", token.Span{}),
		Args: []ast.Expr{ast.ExprIdent("B", token.Span{})},
	}
	spans, err := Substitute(ExprSlot{Expr: &expr}, param, arg)
	if err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got, want := expr.String(), "f(B)"; got != want {
		t.Errorf("occurrence-free expr rewritten to %q, want %q", got, want)
	}
	if len(spans) != 0 {
		t.Errorf("len(spans) = %d, want 0", len(spans))
	}

	// In generic-argument position the occurrence parses as a type argument
	// and comes back as a braced const argument.
	var typ ast.Type = pathType(seg("F", targ(pathType(seg("A")))))
	if _, err := Substitute(TypeSlot{Type: &typ}, param, arg); err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got, want := typ.String(), "F<{X + 42}>"; got != want {
		t.Errorf("substituted type = %q, want %q", got, want)
	}
}

func TestSubstituteKindMismatch(t *testing.T) {
	tests := []struct {
		name  string
		param ast.GenericParam
		arg   Arg
		typ   ast.Type
		want  string
	}{
		{
			name:  "lifetime param, type arg",
			param: ltParam("a"),
			arg:   ValueArg(targ(ast.TypeIdent("X", token.Span{}))),
			typ:   pathType(seg("A", larg("a"))),
			want:  "non-lifetime arg for lifetime param",
		},
		{
			name:  "type param, lifetime arg",
			param: tParam("A"),
			arg:   ValueArg(larg("x")),
			typ:   pathType(seg("A")),
			want:  "non-type arg for type param",
		},
		{
			name:  "type param, const param arg",
			param: tParam("A"),
			arg:   ParamArg(cParam("N", "usize")),
			typ:   pathType(seg("A")),
			want:  "non-type arg for type param",
		},
	}
	for _, tt := range tests {
		typ := tt.typ
		_, err := Substitute(TypeSlot{Type: &typ}, tt.param, tt.arg)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if err.Message != tt.want {
			t.Errorf("%s: error = %q, want %q", tt.name, err.Message, tt.want)
		}
	}
}

func TestSubstituteIntoArmAvoidsCapture(t *testing.T) {
	param := tParam("A")
	arg := ParamArg(tParam("X"))

	expr := ast.MatchExpr(&ast.Match{
		Scrutinees: []ast.Type{ast.TypeIdent("B", token.Span{})},
		Arms: []*ast.Arm{{
			Selectors: []*ast.Selector{{
				Variant:  "C",
				Generics: *gens(tParam("D"), tParam("X")),
			}},
			Body: ast.PlainExpr(&ast.TypeTuple{Elems: []ast.Type{
				ast.TypeIdent("A", token.Span{}),
				ast.TypeIdent("X", token.Span{}),
			}}),
		}},
	})
	spans, err := Substitute(TypeLevelSlot{Expr: &expr}, param, arg)
	if err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got, want := expr.String(), "match <B> { C<D, X_> => (X, X_), }"; got != want {
		t.Errorf("substituted match = %q, want %q", got, want)
	}
	if len(spans) == 0 {
		t.Error("forced rename recorded no occurrence")
	}
}

func TestSubstituteAllParams(t *testing.T) {
	var typ ast.Type = pathType(seg("F",
		targ(pathType(seg("A"))),
		targ(pathType(seg("B"))),
	))
	ok, err := SubstituteAllParams(TypeSlot{Type: &typ},
		gens(tParam("A"), tParam("B")),
		gens(tParam("X"), tParam("Y")))
	if err != nil {
		t.Fatalf("SubstituteAllParams() error = %v", err)
	}
	if !ok {
		t.Error("SubstituteAllParams() = false, want true")
	}
	if got, want := typ.String(), "F<X, Y>"; got != want {
		t.Errorf("substituted type = %q, want %q", got, want)
	}
}

func TestSubstituteAllParamsCardinality(t *testing.T) {
	tests := []struct {
		name string
		args *ast.Generics
		want string
	}{
		{"too few", gens(tParam("X")), "too few parameters"},
		{"superfluous", gens(tParam("X"), tParam("Y"), tParam("Z")), "superfluous parameter"},
	}
	for _, tt := range tests {
		var typ ast.Type = pathType(seg("F", targ(pathType(seg("A")))))
		_, err := SubstituteAllParams(TypeSlot{Type: &typ}, gens(tParam("A"), tParam("B")), tt.args)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if err.Message != tt.want {
			t.Errorf("%s: error = %q, want %q", tt.name, err.Message, tt.want)
		}
	}
}

func TestReferences(t *testing.T) {
	var typ ast.Type = pathType(seg("F", targ(pathType(seg("A")))))
	ok, err := References(TypeSlot{Type: &typ}, tParam("A"))
	if err != nil {
		t.Fatalf("References() error = %v", err)
	}
	if !ok {
		t.Error("References(F<A>, A) = false, want true")
	}
	if got, want := typ.String(), "F<A>"; got != want {
		t.Errorf("query mutated node: %q, want %q", got, want)
	}
	ok, err = References(TypeSlot{Type: &typ}, tParam("B"))
	if err != nil {
		t.Fatalf("References() error = %v", err)
	}
	if ok {
		t.Error("References(F<A>, B) = true, want false")
	}
}

func TestSubstituteSignature(t *testing.T) {
	param := tParam("T")
	arg := ValueArg(targ(pathType(seg("Item"))))

	sig := ast.Signature{
		Ident:  "get",
		Inputs: []*ast.FnParam{{Name: "v", Type: pathType(seg("Vec", targ(pathType(seg("T")))))}},
		Output: pathType(seg("T")),
	}
	spans, err := Substitute(SignatureSlot{Sig: &sig}, param, arg)
	if err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got, want := sig.Inputs[0].Type.String(), "Vec<Item>"; got != want {
		t.Errorf("input type = %q, want %q", got, want)
	}
	if got, want := sig.Output.String(), "Item"; got != want {
		t.Errorf("output type = %q, want %q", got, want)
	}
	if len(spans) != 2 {
		t.Errorf("len(spans) = %d, want 2", len(spans))
	}
}

func TestContextConflict(t *testing.T) {
	ctx := ast.WithSelf(ast.SelfTypeParam(nil, token.Span{}),
		ast.WithGenerics(gens(tParam("T"), cParam("N", "usize"), ltParam("a")), nil))

	tests := []struct {
		name  string
		param ast.GenericParam
		want  bool
	}{
		{"type against type", tParam("T"), true},
		{"const against type", cParam("T", "usize"), true},
		{"self scope", tParam(ast.SelfTypeName), true},
		{"lifetime against lifetime", ltParam("a"), true},
		{"lifetime against type name", ltParam("T"), false},
		{"free name", tParam("U"), false},
	}
	for _, tt := range tests {
		if got := ContextConflict(tt.param, ctx); got != tt.want {
			t.Errorf("%s: ContextConflict() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
