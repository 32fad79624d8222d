package pipeline

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/diagnostics"
	"github.com/sumlower/sumlower/internal/token"
)

type stubFrontend struct {
	decls []ast.Decl
	err   *diagnostics.DiagnosticError
}

func (f *stubFrontend) Parse(fileName, source string) ([]ast.Decl, *diagnostics.DiagnosticError) {
	return f.decls, f.err
}

func colorDecls() []ast.Decl {
	return []ast.Decl{
		&ast.TraitDef{
			Ident: "Color",
			Variants: []*ast.Variant{
				{Ident: "Red"},
				{Ident: "Green"},
			},
		},
		&ast.TraitImpl{
			Target: ast.PathOf("Color", token.Span{}),
			Items: []ast.ImplItem{
				&ast.ImplType{
					Ident: "Depth",
					Value: ast.PlainExpr(ast.TypeIdent("U8", token.Span{})),
				},
			},
		},
	}
}

func TestPipelineRun(t *testing.T) {
	p := New(
		&FrontendProcessor{Frontend: &stubFrontend{decls: colorDecls()}},
		&LowerProcessor{},
		&EmitProcessor{},
	)
	ctx := p.Run(NewContext("colors.sum", "enum trait Color { Red, Green, }"))
	if ctx.HasErrors() {
		t.Fatalf("Run() error = %v", ctx.FirstError())
	}
	if ctx.RunID == uuid.Nil {
		t.Errorf("RunID = nil uuid, want a fresh id")
	}
	want := strings.Join([]string{
		"trait Color { type Depth; }",
		"impl Color for Red { type Depth = U8; }",
		"impl Color for Green { type Depth = U8; }",
		"",
	}, "\n")
	if ctx.Emitted != want {
		t.Errorf("Emitted = %q, want %q", ctx.Emitted, want)
	}
}

func TestPipelineRunWithoutFrontend(t *testing.T) {
	p := New(&LowerProcessor{}, &EmitProcessor{})
	ctx := p.Run(NewDeclContext("colors.sum", colorDecls()))
	if ctx.HasErrors() {
		t.Fatalf("Run() error = %v", ctx.FirstError())
	}
	if ctx.Output == nil || len(ctx.Output.Traits) != 1 {
		t.Fatalf("Output traits = %v, want exactly one", ctx.Output)
	}
}

func TestPipelineStopsAtFirstError(t *testing.T) {
	parseErr := diagnostics.NewError(diagnostics.ErrS005, token.Span{}, "unterminated declaration")
	p := New(
		&FrontendProcessor{Frontend: &stubFrontend{err: parseErr}},
		&LowerProcessor{},
		&EmitProcessor{},
	)
	ctx := p.Run(NewContext("broken.sum", "enum trait"))
	if !ctx.HasErrors() {
		t.Fatal("Run() succeeded, want parse error")
	}
	if len(ctx.Errors) != 1 {
		t.Errorf("len(Errors) = %d, want 1 (chain must stop at first failure)", len(ctx.Errors))
	}
	if ctx.FirstError().File != "broken.sum" {
		t.Errorf("error file = %q, want %q", ctx.FirstError().File, "broken.sum")
	}
	if ctx.Emitted != "" {
		t.Errorf("Emitted = %q, want empty after failed run", ctx.Emitted)
	}
}

func TestPipelineLoweringErrorCarriesFile(t *testing.T) {
	decls := []ast.Decl{
		&ast.TraitImpl{Target: ast.PathOf("Nope", token.Span{})},
	}
	p := New(&LowerProcessor{}, &EmitProcessor{})
	ctx := p.Run(NewDeclContext("missing.sum", decls))
	err := ctx.FirstError()
	if err == nil {
		t.Fatal("Run() succeeded, want unknown-target error")
	}
	if err.Code != diagnostics.ErrL004 {
		t.Errorf("error code = %s, want %s", err.Code, diagnostics.ErrL004)
	}
	if err.File != "missing.sum" {
		t.Errorf("error file = %q, want %q", err.File, "missing.sum")
	}
}
