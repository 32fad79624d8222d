package lower

import (
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/token"
)

// goldenPrograms builds the input for each fixture in testdata/lower.txt.
func goldenPrograms() map[string][]ast.Decl {
	return map[string][]ast.Decl{
		"unwrap": {
			maybeDef(),
			implOf("Maybe", &ast.ImplType{
				Ident:    "Unwrap",
				Generics: gens(tParam("D")),
				Value: matchOn(
					[]ast.Type{ast.TypeIdent(ast.SelfTypeName, token.Span{})},
					arm(tyVal("D"), sel("None")),
					arm(tyVal("T"), sel("Some", tParam("T"))),
				),
			}),
			&ast.TypeDecl{
				Ident:    "UnwrapOr",
				Generics: gens(tParam("M", bound("Maybe")), tParam("D")),
				Value: matchOn(
					[]ast.Type{ast.TypeIdent("M", token.Span{})},
					arm(tyVal("D"), sel("None")),
					arm(tyVal("T"), sel("Some", tParam("T"))),
				),
			},
		},
		"logic": {
			enumDef("Bool", gens(), variant("True"), variant("False")),
			&ast.TypeDecl{
				Ident:    "And",
				Generics: gens(tParam("A", bound("Bool")), tParam("B", bound("Bool"))),
				Value: matchOn(
					[]ast.Type{ast.TypeIdent("A", token.Span{}), ast.TypeIdent("B", token.Span{})},
					arm(tyVal("True"), sel("True"), sel("True")),
					arm(tyVal("False"), defSel(), defSel()),
				),
			},
		},
		"palette": {
			enumDef("Color", gens(tParam("A")), variant("Red"), variant("Green")),
			aliasDef("Pal", gens(), &ast.TraitPath{
				Path: ast.PathOf("Color", token.Span{}),
				Args: []*ast.AliasArg{{Value: tyVal("X")}},
			}),
			&ast.TypeDecl{
				Ident:    "F",
				Generics: gens(tParam("P", bound("Pal"))),
				Value: matchOn(
					[]ast.Type{ast.TypeIdent("P", token.Span{})},
					arm(tyVal("X"), sel("Red")),
					arm(tyVal("Y"), sel("Green")),
				),
			},
		},
	}
}

func TestLowerGolden(t *testing.T) {
	archive, err := txtar.ParseFile(filepath.Join("testdata", "lower.txt"))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	programs := goldenPrograms()
	for _, f := range archive.Files {
		decls, ok := programs[f.Name]
		if !ok {
			t.Errorf("fixture %q has no program", f.Name)
			continue
		}
		t.Run(f.Name, func(t *testing.T) {
			out, lerr := Lower(decls)
			if lerr != nil {
				t.Fatalf("Lower() error = %v", lerr)
			}
			if got, want := out.String(), string(f.Data); got != want {
				t.Errorf("lowered output:\n%s\nwant:\n%s", got, want)
			}
		})
	}
	for name := range programs {
		found := false
		for _, f := range archive.Files {
			if f.Name == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("program %q has no fixture", name)
		}
	}
}
