package osexitmain

import (
	"go/ast"
	"go/types"
	"testing"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
)

func TestRun_SkipsNonMainPackage(t *testing.T) {
	pass := &analysis.Pass{Pkg: types.NewPackage("example.com/lib", "lib")}
	if _, err := run(pass); err != nil {
		t.Fatalf("run() on non-main package: %v", err)
	}
}

func TestRun_RequiresInspectorResult(t *testing.T) {
	pass := &analysis.Pass{
		Pkg: types.NewPackage("example.com/cmd", "main"),
		ResultOf: map[*analysis.Analyzer]any{
			inspect.Analyzer: struct{}{},
		},
	}
	if _, err := run(pass); err == nil {
		t.Fatal("expected type assertion error for missing inspector result")
	}
}

func TestIsOsExitCall(t *testing.T) {
	sig := types.NewSignatureType(nil, nil, nil, nil, nil, false)

	newCall := func(fn string) (*ast.CallExpr, *ast.Ident) {
		sel := &ast.Ident{Name: fn}
		call := &ast.CallExpr{
			Fun: &ast.SelectorExpr{
				X:   &ast.Ident{Name: "p"},
				Sel: sel,
			},
		}
		return call, sel
	}

	tests := []struct {
		name      string
		pkgPath   string
		fnName    string
		expectRes bool
	}{
		{"os.Exit", "os", "Exit", true},
		{"fmt.Println", "fmt", "Println", false},
		{"other package Exit", "example.com/fake", "Exit", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, sel := newCall(tt.fnName)
			pass := &analysis.Pass{
				TypesInfo: &types.Info{
					Uses: map[*ast.Ident]types.Object{
						sel: types.NewFunc(0, types.NewPackage(tt.pkgPath, "p"), tt.fnName, sig),
					},
				},
			}
			if res := isOsExitCall(pass, call); res != tt.expectRes {
				t.Errorf("isOsExitCall() = %v, want %v", res, tt.expectRes)
			}
		})
	}

	t.Run("nil call", func(t *testing.T) {
		pass := &analysis.Pass{TypesInfo: &types.Info{Uses: map[*ast.Ident]types.Object{}}}
		if isOsExitCall(pass, nil) {
			t.Error("nil call must not match")
		}
	})
}
