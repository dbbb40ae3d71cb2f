package collector

import (
	"testing"

	"github.com/compiscript/ccc/pkg/ast"
	"github.com/compiscript/ccc/pkg/cerr"
	"github.com/compiscript/ccc/pkg/symbols"
)

func intAnn() *ast.TypeAnnotation { return &ast.TypeAnnotation{Name: "integer"} }

func TestCollectGlobalOffsets(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.VariableDeclaration{Identifier: "a", TypeAnnotation: intAnn()},
		&ast.VariableDeclaration{Identifier: "b", TypeAnnotation: &ast.TypeAnnotation{Name: "string"}},
	}}
	errs := cerr.NewCollector()
	res := New(errs).Collect(prog)

	a := res.Global.Resolve("a").(*symbols.VariableSymbol)
	b := res.Global.Resolve("b").(*symbols.VariableSymbol)
	if a.Offset == nil || *a.Offset != 0 {
		t.Fatalf("expected a at offset 0, got %v", a.Offset)
	}
	if b.Offset == nil || *b.Offset != 4 {
		t.Fatalf("expected b at offset 4 (after 4-byte int a), got %v", b.Offset)
	}
}

func TestRedeclarationReportsE001(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.VariableDeclaration{Identifier: "x", TypeAnnotation: intAnn()},
		&ast.VariableDeclaration{Identifier: "x", TypeAnnotation: intAnn(), Pos: ast.Pos{Line: 2, Col: 1}},
	}}
	errs := cerr.NewCollector()
	New(errs).Collect(prog)
	if !errs.HasErrors() {
		t.Fatal("expected E001 for redeclaration")
	}
	if errs.Errors()[0].Code != cerr.ERedeclared {
		t.Errorf("expected E001, got %s", errs.Errors()[0].Code)
	}
}

func TestFunctionFrameEquation(t *testing.T) {
	fn := &ast.FunctionDeclaration{
		Identifier: "add",
		Parameters: []*ast.Parameter{
			{Identifier: "a", TypeAnnotation: intAnn()},
			{Identifier: "b", TypeAnnotation: intAnn()},
		},
		ReturnType: intAnn(),
		Body: &ast.Block{Statements: []ast.Stmt{
			&ast.VariableDeclaration{Identifier: "tmp", TypeAnnotation: intAnn()},
		}},
	}
	prog := &ast.Program{Statements: []ast.Stmt{fn}}
	errs := cerr.NewCollector()
	res := New(errs).Collect(prog)

	fnSym := res.Global.Resolve("add").(*symbols.FunctionSymbol)
	if fnSym.ParamsSize != 8 {
		t.Errorf("expected params_size 8 (two 4-byte ints), got %d", fnSym.ParamsSize)
	}
	if fnSym.LocalsSize != 4 {
		t.Errorf("expected locals_size 4, got %d", fnSym.LocalsSize)
	}
	want := fnSym.ParamsSize + fnSym.LocalsSize + 12
	if fnSym.FrameSize != want {
		t.Errorf("frame equation violated: frame_size=%d want=%d", fnSym.FrameSize, want)
	}

	for _, p := range fnSym.Params {
		if p.Offset == nil || *p.Offset >= 0 {
			t.Errorf("parameter %s should have a strictly negative offset, got %v", p.SymName, p.Offset)
		}
	}
}

func TestClassFieldOffsetsS4(t *testing.T) {
	// class Point { var x: integer; var y: integer;
	//   function constructor(a,b){...} function sum(){...} }
	point := &ast.ClassDeclaration{
		Identifier: "Point",
		Members: []ast.ClassMember{
			{Variable: &ast.VariableDeclaration{Identifier: "x", TypeAnnotation: intAnn()}},
			{Variable: &ast.VariableDeclaration{Identifier: "y", TypeAnnotation: intAnn()}},
			{Function: &ast.FunctionDeclaration{Identifier: "constructor", Parameters: []*ast.Parameter{
				{Identifier: "a", TypeAnnotation: intAnn()}, {Identifier: "b", TypeAnnotation: intAnn()},
			}, Body: &ast.Block{}}},
			{Function: &ast.FunctionDeclaration{Identifier: "sum", ReturnType: intAnn(), Body: &ast.Block{}}},
		},
	}
	prog := &ast.Program{Statements: []ast.Stmt{point}}
	errs := cerr.NewCollector()
	res := New(errs).Collect(prog)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	cls := res.Classes["Point"]
	yOff, ok := cls.FieldOffset("y")
	if !ok || yOff != 4 {
		t.Errorf("expected field y at offset 4 (matching spec.md S4), got (%d, %v)", yOff, ok)
	}
}

func TestCyclicInheritanceReportsE052(t *testing.T) {
	a := &ast.ClassDeclaration{Identifier: "A", BaseIdentifier: "B"}
	b := &ast.ClassDeclaration{Identifier: "B", BaseIdentifier: "A"}
	prog := &ast.Program{Statements: []ast.Stmt{a, b}}
	errs := cerr.NewCollector()
	New(errs).Collect(prog)

	found := false
	for _, e := range errs.Errors() {
		if e.Code == cerr.ECyclicInheritance {
			found = true
		}
	}
	if !found {
		t.Errorf("expected E052 for cyclic inheritance, got %v", errs.Errors())
	}
}

func TestUnknownBaseReportsE051(t *testing.T) {
	a := &ast.ClassDeclaration{Identifier: "A", BaseIdentifier: "Ghost"}
	prog := &ast.Program{Statements: []ast.Stmt{a}}
	errs := cerr.NewCollector()
	New(errs).Collect(prog)

	if len(errs.Errors()) != 1 || errs.Errors()[0].Code != cerr.EBaseNotFound {
		t.Errorf("expected a single E051, got %v", errs.Errors())
	}
}

func TestIncompatibleOverrideReportsE053(t *testing.T) {
	strAnn := &ast.TypeAnnotation{Name: "string"}
	a := &ast.ClassDeclaration{Identifier: "A", Members: []ast.ClassMember{
		{Function: &ast.FunctionDeclaration{Identifier: "f", ReturnType: intAnn(), Body: &ast.Block{}}},
	}}
	b := &ast.ClassDeclaration{Identifier: "B", BaseIdentifier: "A", Members: []ast.ClassMember{
		{Function: &ast.FunctionDeclaration{Identifier: "f", ReturnType: strAnn, Body: &ast.Block{}}},
	}}
	prog := &ast.Program{Statements: []ast.Stmt{a, b}}
	errs := cerr.NewCollector()
	New(errs).Collect(prog)

	found := false
	for _, e := range errs.Errors() {
		if e.Code == cerr.EBadOverride {
			found = true
		}
	}
	if !found {
		t.Errorf("expected E053 for incompatible override, got %v", errs.Errors())
	}
}

func TestFieldCollisionReportsE054(t *testing.T) {
	a := &ast.ClassDeclaration{Identifier: "A", Members: []ast.ClassMember{
		{Variable: &ast.VariableDeclaration{Identifier: "x", TypeAnnotation: intAnn()}},
	}}
	b := &ast.ClassDeclaration{Identifier: "B", BaseIdentifier: "A", Members: []ast.ClassMember{
		{Variable: &ast.VariableDeclaration{Identifier: "x", TypeAnnotation: intAnn()}},
	}}
	prog := &ast.Program{Statements: []ast.Stmt{a, b}}
	errs := cerr.NewCollector()
	New(errs).Collect(prog)

	found := false
	for _, e := range errs.Errors() {
		if e.Code == cerr.EFieldCollision {
			found = true
		}
	}
	if !found {
		t.Errorf("expected E054 for field collision, got %v", errs.Errors())
	}
}
