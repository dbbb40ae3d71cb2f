package typecheck

import (
	"testing"

	"github.com/compiscript/ccc/pkg/ast"
	"github.com/compiscript/ccc/pkg/cerr"
	"github.com/compiscript/ccc/pkg/collector"
)

func intAnn() *ast.TypeAnnotation { return &ast.TypeAnnotation{Name: "integer"} }

func run(t *testing.T, prog *ast.Program) *cerr.Collector {
	t.Helper()
	errs := cerr.NewCollector()
	res := collector.New(errs).Collect(prog)
	New(errs, res.ScopeByNode, res.Classes).Check(prog)
	return errs
}

func hasCode(errs *cerr.Collector, code cerr.Code) bool {
	for _, e := range errs.Errors() {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestUndeclaredIdentifierReportsE002(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.ExprStmt{Expression: &ast.Identifier{Name: "ghost"}},
	}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.EUndeclared) {
		t.Errorf("expected E002, got %v", errs.Errors())
	}
}

func TestVariableInitMismatchReportsE004(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.VariableDeclaration{Identifier: "x", TypeAnnotation: intAnn(), Initializer: &ast.StringLiteral{Value: "oops"}},
	}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.ETypeMismatch) {
		t.Errorf("expected E004, got %v", errs.Errors())
	}
}

func TestVariableInferredFromInitializerWhenAnnotationOmitted(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.VariableDeclaration{Identifier: "x", Initializer: &ast.IntegerLiteral{Value: 5}},
		&ast.ExprStmt{Expression: &ast.Assignment{
			Target: &ast.Identifier{Name: "x"},
			Value:  &ast.IntegerLiteral{Value: 6},
		}},
	}}
	errs := run(t, prog)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
}

func TestArithmeticOnStringReportsE010(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.VariableDeclaration{Identifier: "x", TypeAnnotation: intAnn(), Initializer: &ast.BinaryOp{
			Op:    "-",
			Left:  &ast.StringLiteral{Value: "a"},
			Right: &ast.IntegerLiteral{Value: 1},
		}},
	}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.EOperatorType) {
		t.Errorf("expected E010, got %v", errs.Errors())
	}
}

func TestConstReassignmentReportsE005(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.ConstantDeclaration{Identifier: "k", TypeAnnotation: intAnn(), Expression: &ast.IntegerLiteral{Value: 10}},
		&ast.ExprStmt{Expression: &ast.Assignment{
			Target: &ast.Identifier{Name: "k"},
			Value:  &ast.IntegerLiteral{Value: 11},
		}},
	}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.EConstAssign) {
		t.Errorf("expected E005, got %v", errs.Errors())
	}
}

func TestReturnTypeMismatchReportsE012(t *testing.T) {
	fn := &ast.FunctionDeclaration{
		Identifier: "f",
		ReturnType: intAnn(),
		Body: &ast.Block{Statements: []ast.Stmt{
			&ast.Return{Expression: &ast.StringLiteral{Value: "nope"}},
		}},
	}
	prog := &ast.Program{Statements: []ast.Stmt{fn}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.EReturnType) {
		t.Errorf("expected E012, got %v", errs.Errors())
	}
}

func TestMissingReturnOnSomePathsReportsE015(t *testing.T) {
	fn := &ast.FunctionDeclaration{
		Identifier: "f",
		ReturnType: intAnn(),
		Body: &ast.Block{Statements: []ast.Stmt{
			&ast.If{
				Condition: &ast.BooleanLiteral{Value: true},
				Then:      &ast.Block{Statements: []ast.Stmt{&ast.Return{Expression: &ast.IntegerLiteral{Value: 1}}}},
			},
		}},
	}
	prog := &ast.Program{Statements: []ast.Stmt{fn}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.ENotAllPathsReturn) {
		t.Errorf("expected E015, got %v", errs.Errors())
	}
}

func TestReturnOnAllPathsWithElseIsAccepted(t *testing.T) {
	fn := &ast.FunctionDeclaration{
		Identifier: "f",
		ReturnType: intAnn(),
		Body: &ast.Block{Statements: []ast.Stmt{
			&ast.If{
				Condition: &ast.BooleanLiteral{Value: true},
				Then:      &ast.Block{Statements: []ast.Stmt{&ast.Return{Expression: &ast.IntegerLiteral{Value: 1}}}},
				Else:      &ast.Block{Statements: []ast.Stmt{&ast.Return{Expression: &ast.IntegerLiteral{Value: 2}}}},
			},
		}},
	}
	prog := &ast.Program{Statements: []ast.Stmt{fn}}
	errs := run(t, prog)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
}

func TestForeachOverNonArrayReportsE032(t *testing.T) {
	stmt := &ast.Foreach{
		Identifier: "v",
		Iterable:   &ast.IntegerLiteral{Value: 1},
		Body:       &ast.Block{},
	}
	prog := &ast.Program{Statements: []ast.Stmt{stmt}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.EForeachNonArray) {
		t.Errorf("expected E032, got %v", errs.Errors())
	}
}

func TestBreakOutsideLoopReportsE041(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{&ast.Break{}}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.EBreakOutside) {
		t.Errorf("expected E041, got %v", errs.Errors())
	}
}

func TestThisOutsideMethodReportsE043(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.ExprStmt{Expression: &ast.This{}},
	}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.EThisOutside) {
		t.Errorf("expected E043, got %v", errs.Errors())
	}
}

func TestMethodBodyResolvesThisToOwnClass(t *testing.T) {
	class := &ast.ClassDeclaration{
		Identifier: "Box",
		Members: []ast.ClassMember{
			{Variable: &ast.VariableDeclaration{Identifier: "v", TypeAnnotation: intAnn()}},
			{Function: &ast.FunctionDeclaration{
				Identifier: "getV",
				ReturnType: intAnn(),
				Body: &ast.Block{Statements: []ast.Stmt{
					&ast.Return{Expression: &ast.PropertyAccess{Base: &ast.This{}, Identifier: "v"}},
				}},
			}},
		},
	}
	prog := &ast.Program{Statements: []ast.Stmt{class}}
	errs := run(t, prog)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
}

func TestTernaryIncompatibleBranchesReportsE070(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.VariableDeclaration{Identifier: "x", Initializer: &ast.Ternary{
			Cond: &ast.BooleanLiteral{Value: true},
			Then: &ast.IntegerLiteral{Value: 1},
			Else: &ast.StringLiteral{Value: "s"},
		}},
	}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.ETernaryType) {
		t.Errorf("expected E070, got %v", errs.Errors())
	}
}

func TestCallArityMismatchReportsE021(t *testing.T) {
	fn := &ast.FunctionDeclaration{
		Identifier: "add",
		Parameters: []*ast.Parameter{
			{Identifier: "a", TypeAnnotation: intAnn()},
			{Identifier: "b", TypeAnnotation: intAnn()},
		},
		ReturnType: intAnn(),
		Body:       &ast.Block{Statements: []ast.Stmt{&ast.Return{Expression: &ast.IntegerLiteral{Value: 0}}}},
	}
	call := &ast.ExprStmt{Expression: &ast.Call{
		Callee: &ast.Identifier{Name: "add"},
		Args:   []ast.Expr{&ast.IntegerLiteral{Value: 1}},
	}}
	prog := &ast.Program{Statements: []ast.Stmt{fn, call}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.EArity) {
		t.Errorf("expected E021, got %v", errs.Errors())
	}
}

func TestUnknownMemberReportsE034(t *testing.T) {
	class := &ast.ClassDeclaration{
		Identifier: "Box",
		Members: []ast.ClassMember{
			{Variable: &ast.VariableDeclaration{Identifier: "v", TypeAnnotation: intAnn()}},
		},
	}
	use := &ast.ExprStmt{Expression: &ast.PropertyAccess{
		Base:       &ast.New{ClassName: "Box"},
		Identifier: "missing",
	}}
	prog := &ast.Program{Statements: []ast.Stmt{class, use}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.EUnknownMember) {
		t.Errorf("expected E034, got %v", errs.Errors())
	}
}

func TestArrayLengthResolvesToInteger(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.VariableDeclaration{
			Identifier: "n",
			TypeAnnotation: intAnn(),
			Initializer: &ast.PropertyAccess{
				Base:       &ast.ArrayLiteral{Elements: []ast.Expr{&ast.IntegerLiteral{Value: 1}}},
				Identifier: "length",
			},
		},
	}}
	errs := run(t, prog)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
}

func TestHeterogeneousArrayLiteralReportsE011(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.ExprStmt{Expression: &ast.ArrayLiteral{Elements: []ast.Expr{
			&ast.IntegerLiteral{Value: 1},
			&ast.StringLiteral{Value: "x"},
		}}},
	}}
	errs := run(t, prog)
	if !hasCode(errs, cerr.EHeterogeneousArray) {
		t.Errorf("expected E011, got %v", errs.Errors())
	}
}
