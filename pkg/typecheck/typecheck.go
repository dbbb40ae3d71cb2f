// Package typecheck implements Pass 2 of Compiscript semantic analysis: a
// second AST walk, re-entering the scopes Pass 1 built via scope_by_ast_node,
// that infers and attaches expression types, enforces every rule in §4.4,
// and accumulates errors rather than aborting on the first one (§7). Like
// pkg/collector, each AST construct gets one dedicated method selected by a
// type switch instead of a dynamic visitor (see spec.md §9's REDESIGN
// FLAGS), following the teacher's one-function-per-construct style (e.g.
// pkg/cshmgen/stmt.go, pkg/cshmgen/expr.go).
package typecheck

import (
	"github.com/compiscript/ccc/pkg/ast"
	"github.com/compiscript/ccc/pkg/cerr"
	"github.com/compiscript/ccc/pkg/symbols"
	"github.com/compiscript/ccc/pkg/types"
)

// Result carries the inferred types Pass 2 attached to every expression
// node, keyed by node identity, for the TAC generator to consume.
type Result struct {
	TypeByNode map[ast.Expr]types.Type
}

// Checker runs Pass 2 over a Program using the scope tree and class table
// Pass 1 produced.
type Checker struct {
	errs        *cerr.Collector
	scopeByNode map[ast.Node]*symbols.Scope
	classes     map[string]*symbols.ClassSymbol
	typeByNode  map[ast.Expr]types.Type

	funcReturnStack []types.Type
	loopDepth       int
	switchDepth     int
	classStack      []*symbols.ClassSymbol
}

// New creates a Checker over the Pass 1 result.
func New(errs *cerr.Collector, scopeByNode map[ast.Node]*symbols.Scope, classes map[string]*symbols.ClassSymbol) *Checker {
	return &Checker{
		errs:        errs,
		scopeByNode: scopeByNode,
		classes:     classes,
		typeByNode:  make(map[ast.Expr]types.Type),
	}
}

// Check runs Pass 2 over prog.
func (c *Checker) Check(prog *ast.Program) *Result {
	global := c.scopeByNode[prog]
	c.checkStmts(prog.Statements, global)
	return &Result{TypeByNode: c.typeByNode}
}

func (c *Checker) checkStmts(stmts []ast.Stmt, scope *symbols.Scope) {
	for _, s := range stmts {
		c.checkStmt(s, scope)
	}
}

func (c *Checker) checkStmt(s ast.Stmt, scope *symbols.Scope) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		c.checkVariableDecl(n, scope)
	case *ast.ConstantDeclaration:
		c.checkConstantDecl(n, scope)
	case *ast.FunctionDeclaration:
		c.checkFunctionDecl(n, scope)
	case *ast.ClassDeclaration:
		c.checkClassDecl(n, scope)
	case *ast.Block:
		c.checkStmts(n.Statements, c.childScope(n, scope))
	case *ast.If:
		condType := c.checkExpr(n.Condition, scope)
		if !isBoolean(condType) {
			l, col := n.Condition.Position()
			c.errs.Report(l, col, cerr.ENonBooleanCond, "if condition must be boolean, got %s", condType.Name())
		}
		c.checkStmts(n.Then.Statements, c.childScope(n.Then, scope))
		if n.Else != nil {
			c.checkStmts(n.Else.Statements, c.childScope(n.Else, scope))
		}
	case *ast.While:
		c.checkLoopCondition(n.Condition, scope)
		c.loopDepth++
		c.checkStmts(n.Body.Statements, c.childScope(n.Body, scope))
		c.loopDepth--
	case *ast.DoWhile:
		c.loopDepth++
		c.checkStmts(n.Body.Statements, c.childScope(n.Body, scope))
		c.loopDepth--
		c.checkLoopCondition(n.Condition, scope)
	case *ast.For:
		forScope := c.childScope(n, scope)
		if n.Init != nil {
			c.checkStmt(n.Init, forScope)
		}
		if n.Cond != nil {
			c.checkLoopCondition(n.Cond, forScope)
		}
		c.loopDepth++
		c.checkStmts(n.Body.Statements, c.childScope(n.Body, forScope))
		if n.Update != nil {
			c.checkStmt(n.Update, forScope)
		}
		c.loopDepth--
	case *ast.Foreach:
		c.checkForeach(n, scope)
	case *ast.Switch:
		c.checkSwitch(n, scope)
	case *ast.Break:
		if c.loopDepth == 0 && c.switchDepth == 0 {
			c.errs.Report(n.Line, n.Col, cerr.EBreakOutside, "'break' used outside a loop or switch")
		}
	case *ast.Continue:
		if c.loopDepth == 0 {
			c.errs.Report(n.Line, n.Col, cerr.EContinueOutside, "'continue' used outside a loop")
		}
	case *ast.Return:
		c.checkReturn(n, scope)
	case *ast.Print:
		c.checkExpr(n.Expression, scope)
	case *ast.TryCatch:
		c.checkStmts(n.Body.Statements, c.childScope(n.Body, scope))
		if n.Handler != nil {
			c.checkStmts(n.Handler.Statements, c.childScope(n.Handler, scope))
		}
	case *ast.ExprStmt:
		c.checkExpr(n.Expression, scope)
	}
}

// childScope returns the scope Pass 1 recorded for node, falling back to
// the enclosing scope if none was recorded (defensive; every scope-
// introducing node is always present in scopeByNode after a successful
// Pass 1 run).
func (c *Checker) childScope(node ast.Node, fallback *symbols.Scope) *symbols.Scope {
	if s, ok := c.scopeByNode[node]; ok {
		return s
	}
	return fallback
}

func (c *Checker) checkLoopCondition(cond ast.Expr, scope *symbols.Scope) {
	condType := c.checkExpr(cond, scope)
	if !isBoolean(condType) {
		l, col := cond.Position()
		c.errs.Report(l, col, cerr.ENonBooleanCond, "loop condition must be boolean, got %s", condType.Name())
	}
}

func isBoolean(t types.Type) bool {
	_, ok := t.(types.Boolean)
	return ok
}

func (c *Checker) checkVariableDecl(n *ast.VariableDeclaration, scope *symbols.Scope) {
	sym, _ := scope.ResolveLocal(n.Identifier).(*symbols.VariableSymbol)
	if sym == nil {
		return
	}
	if n.Initializer != nil {
		initType := c.checkExpr(n.Initializer, scope)
		if n.TypeAnnotation == nil {
			sym.SymType = initType
		} else if !types.Assignable(initType, sym.SymType) {
			c.errs.Report(n.Line, n.Col, cerr.ETypeMismatch, "cannot initialize '%s' of type %s with value of type %s", n.Identifier, sym.SymType.Name(), initType.Name())
		}
		sym.Initialized = true
	}
}

func (c *Checker) checkConstantDecl(n *ast.ConstantDeclaration, scope *symbols.Scope) {
	sym, _ := scope.ResolveLocal(n.Identifier).(*symbols.VariableSymbol)
	if sym == nil {
		return
	}
	initType := c.checkExpr(n.Expression, scope)
	if n.TypeAnnotation == nil {
		sym.SymType = initType
	} else if !types.Assignable(initType, sym.SymType) {
		c.errs.Report(n.Line, n.Col, cerr.ETypeMismatch, "cannot initialize '%s' of type %s with value of type %s", n.Identifier, sym.SymType.Name(), initType.Name())
	}
	sym.Initialized = true
}

func (c *Checker) checkFunctionDecl(n *ast.FunctionDeclaration, scope *symbols.Scope) {
	fnScope := c.childScope(n, scope)
	fnSym, _ := scope.ResolveLocal(n.Identifier).(*symbols.FunctionSymbol)
	retType := types.Type(types.Null{})
	if fnSym != nil {
		if ft, ok := fnSym.SymType.(types.Function); ok && ft.Ret != nil {
			retType = ft.Ret
		}
	}

	if n.EnclosingClass != "" {
		classSym := c.classes[n.EnclosingClass]
		c.classStack = append(c.classStack, classSym)
		fnScope.Define(&symbols.VariableSymbol{SymName: "this", SymType: types.Class{ClassName: n.EnclosingClass}, Initialized: true})
	}

	c.funcReturnStack = append(c.funcReturnStack, retType)
	if n.Body != nil {
		c.checkStmts(n.Body.Statements, c.childScope(n.Body, fnScope))
		if _, isNull := retType.(types.Null); !isNull {
			if !blockReturns(n.Body.Statements) {
				c.errs.Report(n.Line, n.Col, cerr.ENotAllPathsReturn, "function '%s' does not return a value on all paths", n.Identifier)
			}
		}
	}
	c.funcReturnStack = c.funcReturnStack[:len(c.funcReturnStack)-1]

	if n.EnclosingClass != "" {
		c.classStack = c.classStack[:len(c.classStack)-1]
	}
}

func (c *Checker) checkClassDecl(n *ast.ClassDeclaration, scope *symbols.Scope) {
	classSym := c.classes[n.Identifier]
	classScope := c.childScope(n, scope)
	c.classStack = append(c.classStack, classSym)
	for _, m := range n.Members {
		switch {
		case m.Variable != nil:
			c.checkVariableDecl(m.Variable, classScope)
		case m.Constant != nil:
			c.checkConstantDecl(m.Constant, classScope)
		case m.Function != nil:
			c.checkFunctionDecl(m.Function, classScope)
		}
	}
	c.classStack = c.classStack[:len(c.classStack)-1]
}

func (c *Checker) checkReturn(n *ast.Return, scope *symbols.Scope) {
	if len(c.funcReturnStack) == 0 {
		c.errs.Report(n.Line, n.Col, cerr.EReturnOutside, "'return' used outside a function")
		if n.Expression != nil {
			c.checkExpr(n.Expression, scope)
		}
		return
	}
	expected := c.funcReturnStack[len(c.funcReturnStack)-1]
	if n.Expression == nil {
		if _, isNull := expected.(types.Null); !isNull {
			c.errs.Report(n.Line, n.Col, cerr.EReturnValueNeeded, "function expects a return value of type %s", expected.Name())
		}
		return
	}
	actual := c.checkExpr(n.Expression, scope)
	if !types.Assignable(actual, expected) {
		c.errs.Report(n.Line, n.Col, cerr.EReturnType, "return type mismatch: expected %s, got %s", expected.Name(), actual.Name())
	}
}

func (c *Checker) checkForeach(n *ast.Foreach, scope *symbols.Scope) {
	iterType := c.checkExpr(n.Iterable, scope)
	loopScope := c.childScope(n, scope)
	elemType := types.Type(types.Null{})
	if arr, ok := iterType.(types.Array); ok {
		elemType = arr.Elem
	} else {
		l, col := n.Iterable.Position()
		c.errs.Report(l, col, cerr.EForeachNonArray, "foreach target must be an array, got %s", iterType.Name())
	}
	if sym, ok := loopScope.ResolveLocal(n.Identifier).(*symbols.VariableSymbol); ok {
		sym.SymType = elemType
		sym.Initialized = true
	}
	c.loopDepth++
	c.checkStmts(n.Body.Statements, c.childScope(n.Body, loopScope))
	c.loopDepth--
}

func (c *Checker) checkSwitch(n *ast.Switch, scope *symbols.Scope) {
	selType := c.checkExpr(n.Selector, scope)
	seen := make(map[string]bool)
	c.switchDepth++
	for _, sc := range n.Cases {
		caseType := c.checkExpr(sc.Expr, scope)
		if !types.EqCompatible(caseType, selType) {
			l, col := sc.Expr.Position()
			c.errs.Report(l, col, cerr.ESwitchType, "case expression type %s is incompatible with selector type %s", caseType.Name(), selType.Name())
		}
		if key, literal := literalKey(sc.Expr); literal {
			if seen[key] {
				l, col := sc.Expr.Position()
				c.errs.Report(l, col, cerr.EDuplicateCase, "duplicate case value %s", key)
			}
			seen[key] = true
		}
		caseScope := c.childScope(sc, scope)
		c.checkStmts(sc.Statements, caseScope)
	}
	if n.Default != nil {
		c.checkStmts(n.Default, scope)
	}
	c.switchDepth--
}

func literalKey(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return "i:" + itoa(n.Value), true
	case *ast.StringLiteral:
		return "s:" + n.Value, true
	case *ast.BooleanLiteral:
		if n.Value {
			return "b:true", true
		}
		return "b:false", true
	}
	return "", false
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// blockReturns reports whether every execution path through stmts executes
// a return statement (§4.4's conservative return-completeness check): true
// iff any one top-level statement unconditionally returns, where a bare
// return, a nested block that itself satisfies this, or an if/else whose
// both branches satisfy this, all count; loops and switch never do.
func blockReturns(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if stmtReturns(s) {
			return true
		}
	}
	return false
}

func stmtReturns(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		return blockReturns(n.Statements)
	case *ast.If:
		if n.Else == nil {
			return false
		}
		return blockReturns(n.Then.Statements) && blockReturns(n.Else.Statements)
	default:
		return false
	}
}
