// Package collector implements Pass 1 of Compiscript semantic analysis: a
// single AST walk that builds the scope tree, declares every symbol,
// records scope_by_ast_node, resolves inheritance, and assigns activation-
// record/instance offsets (§4.3). It mirrors the teacher's structural style
// of one function per source construct (see pkg/cshmgen/program.go's
// translateFunctionWithStructs, pkg/cminorgen/vars.go's ClassifyVariables)
// rather than a dynamic visitor: each AST node kind gets one dedicated
// method on *Collector, selected by a plain type switch.
package collector

import (
	"github.com/compiscript/ccc/pkg/ast"
	"github.com/compiscript/ccc/pkg/cerr"
	"github.com/compiscript/ccc/pkg/symbols"
	"github.com/compiscript/ccc/pkg/types"
)

// Result is everything Pass 2, the TAC generator and the IDE collaborator
// need from Pass 1.
type Result struct {
	Global      *symbols.Scope
	ScopeByNode map[ast.Node]*symbols.Scope
	Classes     map[string]*symbols.ClassSymbol // by name, for inheritance/layout resolution
}

// Collector runs Pass 1 over a single Program.
type Collector struct {
	errs        *cerr.Collector
	scopeByNode map[ast.Node]*symbols.Scope
	classes     map[string]*symbols.ClassSymbol
	classDecls  map[string]*ast.ClassDeclaration
}

// New creates a Collector that reports into errs.
func New(errs *cerr.Collector) *Collector {
	return &Collector{
		errs:        errs,
		scopeByNode: make(map[ast.Node]*symbols.Scope),
		classes:     make(map[string]*symbols.ClassSymbol),
		classDecls:  make(map[string]*ast.ClassDeclaration),
	}
}

// Collect runs Pass 1 over prog and returns the resulting scope tree.
func (c *Collector) Collect(prog *ast.Program) *Result {
	global := symbols.NewScope("global")
	c.scopeByNode[prog] = global

	c.collectStmts(prog.Statements, global)
	c.finalizeInheritance()
	c.assignGlobalOffsets(global)
	c.assignTopLevelBlockOffsets(global)

	return &Result{Global: global, ScopeByNode: c.scopeByNode, Classes: c.classes}
}

func typeFromAnnotation(ann *ast.TypeAnnotation) types.Type {
	if ann == nil {
		return types.Null{}
	}
	return types.FromText(ann.Name, ann.Dims)
}

// collectStmts declares every statement in order into scope, recursing into
// nested constructs that introduce their own child scopes.
func (c *Collector) collectStmts(stmts []ast.Stmt, scope *symbols.Scope) {
	for _, s := range stmts {
		c.collectStmt(s, scope)
	}
}

func (c *Collector) collectStmt(s ast.Stmt, scope *symbols.Scope) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		c.collectVariable(n, scope, false)
	case *ast.ConstantDeclaration:
		c.collectConstant(n, scope)
	case *ast.FunctionDeclaration:
		c.collectFunction(n, scope, "")
	case *ast.ClassDeclaration:
		c.collectClass(n, scope)
	case *ast.Block:
		child := symbols.NewChild(scope, "block")
		c.scopeByNode[n] = child
		c.collectStmts(n.Statements, child)
	case *ast.If:
		c.collectBlockStmt(n.Then, scope)
		if n.Else != nil {
			c.collectBlockStmt(n.Else, scope)
		}
	case *ast.While:
		c.collectBlockStmt(n.Body, scope)
	case *ast.DoWhile:
		c.collectBlockStmt(n.Body, scope)
	case *ast.For:
		// for-loops get one scope housing the init statement plus the body,
		// so a `for (let i: integer = 0; ...)` counter is visible only to
		// this loop, matching block-scoped declarations elsewhere.
		loopScope := symbols.NewChild(scope, "for")
		c.scopeByNode[n] = loopScope
		if n.Init != nil {
			c.collectStmt(n.Init, loopScope)
		}
		bodyScope := symbols.NewChild(loopScope, "block")
		c.scopeByNode[n.Body] = bodyScope
		c.collectStmts(n.Body.Statements, bodyScope)
	case *ast.Foreach:
		loopScope := symbols.NewChild(scope, "foreach")
		c.scopeByNode[n] = loopScope
		loopScope.Define(&symbols.VariableSymbol{SymName: n.Identifier, SymType: types.Null{}, Initialized: true})
		bodyScope := symbols.NewChild(loopScope, "block")
		c.scopeByNode[n.Body] = bodyScope
		c.collectStmts(n.Body.Statements, bodyScope)
	case *ast.Switch:
		for _, sc := range n.Cases {
			child := symbols.NewChild(scope, "case")
			c.scopeByNode[sc] = child
			c.collectStmts(sc.Statements, child)
		}
		if n.Default != nil {
			child := symbols.NewChild(scope, "default")
			c.collectStmts(n.Default, child)
		}
	case *ast.TryCatch:
		c.collectBlockStmt(n.Body, scope)
		if n.Handler != nil {
			handlerScope := symbols.NewChild(scope, "catch")
			c.scopeByNode[n.Handler] = handlerScope
			handlerScope.Define(&symbols.VariableSymbol{SymName: n.CatchIdentier, SymType: types.Null{}, Initialized: true})
			c.collectStmts(n.Handler.Statements, handlerScope)
		}
	default:
		// Break, Continue, Return, Print, ExprStmt: leaves with no nested
		// scope and no declaration of their own.
	}
}

func (c *Collector) collectBlockStmt(b *ast.Block, parent *symbols.Scope) {
	if b == nil {
		return
	}
	child := symbols.NewChild(parent, "block")
	c.scopeByNode[b] = child
	c.collectStmts(b.Statements, child)
}

func (c *Collector) collectVariable(n *ast.VariableDeclaration, scope *symbols.Scope, fromParam bool) {
	sym := &symbols.VariableSymbol{
		SymName: n.Identifier,
		SymType: typeFromAnnotation(n.TypeAnnotation),
	}
	if !scope.Define(sym) {
		c.errs.Report(n.Line, n.Col, cerr.ERedeclared, "'%s' is already declared in this scope", n.Identifier)
	}
}

func (c *Collector) collectConstant(n *ast.ConstantDeclaration, scope *symbols.Scope) {
	sym := &symbols.VariableSymbol{
		SymName: n.Identifier,
		SymType: typeFromAnnotation(n.TypeAnnotation),
		IsConst: true,
	}
	if !scope.Define(sym) {
		c.errs.Report(n.Line, n.Col, cerr.ERedeclared, "'%s' is already declared in this scope", n.Identifier)
	}
}

// collectFunction declares a FunctionSymbol in scope, then enters a fresh
// function scope for its parameters and a nested block scope for its body
// locals (§4.3's "Function parameters"/"Locals in a function's body scope"
// are two distinct offset spaces, modeled here as two distinct scopes).
func (c *Collector) collectFunction(n *ast.FunctionDeclaration, scope *symbols.Scope, enclosingClass string) *symbols.FunctionSymbol {
	n.EnclosingClass = enclosingClass

	paramTypes := make([]types.Type, 0, len(n.Parameters))
	for _, p := range n.Parameters {
		paramTypes = append(paramTypes, typeFromAnnotation(p.TypeAnnotation))
	}
	fnType := types.Function{Params: paramTypes, Ret: typeFromAnnotation(n.ReturnType)}

	label := n.Identifier
	if enclosingClass != "" {
		label = enclosingClass + "_" + n.Identifier
	}

	fnSym := &symbols.FunctionSymbol{SymName: n.Identifier, SymType: fnType, Label: label}
	if !scope.Define(fnSym) {
		c.errs.Report(n.Line, n.Col, cerr.ERedeclared, "'%s' is already declared in this scope", n.Identifier)
	}

	fnScope := symbols.NewChild(scope, "fn:"+n.Identifier)
	c.scopeByNode[n] = fnScope

	for _, p := range n.Parameters {
		paramSym := &symbols.VariableSymbol{SymName: p.Identifier, SymType: typeFromAnnotation(p.TypeAnnotation), Initialized: true}
		if !fnScope.Define(paramSym) {
			c.errs.Report(p.Line, p.Col, cerr.ERedeclared, "duplicate parameter '%s'", p.Identifier)
		}
		fnSym.Params = append(fnSym.Params, paramSym)
	}

	if n.Body != nil {
		bodyScope := symbols.NewChild(fnScope, "body")
		c.scopeByNode[n.Body] = bodyScope
		c.collectStmts(n.Body.Statements, bodyScope)
	}

	c.assignFunctionOffsets(fnSym, fnScope)
	return fnSym
}

func (c *Collector) collectClass(n *ast.ClassDeclaration, scope *symbols.Scope) {
	classSym := &symbols.ClassSymbol{
		SymName:  n.Identifier,
		SymType:  types.Class{ClassName: n.Identifier},
		BaseName: n.BaseIdentifier,
	}
	if !scope.Define(classSym) {
		c.errs.Report(n.Line, n.Col, cerr.ERedeclared, "'%s' is already declared in this scope", n.Identifier)
	}
	c.classes[n.Identifier] = classSym
	c.classDecls[n.Identifier] = n

	classScope := symbols.NewChild(scope, "class:"+n.Identifier)
	c.scopeByNode[n] = classScope

	for _, member := range n.Members {
		switch {
		case member.Variable != nil:
			c.collectVariable(member.Variable, classScope, false)
			if f := classScope.ResolveLocal(member.Variable.Identifier); f != nil {
				classSym.Fields = append(classSym.Fields, &symbols.Field{
					Name: member.Variable.Identifier,
					Type: f.Type(),
				})
			}
		case member.Constant != nil:
			c.collectConstant(member.Constant, classScope)
			if f := classScope.ResolveLocal(member.Constant.Identifier); f != nil {
				classSym.Fields = append(classSym.Fields, &symbols.Field{
					Name: member.Constant.Identifier,
					Type: f.Type(),
				})
			}
		case member.Function != nil:
			fnSym := c.collectFunction(member.Function, classScope, n.Identifier)
			classSym.Methods = append(classSym.Methods, &symbols.Method{
				Name:      member.Function.Identifier,
				Type:      fnSym.SymType.(types.Function),
				ImplClass: n.Identifier,
			})
		}
	}
}
