package tacgen

import (
	"github.com/compiscript/ccc/pkg/ast"
	"github.com/compiscript/ccc/pkg/symbols"
	"github.com/compiscript/ccc/pkg/tac"
)

func (g *Generator) genStmts(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := g.genStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) genStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		return g.genVariableDecl(n)
	case *ast.ConstantDeclaration:
		return g.genConstantDecl(n)
	case *ast.FunctionDeclaration:
		return g.genFunctionDecl(n, "")
	case *ast.ClassDeclaration:
		return g.genClassDecl(n)
	case *ast.Block:
		return g.genBlock(n)
	case *ast.If:
		return g.genIf(n)
	case *ast.While:
		return g.genWhile(n)
	case *ast.DoWhile:
		return g.genDoWhile(n)
	case *ast.For:
		return g.genFor(n)
	case *ast.Foreach:
		return g.genForeach(n)
	case *ast.Switch:
		return g.genSwitch(n)
	case *ast.Break:
		return g.genBreak(n)
	case *ast.Continue:
		return g.genContinue(n)
	case *ast.Return:
		return g.genReturn(n)
	case *ast.Print:
		return g.genPrint(n)
	case *ast.TryCatch:
		return g.genTryCatch(n)
	case *ast.ExprStmt:
		val, err := g.genExpr(n.Expression)
		if err != nil {
			return err
		}
		g.prog.FreeTemp(val)
		return nil
	default:
		return g.fault(s, "unhandled statement type %T", s)
	}
}

func (g *Generator) genVariableDecl(n *ast.VariableDeclaration) error {
	if n.Initializer == nil {
		return nil
	}
	val, err := g.genExpr(n.Initializer)
	if err != nil {
		return err
	}
	typ := g.symbolTypeName(n.Identifier, n.Initializer)
	target := g.identifierStoreOperand(n.Identifier, typ)
	g.prog.Emit(tac.ASSIGN, &target, &val, nil)
	g.prog.FreeTemp(val)
	return nil
}

func (g *Generator) genConstantDecl(n *ast.ConstantDeclaration) error {
	val, err := g.genExpr(n.Expression)
	if err != nil {
		return err
	}
	typ := g.symbolTypeName(n.Identifier, n.Expression)
	target := g.identifierStoreOperand(n.Identifier, typ)
	g.prog.Emit(tac.ASSIGN, &target, &val, nil)
	g.prog.FreeTemp(val)
	return nil
}

// symbolTypeName prefers the declared symbol's type (set during Pass 2's
// inference when the annotation was omitted) and falls back to the
// initializer expression's type if the symbol can't be resolved.
func (g *Generator) symbolTypeName(name string, fallback ast.Expr) string {
	if sym := g.resolveVar(name); sym != nil {
		return typeName(sym.SymType)
	}
	return g.exprTypeName(fallback)
}

func (g *Generator) genBlock(n *ast.Block) error {
	if err := g.enterScope(n); err != nil {
		return err
	}
	err := g.genStmts(n.Statements)
	g.exitScope()
	return err
}

func (g *Generator) genIf(n *ast.If) error {
	cond, err := g.genExpr(n.Condition)
	if err != nil {
		return err
	}
	elseLabel := g.prog.NewLabel()
	endLabel := g.prog.NewLabel()

	hasElse := n.Else != nil
	target := endLabel
	if hasElse {
		target = elseLabel
	}
	g.prog.Emit(tac.IF_FALSE, nil, &cond, &target)
	g.prog.FreeTemp(cond)

	if err := g.enterScope(n.Then); err != nil {
		return err
	}
	err = g.genStmts(n.Then.Statements)
	g.exitScope()
	if err != nil {
		return err
	}

	if hasElse {
		g.prog.Emit(tac.GOTO, nil, &endLabel, nil)
		g.prog.EmitLabel(elseLabel)
		if err := g.enterScope(n.Else); err != nil {
			return err
		}
		err = g.genStmts(n.Else.Statements)
		g.exitScope()
		if err != nil {
			return err
		}
	}

	g.prog.EmitLabel(endLabel)
	return nil
}

func (g *Generator) genWhile(n *ast.While) error {
	startLabel := g.prog.NewLabel()
	endLabel := g.prog.NewLabel()
	g.pushLoop(startLabel, endLabel) // a plain while has no separate continue target

	g.prog.EmitLabel(startLabel)
	cond, err := g.genExpr(n.Condition)
	if err != nil {
		return err
	}
	g.prog.Emit(tac.IF_FALSE, nil, &cond, &endLabel)

	if err := g.enterScope(n.Body); err != nil {
		return err
	}
	err = g.genStmts(n.Body.Statements)
	g.exitScope()
	if err != nil {
		return err
	}
	g.prog.Emit(tac.GOTO, nil, &startLabel, nil)
	g.prog.EmitLabel(endLabel)

	g.popLoop()
	g.prog.FreeTemp(cond)
	return nil
}

func (g *Generator) genDoWhile(n *ast.DoWhile) error {
	startLabel := g.prog.NewLabel()
	continueLabel := g.prog.NewLabel()
	endLabel := g.prog.NewLabel()
	g.pushLoop(continueLabel, endLabel)

	g.prog.EmitLabel(startLabel)
	if err := g.enterScope(n.Body); err != nil {
		return err
	}
	err := g.genStmts(n.Body.Statements)
	g.exitScope()
	if err != nil {
		return err
	}

	g.prog.EmitLabel(continueLabel)
	cond, err := g.genExpr(n.Condition)
	if err != nil {
		return err
	}
	g.prog.Emit(tac.IF_TRUE, nil, &cond, &startLabel)
	g.prog.EmitLabel(endLabel)

	g.popLoop()
	g.prog.FreeTemp(cond)
	return nil
}

func (g *Generator) genFor(n *ast.For) error {
	if err := g.enterScope(n); err != nil {
		return err
	}
	if n.Init != nil {
		if err := g.genStmt(n.Init); err != nil {
			g.exitScope()
			return err
		}
	}

	startLabel := g.prog.NewLabel()
	continueLabel := g.prog.NewLabel()
	endLabel := g.prog.NewLabel()
	g.pushLoop(continueLabel, endLabel)

	g.prog.EmitLabel(startLabel)
	var cond *tac.Operand
	if n.Cond != nil {
		c, err := g.genExpr(n.Cond)
		if err != nil {
			g.popLoop()
			g.exitScope()
			return err
		}
		cond = &c
		g.prog.Emit(tac.IF_FALSE, nil, cond, &endLabel)
	}

	bodyErr := g.enterScope(n.Body)
	if bodyErr == nil {
		bodyErr = g.genStmts(n.Body.Statements)
		g.exitScope()
	}
	if bodyErr != nil {
		g.popLoop()
		g.exitScope()
		return bodyErr
	}

	g.prog.EmitLabel(continueLabel)
	if n.Update != nil {
		if err := g.genStmt(n.Update); err != nil {
			g.popLoop()
			g.exitScope()
			return err
		}
	}
	g.prog.Emit(tac.GOTO, nil, &startLabel, nil)
	g.prog.EmitLabel(endLabel)

	g.popLoop()
	if cond != nil {
		g.prog.FreeTemp(*cond)
	}
	g.exitScope()
	return nil
}

func (g *Generator) genForeach(n *ast.Foreach) error {
	array, err := g.genExpr(n.Iterable)
	if err != nil {
		return err
	}
	if err := g.enterScope(n); err != nil {
		return err
	}

	indexTemp := g.prog.NewTemp("integer")
	lengthTemp := g.prog.NewTemp("integer")
	zero := intConst(0)
	g.prog.Emit(tac.ASSIGN, &indexTemp, &zero, nil)
	lengthProp := strConst("length")
	g.prog.Emit(tac.FIELD_ACCESS, &lengthTemp, &array, &lengthProp)

	startLabel := g.prog.NewLabel()
	continueLabel := g.prog.NewLabel()
	endLabel := g.prog.NewLabel()
	g.pushLoop(continueLabel, endLabel)

	g.prog.EmitLabel(startLabel)
	cmpExit := g.prog.NewTemp("boolean")
	g.prog.Emit(tac.GE, &cmpExit, &indexTemp, &lengthTemp)
	g.prog.Emit(tac.IF_TRUE, nil, &cmpExit, &endLabel)
	g.prog.FreeTemp(cmpExit)

	elemTyp := g.exprTypeName(n.Iterable)
	if elemTyp != "" && len(elemTyp) > 2 && elemTyp[len(elemTyp)-2:] == "[]" {
		elemTyp = elemTyp[:len(elemTyp)-2]
	}
	target := g.identifierStoreOperand(n.Identifier, elemTyp)
	g.prog.Emit(tac.ARRAY_ACCESS, &target, &array, &indexTemp)

	if err := g.enterScope(n.Body); err != nil {
		g.popLoop()
		g.exitScope()
		return err
	}
	err = g.genStmts(n.Body.Statements)
	g.exitScope()
	if err != nil {
		g.popLoop()
		g.exitScope()
		return err
	}

	g.prog.EmitLabel(continueLabel)
	one := intConst(1)
	g.prog.Emit(tac.ADD, &indexTemp, &indexTemp, &one)
	g.prog.Emit(tac.GOTO, nil, &startLabel, nil)
	g.prog.EmitLabel(endLabel)

	g.popLoop()
	g.exitScope()
	return nil
}

func (g *Generator) genSwitch(n *ast.Switch) error {
	selector, err := g.genExpr(n.Selector)
	if err != nil {
		return err
	}

	endLabel := g.prog.NewLabel()
	g.switchStack = append(g.switchStack, endLabel)

	caseLabels := make([]tac.Operand, len(n.Cases))
	for i := range n.Cases {
		caseLabels[i] = g.prog.NewLabel()
	}
	hasDefault := n.Default != nil
	defaultLabel := endLabel
	if hasDefault {
		defaultLabel = g.prog.NewLabel()
	}

	for i, c := range n.Cases {
		caseVal, err := g.genExpr(c.Expr)
		if err != nil {
			g.switchStack = g.switchStack[:len(g.switchStack)-1]
			return err
		}
		cmp := g.prog.NewTemp("boolean")
		g.prog.Emit(tac.EQ, &cmp, &selector, &caseVal)
		g.prog.Emit(tac.IF_TRUE, nil, &cmp, &caseLabels[i])
		g.prog.FreeTemp(cmp)
		g.prog.FreeTemp(caseVal)
	}
	g.prog.Emit(tac.GOTO, nil, &defaultLabel, nil)

	for i, c := range n.Cases {
		g.prog.EmitLabel(caseLabels[i])
		caseScope, err := g.childScope(c)
		if err != nil {
			g.switchStack = g.switchStack[:len(g.switchStack)-1]
			return err
		}
		old := g.scope
		g.scope = caseScope
		err = g.genStmts(c.Statements)
		g.scope = old
		if err != nil {
			g.switchStack = g.switchStack[:len(g.switchStack)-1]
			return err
		}
	}

	if hasDefault {
		g.prog.EmitLabel(defaultLabel)
		if err := g.genStmts(n.Default); err != nil {
			g.switchStack = g.switchStack[:len(g.switchStack)-1]
			return err
		}
	}

	g.prog.EmitLabel(endLabel)
	g.switchStack = g.switchStack[:len(g.switchStack)-1]
	g.prog.FreeTemp(selector)
	return nil
}

func (g *Generator) genBreak(n *ast.Break) error {
	if len(g.switchStack) > 0 {
		target := g.switchStack[len(g.switchStack)-1]
		g.prog.Emit(tac.GOTO, nil, &target, nil)
		return nil
	}
	if len(g.loopStack) > 0 {
		target := g.loopStack[len(g.loopStack)-1].breakLabel
		g.prog.Emit(tac.GOTO, nil, &target, nil)
	}
	return nil
}

func (g *Generator) genContinue(n *ast.Continue) error {
	if len(g.loopStack) > 0 {
		target := g.loopStack[len(g.loopStack)-1].continueLabel
		g.prog.Emit(tac.GOTO, nil, &target, nil)
	}
	return nil
}

func (g *Generator) genReturn(n *ast.Return) error {
	if n.Expression == nil {
		g.prog.Emit(tac.RETURN, nil, nil, nil)
		return nil
	}
	val, err := g.genExpr(n.Expression)
	if err != nil {
		return err
	}
	g.prog.Emit(tac.RETURN, nil, &val, nil)
	g.prog.FreeTemp(val)
	return nil
}

func (g *Generator) genPrint(n *ast.Print) error {
	val, err := g.genExpr(n.Expression)
	if err != nil {
		return err
	}
	if val.Typ == "" {
		val.Typ = g.exprTypeName(n.Expression)
	}
	g.prog.Emit(tac.PRINT, nil, &val, nil)
	g.prog.FreeTemp(val)
	return nil
}

// genTryCatch lowers the try body and falls straight through to end,
// matching ast.TryCatch's documented contract: the handler is unreachable
// at runtime and is emitted only so a golden TAC dump round-trips the
// catch variable's declaration.
func (g *Generator) genTryCatch(n *ast.TryCatch) error {
	catchLabel := g.prog.NewLabel()
	endLabel := g.prog.NewLabel()

	if err := g.enterScope(n.Body); err != nil {
		return err
	}
	err := g.genStmts(n.Body.Statements)
	g.exitScope()
	if err != nil {
		return err
	}
	g.prog.Emit(tac.GOTO, nil, &endLabel, nil)

	g.prog.EmitLabel(catchLabel)
	if n.Handler != nil {
		if err := g.enterScope(n.Handler); err != nil {
			return err
		}
		err = g.genStmts(n.Handler.Statements)
		g.exitScope()
		if err != nil {
			return err
		}
	}
	g.prog.EmitLabel(endLabel)
	return nil
}

func (g *Generator) pushLoop(continueLabel, breakLabel tac.Operand) {
	g.loopStack = append(g.loopStack, loopLabels{continueLabel: continueLabel, breakLabel: breakLabel})
}

func (g *Generator) popLoop() {
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
}

func (g *Generator) genFunctionDecl(fn *ast.FunctionDeclaration, enclosingClass string) error {
	fnSym, _ := g.scope.ResolveLocal(fn.Identifier).(*symbols.FunctionSymbol)
	if fnSym == nil {
		return g.fault(fn, "function symbol not found for '%s'", fn.Identifier)
	}

	funcOp := tac.Name(fnSym.Label, "")
	g.prog.Emit(tac.FUNC_START, nil, &funcOp, nil)
	frameOp := intConst(int64(fnSym.FrameSize))
	g.prog.Emit(tac.ENTER, nil, &frameOp, nil)

	oldClass := g.currentClass
	if enclosingClass != "" {
		g.currentClass = enclosingClass
	}

	err := g.enterScope(fn)
	if err == nil && fn.Body != nil {
		if err = g.enterScope(fn.Body); err == nil {
			err = g.genStmts(fn.Body.Statements)
			g.exitScope()
		}
	}
	g.exitScope()
	g.currentClass = oldClass
	if err != nil {
		return err
	}

	g.prog.Emit(tac.LEAVE, nil, nil, nil)
	g.prog.Emit(tac.FUNC_END, nil, &funcOp, nil)
	return nil
}

func (g *Generator) genClassDecl(n *ast.ClassDeclaration) error {
	classScope, err := g.childScope(n)
	if err != nil {
		return err
	}
	old := g.scope
	g.scope = classScope
	for _, m := range n.Members {
		if m.Function == nil {
			continue
		}
		if err := g.genFunctionDecl(m.Function, n.Identifier); err != nil {
			g.scope = old
			return err
		}
	}
	g.scope = old
	return nil
}
