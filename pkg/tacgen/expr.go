package tacgen

import (
	"github.com/compiscript/ccc/pkg/ast"
	"github.com/compiscript/ccc/pkg/symbols"
	"github.com/compiscript/ccc/pkg/tac"
	"github.com/compiscript/ccc/pkg/types"
)

func (g *Generator) genExpr(e ast.Expr) (tac.Operand, error) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return intConst(n.Value), nil
	case *ast.StringLiteral:
		return strConst(n.Value), nil
	case *ast.BooleanLiteral:
		return tac.BoolConst(n.Value, "boolean"), nil
	case *ast.NullLiteral:
		return tac.NullConst(g.exprTypeName(n)), nil
	case *ast.Paren:
		return g.genExpr(n.Inner)
	case *ast.Identifier:
		return g.identifierLoadOperand(n.Name, g.exprTypeName(n)), nil
	case *ast.This:
		return g.identifierLoadOperand("this", g.exprTypeName(n)), nil
	case *ast.ArrayLiteral:
		return g.genArrayLiteral(n)
	case *ast.UnaryOp:
		return g.genUnary(n)
	case *ast.BinaryOp:
		return g.genBinary(n)
	case *ast.Ternary:
		return g.genTernary(n)
	case *ast.Assignment:
		return g.genAssignment(n)
	case *ast.Index:
		return g.genIndex(n)
	case *ast.PropertyAccess:
		return g.genPropertyAccess(n)
	case *ast.Call:
		return g.genCall(n)
	case *ast.New:
		return g.genNew(n)
	default:
		return tac.Operand{}, g.fault(e, "unhandled expression type %T", e)
	}
}

func (g *Generator) genArrayLiteral(n *ast.ArrayLiteral) (tac.Operand, error) {
	result := g.prog.NewTemp(g.exprTypeName(n))
	size := intConst(int64(len(n.Elements)))
	g.prog.Emit(tac.NEW, &result, &size, nil)
	for i, el := range n.Elements {
		val, err := g.genExpr(el)
		if err != nil {
			return tac.Operand{}, err
		}
		idx := intConst(int64(i))
		g.prog.Emit(tac.ARRAY_ASSIGN, &result, &idx, &val)
		g.prog.FreeTemp(val)
	}
	return result, nil
}

func (g *Generator) genUnary(n *ast.UnaryOp) (tac.Operand, error) {
	operand, err := g.genExpr(n.Operand)
	if err != nil {
		return tac.Operand{}, err
	}
	result := g.prog.NewTemp(g.exprTypeName(n))
	switch n.Op {
	case "!":
		g.prog.Emit(tac.NOT, &result, &operand, nil)
	case "-":
		g.prog.Emit(tac.NEG, &result, &operand, nil)
	default:
		return tac.Operand{}, g.fault(n, "unknown unary operator %q", n.Op)
	}
	g.prog.FreeTemp(operand)
	return result, nil
}

func (g *Generator) genBinary(n *ast.BinaryOp) (tac.Operand, error) {
	switch n.Op {
	case "&&":
		return g.genLogicalAnd(n)
	case "||":
		return g.genLogicalOr(n)
	default:
		return g.genArithmetic(n)
	}
}

// genLogicalOr short-circuits: if the left operand is true, the right is
// never evaluated (§4.1's boolean operators are short-circuiting).
func (g *Generator) genLogicalOr(n *ast.BinaryOp) (tac.Operand, error) {
	left, err := g.genExpr(n.Left)
	if err != nil {
		return tac.Operand{}, err
	}
	result := g.prog.NewTemp("boolean")
	trueLabel := g.prog.NewLabel()
	endLabel := g.prog.NewLabel()

	g.prog.Emit(tac.IF_TRUE, nil, &left, &trueLabel)
	g.prog.FreeTemp(left)

	right, err := g.genExpr(n.Right)
	if err != nil {
		return tac.Operand{}, err
	}
	g.prog.Emit(tac.ASSIGN, &result, &right, nil)
	g.prog.Emit(tac.GOTO, nil, &endLabel, nil)

	g.prog.EmitLabel(trueLabel)
	trueConst := tac.BoolConst(true, "boolean")
	g.prog.Emit(tac.ASSIGN, &result, &trueConst, nil)

	g.prog.EmitLabel(endLabel)
	g.prog.FreeTemp(right)
	return result, nil
}

func (g *Generator) genLogicalAnd(n *ast.BinaryOp) (tac.Operand, error) {
	left, err := g.genExpr(n.Left)
	if err != nil {
		return tac.Operand{}, err
	}
	result := g.prog.NewTemp("boolean")
	falseLabel := g.prog.NewLabel()
	endLabel := g.prog.NewLabel()

	g.prog.Emit(tac.IF_FALSE, nil, &left, &falseLabel)
	g.prog.FreeTemp(left)

	right, err := g.genExpr(n.Right)
	if err != nil {
		return tac.Operand{}, err
	}
	g.prog.Emit(tac.ASSIGN, &result, &right, nil)
	g.prog.Emit(tac.GOTO, nil, &endLabel, nil)

	g.prog.EmitLabel(falseLabel)
	falseConst := tac.BoolConst(false, "boolean")
	g.prog.Emit(tac.ASSIGN, &result, &falseConst, nil)

	g.prog.EmitLabel(endLabel)
	g.prog.FreeTemp(right)
	return result, nil
}

var binaryOps = map[string]tac.Op{
	"+": tac.ADD, "-": tac.SUB, "*": tac.MUL, "/": tac.DIV, "%": tac.MOD,
	"<": tac.LT, "<=": tac.LE, ">": tac.GT, ">=": tac.GE,
	"==": tac.EQ, "!=": tac.NE,
}

func (g *Generator) genArithmetic(n *ast.BinaryOp) (tac.Operand, error) {
	left, err := g.genExpr(n.Left)
	if err != nil {
		return tac.Operand{}, err
	}
	right, err := g.genExpr(n.Right)
	if err != nil {
		g.prog.FreeTemp(left)
		return tac.Operand{}, err
	}
	op, ok := binaryOps[n.Op]
	if !ok {
		return tac.Operand{}, g.fault(n, "unknown binary operator %q", n.Op)
	}
	result := g.prog.NewTemp(g.exprTypeName(n))
	g.prog.Emit(op, &result, &left, &right)
	g.prog.FreeTemp(left)
	g.prog.FreeTemp(right)
	return result, nil
}

func (g *Generator) genTernary(n *ast.Ternary) (tac.Operand, error) {
	cond, err := g.genExpr(n.Cond)
	if err != nil {
		return tac.Operand{}, err
	}
	result := g.prog.NewTemp(g.exprTypeName(n))
	elseLabel := g.prog.NewLabel()
	endLabel := g.prog.NewLabel()

	g.prog.Emit(tac.IF_FALSE, nil, &cond, &elseLabel)
	g.prog.FreeTemp(cond)

	thenVal, err := g.genExpr(n.Then)
	if err != nil {
		return tac.Operand{}, err
	}
	g.prog.Emit(tac.ASSIGN, &result, &thenVal, nil)
	g.prog.FreeTemp(thenVal)
	g.prog.Emit(tac.GOTO, nil, &endLabel, nil)

	g.prog.EmitLabel(elseLabel)
	elseVal, err := g.genExpr(n.Else)
	if err != nil {
		return tac.Operand{}, err
	}
	g.prog.Emit(tac.ASSIGN, &result, &elseVal, nil)
	g.prog.FreeTemp(elseVal)

	g.prog.EmitLabel(endLabel)
	return result, nil
}

func (g *Generator) genAssignment(n *ast.Assignment) (tac.Operand, error) {
	switch target := n.Target.(type) {
	case *ast.Identifier:
		val, err := g.genExpr(n.Value)
		if err != nil {
			return tac.Operand{}, err
		}
		typ := g.symbolTypeName(target.Name, n.Value)
		dst := g.identifierStoreOperand(target.Name, typ)
		g.prog.Emit(tac.ASSIGN, &dst, &val, nil)
		return val, nil

	case *ast.PropertyAccess:
		obj, err := g.genExpr(target.Base)
		if err != nil {
			return tac.Operand{}, err
		}
		val, err := g.genExpr(n.Value)
		if err != nil {
			g.prog.FreeTemp(obj)
			return tac.Operand{}, err
		}
		offset, _, ok := g.resolveField(g.exprType(target.Base), target.Identifier)
		if !ok {
			return tac.Operand{}, g.fault(target, "unknown field '%s'", target.Identifier)
		}
		offsetConst := intConst(int64(offset))
		g.prog.Emit(tac.FIELD_ASSIGN, &obj, &offsetConst, &val)
		g.prog.FreeTemp(obj)
		return val, nil

	case *ast.Index:
		arr, err := g.genExpr(target.Base)
		if err != nil {
			return tac.Operand{}, err
		}
		idx, err := g.genExpr(target.Index)
		if err != nil {
			g.prog.FreeTemp(arr)
			return tac.Operand{}, err
		}
		val, err := g.genExpr(n.Value)
		if err != nil {
			g.prog.FreeTemp(arr)
			g.prog.FreeTemp(idx)
			return tac.Operand{}, err
		}
		g.prog.Emit(tac.ARRAY_ASSIGN, &arr, &idx, &val)
		g.prog.FreeTemp(arr)
		g.prog.FreeTemp(idx)
		return val, nil

	default:
		return tac.Operand{}, g.fault(n, "unsupported assignment target %T", n.Target)
	}
}

func (g *Generator) genIndex(n *ast.Index) (tac.Operand, error) {
	arr, err := g.genExpr(n.Base)
	if err != nil {
		return tac.Operand{}, err
	}
	idx, err := g.genExpr(n.Index)
	if err != nil {
		g.prog.FreeTemp(arr)
		return tac.Operand{}, err
	}
	result := g.prog.NewTemp(g.exprTypeName(n))
	g.prog.Emit(tac.ARRAY_ACCESS, &result, &arr, &idx)
	g.prog.FreeTemp(arr)
	g.prog.FreeTemp(idx)
	return result, nil
}

// resolveField looks up a field by name on baseType's class, returning its
// byte offset and declared type. ClassSymbol.FieldOffset/Field already walk
// the base chain themselves.
func (g *Generator) resolveField(baseType types.Type, name string) (offset int, typ types.Type, ok bool) {
	cls, isClass := baseType.(types.Class)
	if !isClass {
		return 0, nil, false
	}
	classSym := g.classes[cls.ClassName]
	if classSym == nil {
		return 0, nil, false
	}
	off, found := classSym.FieldOffset(name)
	if !found {
		return 0, nil, false
	}
	for cur := classSym; cur != nil; cur = cur.Base {
		if f := cur.Field(name); f != nil {
			return off, f.Type, true
		}
	}
	return off, nil, false
}

func (g *Generator) genPropertyAccess(n *ast.PropertyAccess) (tac.Operand, error) {
	obj, err := g.genExpr(n.Base)
	if err != nil {
		return tac.Operand{}, err
	}
	baseType := g.exprType(n.Base)

	if _, isArray := baseType.(types.Array); isArray && n.Identifier == "length" {
		result := g.prog.NewTemp("integer")
		prop := strConst("length")
		g.prog.Emit(tac.FIELD_ACCESS, &result, &obj, &prop)
		g.lastMethodObj = &obj
		return result, nil
	}

	cls, isClass := baseType.(types.Class)
	if !isClass {
		return tac.Operand{}, g.fault(n, "property access on non-class type")
	}
	classSym := g.classes[cls.ClassName]
	if classSym == nil {
		return tac.Operand{}, g.fault(n, "unknown class '%s'", cls.ClassName)
	}

	if method, ok := classSym.ResolveMethod(n.Identifier); ok {
		result := g.prog.NewTemp(typeName(method.Type.Ret))
		prop := strConst(n.Identifier)
		g.prog.Emit(tac.FIELD_ACCESS, &result, &obj, &prop)
		g.lastMethodObj = &obj
		return result, nil
	}

	if offset, fieldTyp, ok := g.resolveField(baseType, n.Identifier); ok {
		result := g.prog.NewTemp(typeName(fieldTyp))
		offsetConst := intConst(int64(offset))
		g.prog.Emit(tac.FIELD_ACCESS, &result, &obj, &offsetConst)
		g.lastMethodObj = &obj
		return result, nil
	}

	return tac.Operand{}, g.fault(n, "unknown member '%s' on class '%s'", n.Identifier, cls.ClassName)
}

// genCallee evaluates a call's callee: a bare reference to a declared
// function or method resolves directly to its label (a direct `jal`),
// while anything else (a property access, already evaluated through
// genPropertyAccess and tracked via lastMethodObj) is a plain value
// expression yielding an indirect call target.
func (g *Generator) genCallee(e ast.Expr) (tac.Operand, error) {
	if id, ok := e.(*ast.Identifier); ok {
		if fnSym, ok := g.scope.Resolve(id.Name).(*symbols.FunctionSymbol); ok {
			return tac.Name(fnSym.Label, ""), nil
		}
	}
	return g.genExpr(e)
}

func (g *Generator) genCall(n *ast.Call) (tac.Operand, error) {
	funcOp, err := g.genCallee(n.Callee)
	if err != nil {
		return tac.Operand{}, err
	}
	// The receiver belongs to the callee's own property access; take it
	// before the arguments run property accesses or calls of their own.
	receiver := g.lastMethodObj
	g.lastMethodObj = nil

	argVals := make([]tac.Operand, len(n.Args))
	for i, a := range n.Args {
		v, err := g.genExpr(a)
		if err != nil {
			return tac.Operand{}, err
		}
		argVals[i] = v
	}
	for i := len(argVals) - 1; i >= 0; i-- {
		g.prog.Emit(tac.PUSH, nil, &argVals[i], nil)
	}
	numArgs := len(argVals)

	// A method call is a temp-valued callee (loaded via FIELD_ACCESS) whose
	// property access recorded a receiver: push the receiver as the
	// implicit final argument. last_method_obj is cleared unconditionally
	// after any call, whether or not it was consumed here.
	isMethodCall := funcOp.IsTemp && receiver != nil
	var objToFree *tac.Operand
	if isMethodCall {
		g.prog.Emit(tac.PUSH, nil, receiver, nil)
		numArgs++
		objToFree = receiver
	}
	g.lastMethodObj = nil

	numArgsOp := intConst(int64(numArgs))
	result := g.prog.NewTemp(g.exprTypeName(n))
	g.prog.Emit(tac.CALL, &result, &funcOp, &numArgsOp)

	if numArgs > 0 {
		bytes := intConst(int64(numArgs * 4))
		g.prog.Emit(tac.ADD_SP, nil, &bytes, nil)
	}
	for _, v := range argVals {
		g.prog.FreeTemp(v)
	}
	if objToFree != nil {
		g.prog.FreeTemp(*objToFree)
	}
	return result, nil
}

func (g *Generator) genNew(n *ast.New) (tac.Operand, error) {
	classSym := g.classes[n.ClassName]
	if classSym == nil {
		return tac.Operand{}, g.fault(n, "unknown class '%s'", n.ClassName)
	}
	obj := g.prog.NewTemp(g.exprTypeName(n))
	classOp := tac.Name(n.ClassName, "")
	g.prog.Emit(tac.NEW, &obj, &classOp, nil)

	argVals := make([]tac.Operand, len(n.Args))
	for i, a := range n.Args {
		v, err := g.genExpr(a)
		if err != nil {
			return tac.Operand{}, err
		}
		argVals[i] = v
	}

	ctor, hasCtor := classSym.ResolveMethod("constructor")
	if !hasCtor {
		for _, v := range argVals {
			g.prog.FreeTemp(v)
		}
		return obj, nil
	}

	for i := len(argVals) - 1; i >= 0; i-- {
		g.prog.Emit(tac.PUSH, nil, &argVals[i], nil)
	}
	g.prog.Emit(tac.PUSH, nil, &obj, nil)
	numArgs := len(argVals) + 1
	ctorOp := tac.Name(ctor.ImplClass+"_constructor", "")
	numArgsOp := intConst(int64(numArgs))
	g.prog.Emit(tac.CALL, nil, &ctorOp, &numArgsOp)
	bytes := intConst(int64(numArgs * 4))
	g.prog.Emit(tac.ADD_SP, nil, &bytes, nil)
	for _, v := range argVals {
		g.prog.FreeTemp(v)
	}
	return obj, nil
}
