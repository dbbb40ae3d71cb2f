package typecheck

import (
	"github.com/compiscript/ccc/pkg/ast"
	"github.com/compiscript/ccc/pkg/cerr"
	"github.com/compiscript/ccc/pkg/symbols"
	"github.com/compiscript/ccc/pkg/types"
)

// checkExpr infers e's type, attaches it to typeByNode, and returns it. On a
// rule violation it reports the corresponding error; where the violation
// leaves no usable type it returns types.Null{} as a poison value so a single mistake doesn't cascade into an
// unbounded chain of unrelated follow-on errors.
func (c *Checker) checkExpr(e ast.Expr, scope *symbols.Scope) types.Type {
	t := c.inferExpr(e, scope)
	c.typeByNode[e] = t
	return t
}

func (c *Checker) inferExpr(e ast.Expr, scope *symbols.Scope) types.Type {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return types.Integer{}
	case *ast.StringLiteral:
		return types.String{}
	case *ast.BooleanLiteral:
		return types.Boolean{}
	case *ast.NullLiteral:
		return types.Null{}
	case *ast.Paren:
		return c.checkExpr(n.Inner, scope)
	case *ast.Identifier:
		return c.checkIdentifier(n, scope)
	case *ast.This:
		return c.checkThis(n, scope)
	case *ast.ArrayLiteral:
		return c.checkArrayLiteral(n, scope)
	case *ast.UnaryOp:
		return c.checkUnary(n, scope)
	case *ast.BinaryOp:
		return c.checkBinary(n, scope)
	case *ast.Ternary:
		return c.checkTernary(n, scope)
	case *ast.Assignment:
		return c.checkAssignment(n, scope)
	case *ast.Index:
		return c.checkIndex(n, scope)
	case *ast.PropertyAccess:
		return c.checkPropertyAccess(n, scope)
	case *ast.Call:
		return c.checkCall(n, scope)
	case *ast.New:
		return c.checkNew(n, scope)
	}
	return types.Null{}
}

func (c *Checker) checkIdentifier(n *ast.Identifier, scope *symbols.Scope) types.Type {
	sym := scope.Resolve(n.Name)
	if sym == nil {
		c.errs.Report(n.Line, n.Col, cerr.EUndeclared, "undeclared identifier '%s'", n.Name)
		return types.Null{}
	}
	return sym.Type()
}

func (c *Checker) checkThis(n *ast.This, scope *symbols.Scope) types.Type {
	sym := scope.Resolve("this")
	if sym == nil {
		c.errs.Report(n.Line, n.Col, cerr.EThisOutside, "'this' used outside a method")
		return types.Null{}
	}
	return sym.Type()
}

func (c *Checker) checkArrayLiteral(n *ast.ArrayLiteral, scope *symbols.Scope) types.Type {
	if len(n.Elements) == 0 {
		return types.Array{Elem: types.Null{}}
	}
	elemType := c.checkExpr(n.Elements[0], scope)
	for _, el := range n.Elements[1:] {
		t := c.checkExpr(el, scope)
		if types.Equal(t, elemType) {
			continue
		}
		if _, isNull := elemType.(types.Null); isNull {
			elemType = t
			continue
		}
		if _, isNull := t.(types.Null); isNull {
			continue
		}
		if types.Assignable(t, elemType) || types.Assignable(elemType, t) {
			continue
		}
		l, col := el.Position()
		c.errs.Report(l, col, cerr.EHeterogeneousArray, "array literal mixes %s and %s elements", elemType.Name(), t.Name())
	}
	return types.Array{Elem: elemType}
}

func (c *Checker) checkUnary(n *ast.UnaryOp, scope *symbols.Scope) types.Type {
	operand := c.checkExpr(n.Operand, scope)
	switch n.Op {
	case "-":
		if _, ok := operand.(types.Integer); !ok {
			c.errs.Report(n.Line, n.Col, cerr.EOperatorType, "unary '-' requires an integer operand, got %s", operand.Name())
			return types.Null{}
		}
		return types.Integer{}
	case "!":
		if _, ok := operand.(types.Boolean); !ok {
			c.errs.Report(n.Line, n.Col, cerr.EOperatorType, "unary '!' requires a boolean operand, got %s", operand.Name())
			return types.Null{}
		}
		return types.Boolean{}
	}
	return types.Null{}
}

func (c *Checker) checkBinary(n *ast.BinaryOp, scope *symbols.Scope) types.Type {
	left := c.checkExpr(n.Left, scope)
	right := c.checkExpr(n.Right, scope)
	_, leftInt := left.(types.Integer)
	_, rightInt := right.(types.Integer)
	_, leftStr := left.(types.String)
	_, rightStr := right.(types.String)
	_, leftBool := left.(types.Boolean)
	_, rightBool := right.(types.Boolean)

	switch n.Op {
	case "+":
		if leftInt && rightInt {
			return types.Integer{}
		}
		if leftStr && rightStr {
			return types.String{}
		}
		c.errs.Report(n.Line, n.Col, cerr.EOperatorType, "'+' requires two integers or two strings, got %s and %s", left.Name(), right.Name())
		return types.Null{}
	case "-", "*", "/", "%":
		if leftInt && rightInt {
			return types.Integer{}
		}
		c.errs.Report(n.Line, n.Col, cerr.EOperatorType, "'%s' requires two integer operands, got %s and %s", n.Op, left.Name(), right.Name())
		return types.Null{}
	case "<", "<=", ">", ">=":
		if leftInt && rightInt {
			return types.Boolean{}
		}
		c.errs.Report(n.Line, n.Col, cerr.EOperatorType, "'%s' requires two integer operands, got %s and %s", n.Op, left.Name(), right.Name())
		return types.Null{}
	case "==", "!=":
		if !types.EqCompatible(left, right) {
			c.errs.Report(n.Line, n.Col, cerr.EOperatorType, "'%s' requires compatible operand types, got %s and %s", n.Op, left.Name(), right.Name())
			return types.Null{}
		}
		return types.Boolean{}
	case "&&", "||":
		if leftBool && rightBool {
			return types.Boolean{}
		}
		c.errs.Report(n.Line, n.Col, cerr.EOperatorType, "'%s' requires two boolean operands, got %s and %s", n.Op, left.Name(), right.Name())
		return types.Null{}
	}
	return types.Null{}
}

func (c *Checker) checkTernary(n *ast.Ternary, scope *symbols.Scope) types.Type {
	condType := c.checkExpr(n.Cond, scope)
	if !isBoolean(condType) {
		l, col := n.Cond.Position()
		c.errs.Report(l, col, cerr.ENonBooleanCond, "ternary condition must be boolean, got %s", condType.Name())
	}
	thenType := c.checkExpr(n.Then, scope)
	elseType := c.checkExpr(n.Else, scope)
	if types.Equal(thenType, elseType) {
		return thenType
	}
	if _, isNull := thenType.(types.Null); isNull {
		return elseType
	}
	if _, isNull := elseType.(types.Null); isNull {
		return thenType
	}
	if types.Assignable(elseType, thenType) {
		return thenType
	}
	if types.Assignable(thenType, elseType) {
		return elseType
	}
	c.errs.Report(n.Line, n.Col, cerr.ETernaryType, "ternary branches have incompatible types %s and %s", thenType.Name(), elseType.Name())
	return types.Null{}
}

// resolveAssignTarget computes the declared type a valid assignment target
// currently holds, reporting E006 if target isn't an identifier, property
// access or index expression.
func (c *Checker) resolveAssignTarget(target ast.Expr, scope *symbols.Scope) (types.Type, bool) {
	switch n := target.(type) {
	case *ast.Identifier:
		sym := scope.Resolve(n.Name)
		if sym == nil {
			c.errs.Report(n.Line, n.Col, cerr.EUndeclared, "undeclared identifier '%s'", n.Name)
			return types.Null{}, false
		}
		v, ok := sym.(*symbols.VariableSymbol)
		if !ok {
			c.errs.Report(n.Line, n.Col, cerr.EInvalidTarget, "'%s' is not assignable", n.Name)
			return types.Null{}, false
		}
		if v.IsConst {
			c.errs.Report(n.Line, n.Col, cerr.EConstAssign, "cannot assign to constant '%s'", n.Name)
			return v.SymType, false
		}
		return v.SymType, true
	case *ast.PropertyAccess:
		fieldType, ok := c.resolvePropertyType(n, scope)
		return fieldType, ok
	case *ast.Index:
		elemType, ok := c.resolveIndexElemType(n, scope)
		return elemType, ok
	default:
		l, col := target.Position()
		c.errs.Report(l, col, cerr.EInvalidTarget, "invalid assignment target")
		return types.Null{}, false
	}
}

func (c *Checker) checkAssignment(n *ast.Assignment, scope *symbols.Scope) types.Type {
	targetType, ok := c.resolveAssignTarget(n.Target, scope)
	valueType := c.checkExpr(n.Value, scope)
	if !ok {
		return targetType
	}
	if !types.Assignable(valueType, targetType) {
		c.errs.Report(n.Line, n.Col, cerr.ETypeMismatch, "cannot assign %s to a target of type %s", valueType.Name(), targetType.Name())
	}
	if id, ok := n.Target.(*ast.Identifier); ok {
		if v, ok := scope.Resolve(id.Name).(*symbols.VariableSymbol); ok {
			v.Initialized = true
		}
	}
	return targetType
}

func (c *Checker) checkIndex(n *ast.Index, scope *symbols.Scope) types.Type {
	elemType, _ := c.resolveIndexElemType(n, scope)
	return elemType
}

func (c *Checker) resolveIndexElemType(n *ast.Index, scope *symbols.Scope) (types.Type, bool) {
	baseType := c.checkExpr(n.Base, scope)
	idxType := c.checkExpr(n.Index, scope)
	if _, ok := idxType.(types.Integer); !ok {
		l, col := n.Index.Position()
		c.errs.Report(l, col, cerr.ENonIntegerIndex, "array index must be an integer, got %s", idxType.Name())
	}
	arr, ok := baseType.(types.Array)
	if !ok {
		c.errs.Report(n.Line, n.Col, cerr.EIndexNonArray, "cannot index non-array type %s", baseType.Name())
		return types.Null{}, false
	}
	return arr.Elem, true
}

// resolvePropertyType looks up the field (or method, as a Function-typed
// value) named by a property access, resolving the "length" pseudo-field on
// arrays directly rather than through a class lookup (§4.5's array header:
// offset 0 holds the element count).
func (c *Checker) resolvePropertyType(n *ast.PropertyAccess, scope *symbols.Scope) (types.Type, bool) {
	baseType := c.checkExpr(n.Base, scope)
	if _, ok := baseType.(types.Array); ok {
		if n.Identifier == "length" {
			return types.Integer{}, true
		}
		c.errs.Report(n.Line, n.Col, cerr.EUnknownMember, "unknown property '%s' on array type", n.Identifier)
		return types.Null{}, false
	}
	classType, ok := baseType.(types.Class)
	if !ok {
		c.errs.Report(n.Line, n.Col, cerr.EPropertyOnNonClass, "cannot access property '%s' on non-object type %s", n.Identifier, baseType.Name())
		return types.Null{}, false
	}
	classSym, ok := c.classes[classType.ClassName]
	if !ok {
		c.errs.Report(n.Line, n.Col, cerr.EPropertyOnNonClass, "unknown class '%s'", classType.ClassName)
		return types.Null{}, false
	}
	if f := classSym.Field(n.Identifier); f != nil {
		return f.Type, true
	}
	if m, ok := classSym.ResolveMethod(n.Identifier); ok {
		return m.Type, true
	}
	c.errs.Report(n.Line, n.Col, cerr.EUnknownMember, "class '%s' has no field or method '%s'", classType.ClassName, n.Identifier)
	return types.Null{}, false
}

func (c *Checker) checkPropertyAccess(n *ast.PropertyAccess, scope *symbols.Scope) types.Type {
	t, _ := c.resolvePropertyType(n, scope)
	return t
}

func (c *Checker) checkCall(n *ast.Call, scope *symbols.Scope) types.Type {
	calleeType := c.checkExpr(n.Callee, scope)
	fn, ok := calleeType.(types.Function)
	if !ok {
		c.errs.Report(n.Line, n.Col, cerr.ECallNonFunction, "cannot call non-function type %s", calleeType.Name())
		for _, a := range n.Args {
			c.checkExpr(a, scope)
		}
		return types.Null{}
	}
	c.checkArgs(n.Line, n.Col, fn.Params, n.Args, scope)
	if fn.Ret == nil {
		return types.Null{}
	}
	return fn.Ret
}

func (c *Checker) checkArgs(line, col int, params []types.Type, args []ast.Expr, scope *symbols.Scope) {
	if len(args) != len(params) {
		c.errs.Report(line, col, cerr.EArity, "expected %d argument(s), got %d", len(params), len(args))
		for _, a := range args {
			c.checkExpr(a, scope)
		}
		return
	}
	for i, a := range args {
		argType := c.checkExpr(a, scope)
		if !types.Assignable(argType, params[i]) {
			l, cl := a.Position()
			c.errs.Report(l, cl, cerr.EArgType, "argument %d: cannot pass %s where %s is expected", i+1, argType.Name(), params[i].Name())
		}
	}
}

func (c *Checker) checkNew(n *ast.New, scope *symbols.Scope) types.Type {
	classSym, ok := c.classes[n.ClassName]
	if !ok {
		c.errs.Report(n.Line, n.Col, cerr.ENewUndeclaredClass, "'new' references undeclared class '%s'", n.ClassName)
		for _, a := range n.Args {
			c.checkExpr(a, scope)
		}
		return types.Null{}
	}
	if ctor, hasCtor := classSym.ResolveMethod("constructor"); hasCtor {
		c.checkArgs(n.Line, n.Col, ctor.Type.Params, n.Args, scope)
	} else {
		for _, a := range n.Args {
			c.checkExpr(a, scope)
		}
	}
	return types.Class{ClassName: n.ClassName}
}
