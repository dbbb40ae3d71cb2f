// Package tacgen lowers a type-checked Compiscript AST into Three-Address
// Code (§3, §4.5). It is the third AST walk in the pipeline (after
// pkg/collector and pkg/typecheck), re-entering the same scope tree to
// resolve every name to a concrete address, and reusing the types Pass 2
// already attached to each expression node rather than re-inferring them.
//
// Grounded on original_source/intermediate/tac_generator.py, restructured
// from a single monolithic ANTLR visitor into the teacher's one-function-
// per-construct style (see pkg/cshmgen/stmt.go, pkg/cshmgen/expr.go):
// statement lowering lives in stmt.go, expression lowering in expr.go.
//
// The addressing model keeps the source generator's asymmetry: a local
// variable's TAC operand IS its "FP[off]" address string, loaded lazily by
// the MIPS generator wherever it's used as a value, while a parameter or a
// global is loaded eagerly here through an explicit DEREF into a fresh
// temporary. This looks inconsistent on first read; it is preserved
// deliberately because the MIPS generator's operand interpreter (pkg/mips)
// is written against exactly this contract.
package tacgen

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/compiscript/ccc/pkg/ast"
	"github.com/compiscript/ccc/pkg/cerr"
	"github.com/compiscript/ccc/pkg/symbols"
	"github.com/compiscript/ccc/pkg/tac"
	"github.com/compiscript/ccc/pkg/types"
)

// loopLabels is the (continue, break) label pair a loop pushes while its
// body is being generated, consulted by a nested break/continue statement.
type loopLabels struct {
	continueLabel tac.Operand
	breakLabel    tac.Operand
}

// Generator lowers one Program into a tac.Program. It is not safe for
// concurrent use, matching the rest of the pipeline (§5).
type Generator struct {
	prog *tac.Program

	scopeByNode map[ast.Node]*symbols.Scope
	classes     map[string]*symbols.ClassSymbol
	typeByNode  map[ast.Expr]types.Type

	scope        *symbols.Scope
	currentClass string // "" outside any method body

	loopStack   []loopLabels
	switchStack []tac.Operand // the switch's end label, for a break inside it

	globalAddrs    map[string]string
	nextGlobalAddr int

	// lastMethodObj carries the receiver of the property just accessed by
	// _apply_property's Go equivalent (genPropertyAccess) so that a Call
	// immediately following it knows to push "this" as an implicit first
	// argument. Cleared unconditionally after every call, matching the
	// source generator's last_method_obj flag.
	lastMethodObj *tac.Operand
}

// New creates a Generator over the scope tree and types Pass 1/Pass 2
// produced for prog.
func New(scopeByNode map[ast.Node]*symbols.Scope, classes map[string]*symbols.ClassSymbol, typeByNode map[ast.Expr]types.Type) *Generator {
	return &Generator{
		scopeByNode:    scopeByNode,
		classes:        classes,
		typeByNode:     typeByNode,
		globalAddrs:    make(map[string]string),
		nextGlobalAddr: 0x1000,
	}
}

// Generate lowers prog into a complete TAC program. An error return is
// always a TAC_ERR (§7): a fault in an internal invariant this package
// assumes (a node missing from scopeByNode, an unresolved symbol) that a
// successful Pass 1/Pass 2 run should have ruled out.
func (g *Generator) Generate(prog *ast.Program) (*tac.Program, error) {
	g.prog = &tac.Program{}
	root, ok := g.scopeByNode[prog]
	if !ok {
		return nil, g.fault(prog, "no scope recorded for the program root")
	}
	g.scope = root

	// Function and class bodies are emitted as one contiguous block ahead of
	// the top-level statement sequence, regardless of where they appear in
	// source, so the MIPS generator's single entry jump can skip over every
	// function body in one hop and land on the first top-level instruction
	// (the "_script_start" contract; see pkg/mips).
	for _, s := range prog.Statements {
		switch s.(type) {
		case *ast.FunctionDeclaration, *ast.ClassDeclaration:
			if err := g.genStmt(s); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range prog.Statements {
		switch s.(type) {
		case *ast.FunctionDeclaration, *ast.ClassDeclaration:
			continue
		}
		if err := g.genStmt(s); err != nil {
			return nil, err
		}
	}
	return g.prog, nil
}

func (g *Generator) fault(n ast.Node, format string, args ...any) error {
	line, col := n.Position()
	return errors.WithStack(cerr.Error{Line: line, Col: col, Code: cerr.TACErr, Msg: fmt.Sprintf(format, args...)})
}

// childScope returns the scope Pass 1 recorded for node; a missing entry is
// a TAC_ERR fault, since by this stage every scope-introducing node must
// have one.
func (g *Generator) childScope(node ast.Node) (*symbols.Scope, error) {
	s, ok := g.scopeByNode[node]
	if !ok {
		return nil, g.fault(node, "no scope recorded for node")
	}
	return s, nil
}

func (g *Generator) enterScope(node ast.Node) error {
	s, err := g.childScope(node)
	if err != nil {
		return err
	}
	g.scope = s
	return nil
}

func (g *Generator) exitScope() {
	if g.scope.Parent != nil {
		g.scope = g.scope.Parent
	}
}

// typeName maps a Compiscript type to the short tag TAC operands carry for
// sizing and MIPS-generator dispatch (§3): "integer", "string", "boolean",
// "null", a class name, or an element-type name with a trailing "[]".
func typeName(t types.Type) string {
	if t == nil {
		return ""
	}
	switch v := t.(type) {
	case types.Integer:
		return "integer"
	case types.String:
		return "string"
	case types.Boolean:
		return "boolean"
	case types.Null:
		return "null"
	case types.Class:
		return v.ClassName
	case types.Array:
		return typeName(v.Elem) + "[]"
	default:
		return ""
	}
}

// exprType looks up the type Pass 2 inferred for e.
func (g *Generator) exprType(e ast.Expr) types.Type {
	return g.typeByNode[e]
}

func (g *Generator) exprTypeName(e ast.Expr) string {
	return typeName(g.exprType(e))
}

func intConst(v int64) tac.Operand  { return tac.IntConst(v, "integer") }
func strConst(v string) tac.Operand { return tac.StrConst(v, "string") }

// resolveVar looks up name as a variable/constant/parameter, returning nil
// if it names something else (a function or class) or nothing at all.
func (g *Generator) resolveVar(name string) *symbols.VariableSymbol {
	sym, _ := g.scope.Resolve(name).(*symbols.VariableSymbol)
	return sym
}

func (g *Generator) globalAddr(name string) string {
	if a, ok := g.globalAddrs[name]; ok {
		return a
	}
	a := fmt.Sprintf("0x%x", g.nextGlobalAddr)
	g.globalAddrs[name] = a
	g.nextGlobalAddr += 4
	return a
}

func localFPOperand(offset int, typ string) tac.Operand {
	mipsOffset := -(offset + 4)
	return tac.Operand{Value: fmt.Sprintf("FP[%d]", mipsOffset), Typ: typ}
}

func (g *Generator) paramFPOperand(offset int, typ string) tac.Operand {
	var mipsOffset int
	if g.currentClass != "" {
		mipsOffset = -offset + 8
	} else {
		mipsOffset = -offset + 4
	}
	return tac.Operand{Value: fmt.Sprintf("FP[%d]", mipsOffset), Typ: typ}
}

// identifierStoreOperand resolves name to the address-style operand an
// ASSIGN into it should target: a local's or parameter's "FP[off]" string,
// or a lazily-allocated global address, allocating one on first reference
// (§3's global address-allocation rule: 0x1000 + 4 per distinct name).
func (g *Generator) identifierStoreOperand(name string, typ string) tac.Operand {
	if sym := g.resolveVar(name); sym != nil && sym.Offset != nil && !sym.Global {
		off := *sym.Offset
		if off >= 0 {
			return localFPOperand(off, typ)
		}
		return g.paramFPOperand(off, typ)
	}
	return tac.Operand{Value: g.globalAddr(name), Typ: typ}
}

// identifierLoadOperand resolves name to an rvalue operand. A local's value
// is just its "FP[off]" address operand returned as-is, deferred for the
// MIPS generator to load on use; a parameter or global is loaded eagerly
// here through an explicit DEREF into a fresh temporary (see the package
// doc comment for why these two paths differ).
func (g *Generator) identifierLoadOperand(name string, typ string) tac.Operand {
	if name == "this" {
		fpRef := tac.Operand{Value: "FP[8]", Typ: typ}
		result := g.prog.NewTemp(typ)
		g.prog.Emit(tac.DEREF, &result, &fpRef, nil)
		return result
	}
	if sym := g.resolveVar(name); sym != nil && sym.Offset != nil && !sym.Global {
		off := *sym.Offset
		if off >= 0 {
			return localFPOperand(off, typ)
		}
		fpRef := g.paramFPOperand(off, typ)
		result := g.prog.NewTemp(typ)
		g.prog.Emit(tac.DEREF, &result, &fpRef, nil)
		return result
	}
	addrRef := tac.Operand{Value: g.globalAddr(name), Typ: typ}
	result := g.prog.NewTemp(typ)
	g.prog.Emit(tac.DEREF, &result, &addrRef, nil)
	return result
}
