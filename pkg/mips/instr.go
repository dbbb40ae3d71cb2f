package mips

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/compiscript/ccc/pkg/tac"
)

var relOpMips = map[tac.Op]string{
	tac.LT: "slt", tac.LE: "sle", tac.GT: "sgt", tac.GE: "sge", tac.EQ: "seq", tac.NE: "sne",
}

func (g *Generator) fault(format string, args ...any) error {
	return errors.Errorf(format, args...)
}

// translateInstruction is the main dispatcher, one case per tac.Op,
// grounded on MIPSGenerator._translate_instruction.
func (g *Generator) translateInstruction(ins tac.Instruction) error {
	switch ins.Op {
	case tac.ADD:
		g.translateAdd(ins)
	case tac.SUB:
		g.translateBinaryOp(ins, "sub")
	case tac.MUL:
		g.translateBinaryOp(ins, "mul")
	case tac.DIV:
		g.translateFlooredDivMod(ins, false)
	case tac.MOD:
		g.translateFlooredDivMod(ins, true)
	case tac.NEG:
		g.loadOp("$t0", ins.Arg1)
		g.emit("\tneg $t0, $t0\n")
		g.storeOp("$t0", ins.Result)

	case tac.LT, tac.LE, tac.GT, tac.GE, tac.EQ, tac.NE:
		g.translateBinaryOp(ins, relOpMips[ins.Op])
	case tac.AND:
		g.translateBinaryOp(ins, "and")
	case tac.OR:
		g.translateBinaryOp(ins, "or")
	case tac.NOT:
		g.loadOp("$t0", ins.Arg1)
		g.emit("\tseq $t0, $t0, $zero\n")
		g.storeOp("$t0", ins.Result)

	case tac.ASSIGN:
		g.loadOp("$t0", ins.Arg1)
		g.storeOp("$t0", ins.Result)

	case tac.DEREF:
		g.getAddr("$t0", ins.Arg1)
		g.emit("\tlw $t1, 0($t0)\n")
		g.storeOp("$t1", ins.Result)

	case tac.ARRAY_ACCESS:
		// result = arg1[arg2]; elements start at offset 4, offset 0 holds
		// the length header (§3's length-prefixed array layout).
		g.loadOp("$t0", ins.Arg1)
		g.loadOp("$t1", ins.Arg2)
		g.emit("\tsll $t1, $t1, 2\n")
		g.emit("\taddi $t1, $t1, 4\n")
		g.emit("\tadd $t0, $t0, $t1\n")
		g.emit("\tlw $t2, 0($t0)\n")
		g.storeOp("$t2", ins.Result)

	case tac.ARRAY_ASSIGN:
		// result[arg1] = arg2
		g.loadOp("$t0", ins.Result)
		g.loadOp("$t1", ins.Arg1)
		g.loadOp("$t2", ins.Arg2)
		g.emit("\tsll $t1, $t1, 2\n")
		g.emit("\taddi $t1, $t1, 4\n")
		g.emit("\tadd $t0, $t0, $t1\n")
		g.emit("\tsw $t2, 0($t0)\n")

	case tac.FIELD_ACCESS:
		return g.translateFieldAccess(ins)
	case tac.FIELD_ASSIGN:
		return g.translateFieldAssign(ins)

	case tac.GOTO:
		g.emitf("\tj %s\n", ins.Arg1.String())
	case tac.IF_TRUE:
		g.loadOp("$t0", ins.Arg1)
		g.emitf("\tbne $t0, $zero, %s\n", ins.Arg2.String())
	case tac.IF_FALSE:
		g.loadOp("$t0", ins.Arg1)
		g.emitf("\tbeq $t0, $zero, %s\n", ins.Arg2.String())
	case tac.LABEL:
		g.emitf("%s:\n", ins.Arg1.String())

	case tac.FUNC_START:
		name, _ := ins.Arg1.Value.(string)
		g.emitf("%s:\n", sanitizeLabel(name))
		g.tempMap = make(map[string]int)
		g.currentFrameSize = 0
		g.currentTempOffset = 0
	case tac.FUNC_END:
		// pure marker; the orchestration loop in Generate watches for it

	case tac.ENTER:
		size := intValue(ins.Arg1)
		g.currentFrameSize = size
		g.emit("\tsubu $sp, $sp, 8\n")
		g.emit("\tsw $ra, 4($sp)\n")
		g.emit("\tsw $fp, 0($sp)\n")
		g.emit("\tmove $fp, $sp\n")
		if size > 0 {
			g.emitf("\tsubu $sp, $sp, %d\n", size)
		}
	case tac.LEAVE:
		if g.currentFrameSize > 0 {
			g.emitf("\taddu $sp, $sp, %d\n", g.currentFrameSize)
		}
		g.emit("\tlw $ra, 4($sp)\n")
		g.emit("\tlw $fp, 0($sp)\n")
		g.emit("\taddu $sp, $sp, 8\n")
	case tac.RETURN:
		if ins.Arg1 != nil {
			g.loadOp("$v0", ins.Arg1)
		}
		g.emit("\tjr $ra\n")

	case tac.PUSH:
		g.loadOp("$t0", ins.Arg1)
		g.emit("\tsubu $sp, $sp, 4\n")
		g.emit("\tsw $t0, 0($sp)\n")
	case tac.CALL:
		return g.translateCall(ins)
	case tac.ADD_SP:
		g.emitf("\taddu $sp, $sp, %d\n", intValue(ins.Arg1))
	case tac.POP:
		g.emit("\tlw $t0, 0($sp)\n")
		g.emit("\taddu $sp, $sp, 4\n")
		g.storeOp("$t0", ins.Result)

	case tac.PRINT:
		g.loadOp("$a0", ins.Arg1)
		switch ins.Arg1.Typ {
		case "string":
			g.emit("\tjal _print_string\n")
		case "boolean":
			g.emit("\tjal _print_boolean\n")
		default:
			g.emit("\tjal _print_int\n")
		}

	case tac.NEW:
		return g.translateNew(ins)

	default:
		return g.fault("mips: unsupported TAC operation %q", ins.Op)
	}
	return nil
}

func (g *Generator) translateAdd(ins tac.Instruction) {
	isString := (ins.Arg1 != nil && ins.Arg1.Typ == "string") || (ins.Arg2 != nil && ins.Arg2.Typ == "string")
	if !isString {
		g.translateBinaryOp(ins, "add")
		return
	}
	g.loadOp("$a0", ins.Arg1)
	g.loadOp("$a1", ins.Arg2)
	g.emit("\tjal _string_concat\n")
	g.storeOp("$v0", ins.Result)
}

func (g *Generator) translateBinaryOp(ins tac.Instruction, mipsOp string) {
	g.loadOp("$t0", ins.Arg1)
	g.loadOp("$t1", ins.Arg2)
	g.emitf("\t%s $t2, $t0, $t1\n", mipsOp)
	g.storeOp("$t2", ins.Result)
}

// translateFlooredDivMod emits floored-semantics division/modulo (§3's
// division supplement, matching the constant folder's floored arithmetic):
// MIPS's native div/mflo/mfhi truncate toward zero, so when the truncated
// remainder is nonzero and the operand signs differ, the quotient is
// decremented by one and the divisor is added back into the remainder.
func (g *Generator) translateFlooredDivMod(ins tac.Instruction, remainder bool) {
	g.loadOp("$t0", ins.Arg1)
	g.loadOp("$t1", ins.Arg2)
	done := g.newInternalLabel("divmod")
	g.emit("\tdiv $t0, $t1\n")
	g.emit("\tmflo $t2\n")
	g.emit("\tmfhi $t3\n")
	g.emitf("\tbeq $t3, $zero, %s\n", done)
	g.emit("\txor $t4, $t3, $t1\n")
	g.emitf("\tbgez $t4, %s\n", done)
	g.emit("\taddi $t2, $t2, -1\n")
	g.emit("\tadd $t3, $t3, $t1\n")
	g.emitf("%s:\n", done)
	if remainder {
		g.storeOp("$t3", ins.Result)
	} else {
		g.storeOp("$t2", ins.Result)
	}
}

// translateFieldAccess handles both obj.field reads and obj.method address
// resolution. An array's "length" is special-cased to the header word at
// offset 0 rather than a class lookup, since arrays carry no ClassSymbol.
func (g *Generator) translateFieldAccess(ins tac.Instruction) error {
	obj := ins.Arg1
	member, _ := ins.Arg2.Value.(string)

	if member == "length" && strings.HasSuffix(obj.Typ, "[]") {
		g.loadOp("$t0", obj)
		g.emit("\tlw $t1, 0($t0)\n")
		g.storeOp("$t1", ins.Result)
		return nil
	}

	cls := g.classes[obj.Typ]
	if cls == nil {
		return g.fault("mips: no class layout for %q (field access %q)", obj.Typ, member)
	}
	if off, ok := cls.FieldOffset(member); ok {
		g.loadOp("$t0", obj)
		g.emitf("\tlw $t1, %d($t0)\n", off)
		g.storeOp("$t1", ins.Result)
		return nil
	}
	if m, ok := cls.ResolveMethod(member); ok {
		label := sanitizeLabel(m.ImplClass + "_" + member)
		g.emitf("\tla $t0, %s\n", label)
		g.storeOp("$t0", ins.Result)
		return nil
	}
	return g.fault("mips: class %q has no member %q", obj.Typ, member)
}

func (g *Generator) translateFieldAssign(ins tac.Instruction) error {
	obj := ins.Result
	field, _ := ins.Arg1.Value.(string)

	cls := g.classes[obj.Typ]
	if cls == nil {
		return g.fault("mips: no class layout for %q (field assign %q)", obj.Typ, field)
	}
	off, ok := cls.FieldOffset(field)
	if !ok {
		return g.fault("mips: class %q has no field %q", obj.Typ, field)
	}
	g.loadOp("$t0", obj)
	g.loadOp("$t1", ins.Arg2)
	g.emitf("\tsw $t1, %d($t0)\n", off)
	return nil
}

// translateNew allocates either a length-prefixed array (§3: 4 bytes of
// header plus 4 bytes per element) or a class instance (ClassSymbol.
// InstanceSize, already the sum of its merged fields — no re-derivation
// and no fallback needed here, unlike the historical generator's
// field-count-by-list-index guess with its Point-specific size-8 patch).
func (g *Generator) translateNew(ins tac.Instruction) error {
	arg1 := ins.Arg1
	var size int
	if arg1.IsConstant {
		size = 4 + int(intValue(arg1))*4
	} else {
		className, _ := arg1.Value.(string)
		cls := g.classes[className]
		if cls == nil {
			return g.fault("mips: no class layout for %q (new)", className)
		}
		size = cls.InstanceSize
	}
	g.emitf("\tli $a0, %d\n", size)
	g.emit("\tjal _alloc\n")
	g.storeOp("$v0", ins.Result)
	return nil
}

// translateCall distinguishes the toString intrinsic, an indirect call
// through a method-pointer temp (the callee computed by a preceding
// FIELD_ACCESS — Operand.IsTemp makes this an exact test, unlike the
// historical generator's "t_ptr_" substring heuristic, a naming
// convention this pipeline's TAC generator never produces), and an
// ordinary direct call.
func (g *Generator) translateCall(ins tac.Instruction) error {
	callee := ins.Arg1
	name, _ := callee.Value.(string)

	if name == "toString" {
		numArgs := int(intValue(ins.Arg2))
		if numArgs == 2 {
			g.emit("\tlw $a0, 4($sp)\n") // this occupies 0($sp); the int arg is above it
		} else {
			g.emit("\tlw $a0, 0($sp)\n")
		}
		g.emit("\tjal _int_to_string\n")
		if ins.Result != nil {
			g.storeOp("$v0", ins.Result)
		}
		return nil
	}

	if callee.IsTemp {
		g.loadOp("$t0", callee)
		g.emit("\tjalr $t0\n")
	} else {
		g.emitf("\tjal %s\n", sanitizeLabel(name))
	}
	if ins.Result != nil {
		g.storeOp("$v0", ins.Result)
	}
	return nil
}

func intValue(op *tac.Operand) int {
	if op == nil {
		return 0
	}
	n, _ := op.Value.(int64)
	return int(n)
}

func sanitizeLabel(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
