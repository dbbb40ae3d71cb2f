package optimize

import "github.com/compiscript/ccc/pkg/tac"

// foldConstants replaces a binary/unary arithmetic or relational
// instruction whose operands are both constants with a single ASSIGN of
// the folded value, preserving the instruction's result temp and type.
// Division and modulo use floored semantics (Python's `//`/`%`), matching
// the MIPS generator's div/rem correction sequence for mixed-sign operands
// (SPEC_FULL.md §3's "Division semantics" note) so a folded constant and an
// unfolded runtime computation of the same expression always agree.
func foldConstants(insns []tac.Instruction) []tac.Instruction {
	out := make([]tac.Instruction, 0, len(insns))
	for _, ins := range insns {
		folded, ok := foldOne(ins)
		switch {
		case ok && folded.Op == "":
			// A never-taken conditional branch: drop it entirely.
		case ok:
			out = append(out, folded)
		default:
			out = append(out, ins)
		}
	}
	return out
}

func foldOne(ins tac.Instruction) (tac.Instruction, bool) {
	switch ins.Op {
	case tac.ADD, tac.SUB, tac.MUL, tac.DIV, tac.MOD:
		a, aok := intVal(ins.Arg1)
		b, bok := intVal(ins.Arg2)
		if !aok || !bok {
			return ins, false
		}
		v, ok := foldIntArith(ins.Op, a, b)
		if !ok {
			return ins, false
		}
		c := tac.IntConst(v, "integer")
		return tac.Instruction{Op: tac.ASSIGN, Result: ins.Result, Arg1: &c}, true

	case tac.NEG:
		a, ok := intVal(ins.Arg1)
		if !ok {
			return ins, false
		}
		c := tac.IntConst(-a, "integer")
		return tac.Instruction{Op: tac.ASSIGN, Result: ins.Result, Arg1: &c}, true

	case tac.NOT:
		a, ok := boolVal(ins.Arg1)
		if !ok {
			return ins, false
		}
		c := tac.BoolConst(!a, "boolean")
		return tac.Instruction{Op: tac.ASSIGN, Result: ins.Result, Arg1: &c}, true

	case tac.AND, tac.OR:
		a, aok := boolVal(ins.Arg1)
		b, bok := boolVal(ins.Arg2)
		if !aok || !bok {
			return ins, false
		}
		var v bool
		if ins.Op == tac.AND {
			v = a && b
		} else {
			v = a || b
		}
		c := tac.BoolConst(v, "boolean")
		return tac.Instruction{Op: tac.ASSIGN, Result: ins.Result, Arg1: &c}, true

	case tac.LT, tac.LE, tac.GT, tac.GE, tac.EQ, tac.NE:
		a, aok := intVal(ins.Arg1)
		b, bok := intVal(ins.Arg2)
		if !aok || !bok {
			return ins, false
		}
		v := foldIntCompare(ins.Op, a, b)
		c := tac.BoolConst(v, "boolean")
		return tac.Instruction{Op: tac.ASSIGN, Result: ins.Result, Arg1: &c}, true

	case tac.IF_TRUE, tac.IF_FALSE:
		v, ok := boolVal(ins.Arg1)
		if !ok {
			return ins, false
		}
		takeBranch := (ins.Op == tac.IF_TRUE && v) || (ins.Op == tac.IF_FALSE && !v)
		if takeBranch {
			target := *ins.Arg2
			return tac.Instruction{Op: tac.GOTO, Arg1: &target}, true
		}
		// The branch is never taken: the whole instruction is a no-op and
		// can simply be dropped by returning an empty replacement.
		return tac.Instruction{}, true
	}
	return ins, false
}

// floorDiv / floorMod implement Python's `//`/`%` on int64, matching the
// MIPS generator's correction sequence for truncating hardware division.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}

func foldIntArith(op tac.Op, a, b int64) (int64, bool) {
	switch op {
	case tac.ADD:
		return a + b, true
	case tac.SUB:
		return a - b, true
	case tac.MUL:
		return a * b, true
	case tac.DIV:
		if b == 0 {
			return 0, false
		}
		return floorDiv(a, b), true
	case tac.MOD:
		if b == 0 {
			return 0, false
		}
		return floorMod(a, b), true
	}
	return 0, false
}

func foldIntCompare(op tac.Op, a, b int64) bool {
	switch op {
	case tac.LT:
		return a < b
	case tac.LE:
		return a <= b
	case tac.GT:
		return a > b
	case tac.GE:
		return a >= b
	case tac.EQ:
		return a == b
	case tac.NE:
		return a != b
	}
	return false
}

func intVal(o *tac.Operand) (int64, bool) {
	if o == nil || !o.IsConstant {
		return 0, false
	}
	v, ok := o.Value.(int64)
	return v, ok
}

func boolVal(o *tac.Operand) (bool, bool) {
	if o == nil || !o.IsConstant {
		return false, false
	}
	v, ok := o.Value.(bool)
	return v, ok
}

// simplifyAlgebraic rewrites arithmetic against identity/absorbing
// constants (x+0, 0+x, x*1, 1*x, x*0, 0*x, x-0) into a plain ASSIGN,
// independent of whether the other operand folded to a constant.
func simplifyAlgebraic(insns []tac.Instruction) []tac.Instruction {
	out := make([]tac.Instruction, 0, len(insns))
	for _, ins := range insns {
		out = append(out, simplifyOne(ins))
	}
	return out
}

func simplifyOne(ins tac.Instruction) tac.Instruction {
	switch ins.Op {
	case tac.ADD:
		if isIntConst(ins.Arg1, 0) {
			return assignOf(ins.Result, ins.Arg2)
		}
		if isIntConst(ins.Arg2, 0) {
			return assignOf(ins.Result, ins.Arg1)
		}
	case tac.SUB:
		if isIntConst(ins.Arg2, 0) {
			return assignOf(ins.Result, ins.Arg1)
		}
	case tac.MUL:
		if isIntConst(ins.Arg1, 1) {
			return assignOf(ins.Result, ins.Arg2)
		}
		if isIntConst(ins.Arg2, 1) {
			return assignOf(ins.Result, ins.Arg1)
		}
		if isIntConst(ins.Arg1, 0) || isIntConst(ins.Arg2, 0) {
			zero := tac.IntConst(0, "integer")
			return tac.Instruction{Op: tac.ASSIGN, Result: ins.Result, Arg1: &zero}
		}
	}
	return ins
}

func isIntConst(o *tac.Operand, v int64) bool {
	n, ok := intVal(o)
	return ok && n == v
}

func assignOf(result *tac.Operand, arg *tac.Operand) tac.Instruction {
	return tac.Instruction{Op: tac.ASSIGN, Result: result, Arg1: arg}
}
