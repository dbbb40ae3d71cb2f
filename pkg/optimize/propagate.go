package optimize

import "github.com/compiscript/ccc/pkg/tac"

// propagateCopiesAndConstants forward-substitutes a temp's known constant
// value into later reads, within a straight-line run of instructions
// bounded by any label/function boundary (a join point: a later
// instruction may be reached from more than one predecessor, so nothing
// about a temp's value can be assumed to still hold there).
//
// Only constant values are tracked, deliberately short of full copy
// propagation: substituting `t5 = FP[-4]`'s right-hand side into a later
// read of t5 would only be sound if nothing writes FP[-4] in between, and
// proving that needs real reaching-definitions analysis this package
// doesn't have. A constant, by contrast, can never be invalidated by an
// intervening store, so propagating it is always safe.
func propagateCopiesAndConstants(insns []tac.Instruction) []tac.Instruction {
	out := make([]tac.Instruction, len(insns))
	known := make(map[string]tac.Operand)

	for i, ins := range insns {
		if isBarrier(ins.Op) {
			known = make(map[string]tac.Operand)
			out[i] = ins
			continue
		}

		ins = substituteReads(ins, known)

		if def := defOperand(&ins); def != nil && def.IsTemp {
			name := tempName(def)
			if ins.Op == tac.ASSIGN && ins.Arg1 != nil && ins.Arg1.IsConstant {
				known[name] = *ins.Arg1
			} else {
				delete(known, name)
			}
		}

		out[i] = ins
	}
	return out
}

func isBarrier(op tac.Op) bool {
	switch op {
	case tac.LABEL, tac.FUNC_START, tac.FUNC_END, tac.LEAVE:
		return true
	}
	return false
}

func tempName(o *tac.Operand) string {
	s, _ := o.Value.(string)
	return s
}

// readOperands returns, for ins, the pointers to its fields that are read
// rather than defined. ARRAY_ASSIGN/FIELD_ASSIGN are the irregular cases:
// Result there holds the array/object being indexed into, a read, not a
// definition.
func readOperands(ins *tac.Instruction) []**tac.Operand {
	switch ins.Op {
	case tac.ASSIGN, tac.NEG, tac.NOT, tac.IF_TRUE, tac.IF_FALSE, tac.PRINT, tac.DEREF, tac.PUSH, tac.ENTER, tac.ADD_SP, tac.PARAM:
		return []**tac.Operand{&ins.Arg1}
	case tac.ADD, tac.SUB, tac.MUL, tac.DIV, tac.MOD, tac.AND, tac.OR,
		tac.LT, tac.LE, tac.GT, tac.GE, tac.EQ, tac.NE,
		tac.ARRAY_ACCESS, tac.FIELD_ACCESS:
		return []**tac.Operand{&ins.Arg1, &ins.Arg2}
	case tac.ARRAY_ASSIGN, tac.FIELD_ASSIGN:
		return []**tac.Operand{&ins.Result, &ins.Arg1, &ins.Arg2}
	case tac.RETURN:
		if ins.Arg1 != nil {
			return []**tac.Operand{&ins.Arg1}
		}
	case tac.CALL:
		// Arg1 is the callee (a label for a direct call, but a temp when a
		// method call's dispatch target came out of FIELD_ACCESS), Arg2 the
		// arg-count constant: both are reads, never defs.
		if ins.Arg2 != nil {
			return []**tac.Operand{&ins.Arg1, &ins.Arg2}
		}
		return []**tac.Operand{&ins.Arg1}
	case tac.NEW:
		return []**tac.Operand{&ins.Arg1}
	}
	return nil
}

// defOperand returns the field ins defines (writes a fresh value into), or
// nil if ins defines nothing.
func defOperand(ins *tac.Instruction) *tac.Operand {
	switch ins.Op {
	case tac.ASSIGN, tac.ADD, tac.SUB, tac.MUL, tac.DIV, tac.MOD, tac.NEG,
		tac.AND, tac.OR, tac.NOT, tac.LT, tac.LE, tac.GT, tac.GE, tac.EQ, tac.NE,
		tac.ARRAY_ACCESS, tac.FIELD_ACCESS, tac.NEW, tac.DEREF, tac.POP:
		return ins.Result
	case tac.CALL:
		return ins.Result // nil when the call's value is discarded
	}
	return nil
}

func substituteReads(ins tac.Instruction, known map[string]tac.Operand) tac.Instruction {
	for _, slot := range readOperands(&ins) {
		o := *slot
		if o == nil || !o.IsTemp {
			continue
		}
		if v, ok := known[tempName(o)]; ok {
			replacement := v
			*slot = &replacement
		}
	}
	return ins
}
