package optimize

import "github.com/compiscript/ccc/pkg/tac"

// sideEffecting reports whether ins must be kept regardless of whether its
// result (if any) is ever read: control flow, I/O, the stack-balancing
// PUSH/POP/ADD_SP/ENTER/LEAVE pair, and memory writes through
// ARRAY_ASSIGN/FIELD_ASSIGN.
func sideEffecting(op tac.Op) bool {
	switch op {
	case tac.GOTO, tac.IF_TRUE, tac.IF_FALSE, tac.LABEL, tac.FUNC_START, tac.FUNC_END,
		tac.PRINT, tac.RETURN, tac.PUSH, tac.POP, tac.ENTER, tac.LEAVE, tac.ADD_SP,
		tac.ARRAY_ASSIGN, tac.FIELD_ASSIGN, tac.PARAM:
		return true
	}
	return false
}

// eliminateDeadCode removes a pure, result-producing instruction whose
// result temp is never read by any instruction in the list. Liveness is not
// positional: tacgen defines one temp on both arms of a branch and reads it
// after the join, and a loop reads temps above the instruction that
// redefines them, so a temp read anywhere counts as live at every one of its
// definitions. A read inside an instruction this pass drops still counts;
// the next round of Optimize removes what only that read kept alive. CALL
// keeps its side effect even when its return value is
// unused — its Result field is simply cleared rather than the instruction
// dropped. NEW is the one allocation treated as droppable when its result
// is dead: Compiscript has no GC and no observable way to inspect
// allocator addresses, so an unread allocation has no effect a running
// program could detect (§9 Non-goals: no GC).
func eliminateDeadCode(insns []tac.Instruction) []tac.Instruction {
	live := make(map[string]bool)
	for i := range insns {
		markReadsLive(&insns[i], live)
	}
	keep := make([]bool, len(insns))
	result := make([]tac.Instruction, len(insns))
	copy(result, insns)

	for i := len(insns) - 1; i >= 0; i-- {
		ins := result[i]
		def := defOperand(&ins)

		if ins.Op == tac.CALL {
			if def != nil && def.IsTemp && !live[tempName(def)] {
				ins.Result = nil
				result[i] = ins
			}
			keep[i] = true
			markReadsLive(&ins, live)
			continue
		}

		if sideEffecting(ins.Op) {
			keep[i] = true
			markReadsLive(&ins, live)
			continue
		}

		if def == nil {
			keep[i] = true
			markReadsLive(&ins, live)
			continue
		}

		if !def.IsTemp {
			keep[i] = true
			markReadsLive(&ins, live)
			continue
		}

		name := tempName(def)
		if !live[name] {
			keep[i] = false
			continue
		}
		keep[i] = true
		markReadsLive(&ins, live)
	}

	out := make([]tac.Instruction, 0, len(insns))
	for i, k := range keep {
		if k {
			out = append(out, result[i])
		}
	}
	return out
}

func markReadsLive(ins *tac.Instruction, live map[string]bool) {
	for _, slot := range readOperands(ins) {
		o := *slot
		if o != nil && o.IsTemp {
			live[tempName(o)] = true
		}
	}
}
