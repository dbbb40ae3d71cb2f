package optimize

import "github.com/compiscript/ccc/pkg/tac"

func labelID(o *tac.Operand) (int, bool) {
	if o == nil || !o.IsLabel {
		return 0, false
	}
	id, ok := o.Value.(int)
	return id, ok
}

// jumpTarget returns the operand slot holding the branch target for ins,
// or nil if ins isn't a branch.
func jumpTarget(ins *tac.Instruction) **tac.Operand {
	switch ins.Op {
	case tac.GOTO:
		return &ins.Arg1
	case tac.IF_TRUE, tac.IF_FALSE:
		return &ins.Arg2
	}
	return nil
}

// simplifyJumps resolves two local patterns: a GOTO whose target is the
// very next instruction (a no-op fallthrough, removed), and a jump whose
// target label is itself immediately followed by an unconditional GOTO (a
// jump-to-jump, retargeted directly to the final destination).
func simplifyJumps(insns []tac.Instruction) []tac.Instruction {
	// chainsTo[labelID] = the label that an unconditional GOTO right after
	// that LABEL jumps to, for chain-following.
	chainsTo := make(map[int]int)
	for i, ins := range insns {
		if ins.Op != tac.LABEL {
			continue
		}
		id, ok := labelID(ins.Arg1)
		if !ok || i+1 >= len(insns) {
			continue
		}
		next := insns[i+1]
		if next.Op == tac.GOTO {
			if target, ok := labelID(next.Arg1); ok {
				chainsTo[id] = target
			}
		}
	}

	resolve := func(id int) int {
		seen := map[int]bool{}
		for {
			next, ok := chainsTo[id]
			if !ok || seen[next] {
				return id
			}
			seen[id] = true
			id = next
		}
	}

	out := make([]tac.Instruction, 0, len(insns))
	for i, ins := range insns {
		if slot := jumpTarget(&ins); slot != nil {
			if id, ok := labelID(*slot); ok {
				resolved := resolve(id)
				if resolved != id {
					target := tac.Label(resolved)
					*slot = &target
				}
			}
		}

		if ins.Op == tac.GOTO && i+1 < len(insns) && insns[i+1].Op == tac.LABEL {
			if targetID, ok := labelID(ins.Arg1); ok {
				if followingID, ok2 := labelID(insns[i+1].Arg1); ok2 && targetID == followingID {
					continue // falls straight through to its own target
				}
			}
		}
		out = append(out, ins)
	}
	return out
}

// removeUnreachable drops instructions between an unconditional transfer
// (GOTO or RETURN) and the next LABEL, FUNC_START or FUNC_END: nothing can
// reach them without a label to jump to, and none is present. FUNC_END ends
// such a region and never starts one, because the top-level statements after
// the last function carry no label and are entered through _script_start.
func removeUnreachable(insns []tac.Instruction) []tac.Instruction {
	out := make([]tac.Instruction, 0, len(insns))
	dead := false
	for _, ins := range insns {
		if ins.Op == tac.LABEL || ins.Op == tac.FUNC_START || ins.Op == tac.FUNC_END {
			dead = false
		}
		if dead {
			continue
		}
		out = append(out, ins)
		if ins.Op == tac.GOTO || ins.Op == tac.RETURN {
			dead = true
		}
	}
	return out
}

// removeUnusedLabels drops a LABEL instruction whose id is never the
// target of any GOTO/IF_TRUE/IF_FALSE remaining in the program.
func removeUnusedLabels(insns []tac.Instruction) []tac.Instruction {
	referenced := make(map[int]bool)
	for i := range insns {
		ins := &insns[i]
		if slot := jumpTarget(ins); slot != nil {
			if id, ok := labelID(*slot); ok {
				referenced[id] = true
			}
		}
	}

	out := make([]tac.Instruction, 0, len(insns))
	for _, ins := range insns {
		if ins.Op == tac.LABEL {
			if id, ok := labelID(ins.Arg1); ok && !referenced[id] {
				continue
			}
		}
		out = append(out, ins)
	}
	return out
}
