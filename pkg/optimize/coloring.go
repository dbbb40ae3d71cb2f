package optimize

import (
	"fmt"
	"sort"

	"github.com/compiscript/ccc/pkg/tac"
)

// colorTemps renames each function's (and the top-level script's) temps to
// a densified t1..tK numbering, reusing a number across two temps only when
// their live ranges never overlap. This is the "temp coloring" half of
// §9's "no register allocation beyond stack slots + temp coloring"
// Non-goal, adapted from pkg/regalloc's interference-graph/greedy-coloring
// idea (interference.go, irc.go) down from machine registers to TAC temps,
// and from a full interference graph to a single linear scan: a temp's
// live range here runs from its first mention to its last mention within
// its segment, which is exact for the generator's actual temp discipline
// (one NewTemp/FreeTemp pair per straight-line use) and only conservative
// when the pool handed the same name to two unrelated values in the same
// segment — then the two are coalesced into one wider range that simply
// competes for colors against everything live across either span. Never
// unsound, at worst a missed reuse.
func colorTemps(insns []tac.Instruction) []tac.Instruction {
	segOf := assignSegments(insns)

	bySeg := make(map[int][]int)
	for i, id := range segOf {
		bySeg[id] = append(bySeg[id], i)
	}

	renameBySeg := make(map[int]map[string]string, len(bySeg))
	for id, idxs := range bySeg {
		renameBySeg[id] = colorSegment(insns, idxs)
	}

	out := make([]tac.Instruction, len(insns))
	for i, ins := range insns {
		out[i] = renameTemps(ins, renameBySeg[segOf[i]])
	}
	return out
}

// assignSegments gives every instruction a segment id: 0 for anything
// outside a function, and a distinct id per FUNC_START..FUNC_END span
// (inclusive of both ends) — functions don't nest in this generator's
// output, so one counter suffices.
func assignSegments(insns []tac.Instruction) []int {
	segOf := make([]int, len(insns))
	current := 0
	next := 1
	for i, ins := range insns {
		if ins.Op == tac.FUNC_START {
			current = next
			next++
		}
		segOf[i] = current
		if ins.Op == tac.FUNC_END {
			current = 0
		}
	}
	return segOf
}

type tempInterval struct {
	name       string
	start, end int
}

// colorSegment computes a rename map for one segment via linear-scan
// coloring: temps are sorted by first mention, and each is assigned the
// lowest color not held by any still-active (not yet expired) temp.
func colorSegment(insns []tac.Instruction, idxs []int) map[string]string {
	firstSeen := make(map[string]int)
	lastSeen := make(map[string]int)
	var order []string

	for tick, idx := range idxs {
		for _, name := range tempNamesIn(&insns[idx]) {
			if _, ok := firstSeen[name]; !ok {
				firstSeen[name] = tick
				order = append(order, name)
			}
			lastSeen[name] = tick
		}
	}

	intervals := make([]tempInterval, 0, len(order))
	for _, name := range order {
		intervals = append(intervals, tempInterval{name, firstSeen[name], lastSeen[name]})
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start < intervals[j].start })

	type active struct {
		end   int
		color int
	}
	var actives []active
	rename := make(map[string]string, len(intervals))

	for _, iv := range intervals {
		live := actives[:0]
		for _, a := range actives {
			if a.end >= iv.start {
				live = append(live, a)
			}
		}
		actives = live

		used := make(map[int]bool, len(actives))
		for _, a := range actives {
			used[a.color] = true
		}
		color := 0
		for used[color] {
			color++
		}
		actives = append(actives, active{end: iv.end, color: color})
		rename[iv.name] = fmt.Sprintf("t%d", color+1)
	}
	return rename
}

// tempNamesIn returns the temp names ins reads or defines, in no
// particular order; duplicates are harmless since the caller only cares
// about first/last occurrence.
func tempNamesIn(ins *tac.Instruction) []string {
	var names []string
	if def := defOperand(ins); def != nil && def.IsTemp {
		names = append(names, tempName(def))
	}
	for _, slot := range readOperands(ins) {
		o := *slot
		if o != nil && o.IsTemp {
			names = append(names, tempName(o))
		}
	}
	return names
}

func renameTemps(ins tac.Instruction, rename map[string]string) tac.Instruction {
	ins.Result = renameOperand(ins.Result, rename)
	ins.Arg1 = renameOperand(ins.Arg1, rename)
	ins.Arg2 = renameOperand(ins.Arg2, rename)
	return ins
}

func renameOperand(o *tac.Operand, rename map[string]string) *tac.Operand {
	if o == nil || !o.IsTemp {
		return o
	}
	newName, ok := rename[tempName(o)]
	if !ok {
		return o
	}
	renamed := tac.Temp(newName, o.Typ)
	return &renamed
}
