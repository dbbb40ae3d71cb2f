package mips

import (
	"fmt"
	"sort"
	"strings"

	"github.com/compiscript/ccc/pkg/tac"
)

// scanForData makes a single pass over every instruction, assigning a
// "_str_N" label to each distinct string constant in first-occurrence
// order (only Arg1/Arg2 are ever checked — a Result is never itself a
// constant) and collecting every "0x..."-prefixed operand value (Result,
// Arg1 or Arg2) into the set of global addresses later sorted for .data
// emission. This specific asymmetry — strings insertion-ordered, globals
// sorted — matches original_source/mips/mips_generator.py's
// _scan_for_data/_build_data_section exactly.
func (g *Generator) scanForData(insns []tac.Instruction) {
	for _, ins := range insns {
		for _, op := range []*tac.Operand{ins.Arg1, ins.Arg2} {
			if op == nil || !op.IsConstant {
				continue
			}
			s, ok := op.Value.(string)
			if !ok {
				continue
			}
			if _, seen := g.stringLabels[s]; !seen {
				g.stringLabels[s] = fmt.Sprintf("_str_%d", len(g.stringOrder))
				g.stringOrder = append(g.stringOrder, s)
			}
		}
		for _, op := range []*tac.Operand{ins.Result, ins.Arg1, ins.Arg2} {
			if op == nil {
				continue
			}
			if s, ok := op.Value.(string); ok && strings.HasPrefix(s, "0x") {
				g.globalAddrs[s] = true
			}
		}
	}
}

// buildDataSection emits the runtime data preamble, one ".word 0" per
// global address in sorted order, then one ".asciiz" per string literal in
// first-seen order.
func (g *Generator) buildDataSection() {
	g.emit(dataPreamble)

	addrs := make([]string, 0, len(g.globalAddrs))
	for a := range g.globalAddrs {
		addrs = append(addrs, a)
	}
	sort.Strings(addrs)
	for _, a := range addrs {
		g.emitf("global_%s: .word 0\n", a[2:])
	}

	for _, s := range g.stringOrder {
		g.emitf("%s: .asciiz \"%s\"\n", g.stringLabels[s], escapeString(s))
	}
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
