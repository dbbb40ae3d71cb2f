package mips

import (
	"strings"

	"github.com/compiscript/ccc/pkg/tac"
)

// loadOp emits MIPS to load operand op's VALUE into reg. Grounded on
// MIPSGenerator._load_op, but dispatching on Operand.IsTemp/IsConstant
// directly rather than the historical string-prefix sniffing
// (_is_temp_name's "starts with 't' and isn't true/this" heuristic).
func (g *Generator) loadOp(reg string, op *tac.Operand) {
	if op == nil {
		g.emitf("\tli %s, 0\n", reg)
		return
	}
	if op.IsConstant {
		g.loadConstant(reg, op)
		return
	}
	if op.IsTemp {
		off := g.tempOffset(tempName(op))
		g.emitf("\tlw %s, -%d($fp)\n", reg, off)
		return
	}

	name, _ := op.Value.(string)
	switch {
	case name == "this":
		g.emitf("\tlw %s, 8($fp)\n", reg)
	case strings.HasPrefix(name, "FP["):
		g.emitf("\tlw %s, %s($fp)\n", reg, fpOffset(name))
	case strings.HasPrefix(name, "0x"):
		g.emitf("\tla $at, global_%s\n", name[2:])
		g.emitf("\tlw %s, 0($at)\n", reg)
	default:
		g.emitf("\t# unrecognized load operand %q\n", name)
	}
}

func (g *Generator) loadConstant(reg string, op *tac.Operand) {
	switch v := op.Value.(type) {
	case string:
		g.emitf("\tla %s, %s\n", reg, g.stringLabels[v])
	case bool:
		n := 0
		if v {
			n = 1
		}
		g.emitf("\tli %s, %d\n", reg, n)
	case nil:
		g.emitf("\tli %s, 0\n", reg)
	default:
		g.emitf("\tli %s, %v\n", reg, v)
	}
}

// storeOp emits MIPS to save reg into operand op's LOCATION.
func (g *Generator) storeOp(reg string, op *tac.Operand) {
	if op == nil {
		return
	}
	if op.IsTemp {
		off := g.tempOffset(tempName(op))
		g.emitf("\tsw %s, -%d($fp)\n", reg, off)
		return
	}

	name, _ := op.Value.(string)
	switch {
	case strings.HasPrefix(name, "0x"):
		g.emitf("\tla $at, global_%s\n", name[2:])
		g.emitf("\tsw %s, 0($at)\n", reg)
	case strings.HasPrefix(name, "FP["):
		g.emitf("\tsw %s, %s($fp)\n", reg, fpOffset(name))
	default:
		g.emitf("\t# unrecognized store target %q\n", name)
	}
}

// getAddr emits MIPS to load the ADDRESS of op (used by DEREF) into reg.
func (g *Generator) getAddr(reg string, op *tac.Operand) {
	name, _ := op.Value.(string)
	switch {
	case strings.HasPrefix(name, "0x"):
		g.emitf("\tla %s, global_%s\n", reg, name[2:])
	case strings.HasPrefix(name, "FP["):
		g.emitf("\taddi %s, $fp, %s\n", reg, fpOffset(name))
	default:
		g.emitf("\t# unrecognized address operand %q\n", name)
	}
}

// tempOffset lazily assigns and memoizes a per-function stack slot for a
// temp name: each gets 4 bytes, placed just past the locals region
// (current_frame_size), growing further from $fp as more temps are seen.
func (g *Generator) tempOffset(name string) int {
	if off, ok := g.tempMap[name]; ok {
		return off
	}
	g.currentTempOffset += 4
	off := g.currentFrameSize + g.currentTempOffset
	g.tempMap[name] = off
	return off
}

func tempName(op *tac.Operand) string {
	s, _ := op.Value.(string)
	return s
}

// fpOffset extracts the bracketed offset from an "FP[-8]"-shaped operand
// name.
func fpOffset(name string) string {
	return name[3 : len(name)-1]
}
