// Package mips lowers an optimized tac.Program into MIPS32 assembly text
// (§4.7), the last stage of the pipeline. Grounded on
// original_source/mips/mips_generator.py's MIPSGenerator: a single
// straight-line pass over the instruction stream that appends text to a
// buffer while tracking a handful of pieces of state (discovered globals
// and string literals, a class-layout table, and a per-function
// temp-to-stack-slot map that resets at every FUNC_START). This is not a
// structured-IR-to-text printer in the style of pkg/asm.Printer — there is
// no MIPS AST to walk, since the source generator never builds one, and
// the per-instruction state (the temp map in particular) has to be
// threaded through the translation in instruction order rather than
// computed up front.
package mips

import (
	"fmt"
	"strings"

	"github.com/compiscript/ccc/pkg/symbols"
	"github.com/compiscript/ccc/pkg/tac"
)

// Generator lowers one tac.Program into a complete MIPS32 listing. Not
// safe for concurrent use, matching the rest of the pipeline (§5); a fresh
// Generator is built for each compilation.
type Generator struct {
	classes map[string]*symbols.ClassSymbol

	buf strings.Builder

	globalAddrs  map[string]bool
	stringLabels map[string]string
	stringOrder  []string

	tempMap           map[string]int
	currentFrameSize  int
	currentTempOffset int

	internalLabels int
}

// New creates a Generator over the class layouts pkg/collector produced —
// the same map handed to pkg/tacgen.New, since FIELD_ACCESS, FIELD_ASSIGN
// and NEW all need field offsets and instance sizes resolved against it.
func New(classes map[string]*symbols.ClassSymbol) *Generator {
	return &Generator{
		classes:      classes,
		globalAddrs:  make(map[string]bool),
		stringLabels: make(map[string]string),
	}
}

func (g *Generator) emit(s string) {
	g.buf.WriteString(s)
}

func (g *Generator) emitf(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}

// newInternalLabel mints a fresh label for a multi-instruction expansion
// (currently only the floored div/mod correction sequence) that needs a
// branch target private to that one expansion. Reused function/program
// labels never collide with these since every compiler-assigned label is
// either a "LN" tac.Label or a collector-assigned name with no leading
// underscore, while these are "_<prefix>_N".
func (g *Generator) newInternalLabel(prefix string) string {
	g.internalLabels++
	return fmt.Sprintf("_%s_%d", prefix, g.internalLabels)
}

// Generate lowers prog into a complete MIPS32 assembly listing: the data
// section (scanned in one pass over every instruction), then the code
// section, entered through main's fallthrough jump to _script_start (§3's
// "one real entry, one explicit jump over function bodies" — see
// pkg/tacgen's function-hoisting pass, which guarantees every FUNC_START..
// FUNC_END span appears contiguously ahead of the top-level statement
// instructions this jump skips over), then the runtime helpers.
func (g *Generator) Generate(prog *tac.Program) (string, error) {
	g.buf.Reset()
	g.scanForData(prog.Instructions)

	g.emit("# === data ===\n")
	g.buildDataSection()

	g.emit("\n# === code ===\n")
	g.emit(textPreamble)
	g.emit("\tmove $fp, $sp\n")
	g.emit("\tsubu $sp, $sp, 200\n")
	g.emit("\tj _script_start\n\n")

	resetFrame := func() {
		g.tempMap = make(map[string]int)
		g.currentFrameSize = 0
		g.currentTempOffset = 0
	}

	inFunction := false
	scriptStartEmitted := false
	for _, ins := range prog.Instructions {
		if ins.Op == tac.FUNC_START {
			inFunction = true
		}
		if !inFunction && !scriptStartEmitted {
			g.emit("_script_start:\n")
			scriptStartEmitted = true
			resetFrame() // the top-level script has no ENTER of its own
		}
		if err := g.translateInstruction(ins); err != nil {
			return "", err
		}
		if ins.Op == tac.FUNC_END {
			inFunction = false
			g.emit("\n")
		}
	}
	if !scriptStartEmitted {
		g.emit("_script_start:\n")
		resetFrame()
	}

	g.emit("\tjal _exit\n")
	g.emit("\n# === runtime helpers ===\n")
	g.emit(syscallHelpers)
	return g.buf.String(), nil
}
