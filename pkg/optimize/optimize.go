// Package optimize implements the local TAC optimization passes of §4.6:
// constant folding, algebraic simplification, copy/constant propagation,
// dead code and unreachable-code elimination, redundant-jump removal, and a
// final temp-coloring pass that densifies each function's temporaries down
// to t1..tK, grounded on pkg/regalloc's interference-graph/greedy-coloring
// machinery (interference.go, irc.go) adapted from machine registers to TAC
// temporaries (§9's "no register allocation beyond stack slots + temp
// coloring" Non-goal rules out anything past this).
//
// original_source/intermediate/optimizer.py is the nominal grounding source,
// but the retrieved copy is a truncated stub: its optimize() method calls
// constant_folding/constant_propagation/algebraic_simplification/
// _surgical_optimize, none of which have a body left in the retrieved file.
// The pass list and ordering below is reconstructed from its docstring
// ("optimizaciones locales básicas") and phase banners, the pack's other
// local-optimization examples, and spec.md/SPEC_FULL.md §4.6's description
// of what the optimizer must preserve (program semantics, label uniqueness,
// operand shape) — not a line-for-line port of unavailable code.
package optimize

import "github.com/compiscript/ccc/pkg/tac"

// Options toggles individual passes; every field defaults to enabled (the
// zero value of a bool is `false`, so Options is built through NewOptions
// rather than relied on as a zero value), following pipeline.Options'
// plain-struct style (§0's AMBIENT STACK).
type Options struct {
	ConstantFolding bool
	Propagation     bool
	DeadCodeElim    bool
	JumpSimplify    bool
	TempColoring    bool
}

// NewOptions returns an Options with every pass enabled.
func NewOptions() Options {
	return Options{
		ConstantFolding: true,
		Propagation:     true,
		DeadCodeElim:    true,
		JumpSimplify:    true,
		TempColoring:    true,
	}
}

// maxRounds bounds how many times the shrink/simplify passes are re-run.
// Each round can only ever fold, propagate into, or delete instructions, so
// the instruction count is non-increasing and the loop below exits early
// the moment a round leaves the instruction count unchanged; this is just a
// backstop.
const maxRounds = 8

// Optimize runs the enabled passes over prog's instructions in a fixed
// order and returns a new Program (the input is left untouched). Folding,
// propagation, dead-code elimination and jump simplification each expose
// further opportunities for one another (folding feeds propagation,
// propagation feeds dead code, dead code feeds jump simplification), so
// they're re-run together until a round leaves the instruction count
// unchanged; coloring always runs last, once, since it renames rather than
// removes.
func Optimize(prog *tac.Program, opts Options) *tac.Program {
	insns := append([]tac.Instruction(nil), prog.Instructions...)

	for round := 0; round < maxRounds; round++ {
		before := len(insns)

		if opts.ConstantFolding {
			insns = foldConstants(insns)
			insns = simplifyAlgebraic(insns)
		}
		if opts.Propagation {
			insns = propagateCopiesAndConstants(insns)
		}
		if opts.DeadCodeElim {
			insns = eliminateDeadCode(insns)
		}
		if opts.JumpSimplify {
			insns = simplifyJumps(insns)
			insns = removeUnreachable(insns)
			insns = removeUnusedLabels(insns)
		}

		if len(insns) == before {
			break
		}
	}

	if opts.TempColoring {
		insns = colorTemps(insns)
	}

	return &tac.Program{Instructions: insns}
}
