// Package pipeline wires the five backend stages — Pass 1 collection, Pass
// 2 type checking, TAC generation, TAC optimization, MIPS generation — into
// one entry point shared by cmd/compiscriptc and pkg/ide, following
// cmd/ralph-cc/main.go's own chaining of clightgen -> cshmgen -> cminorgen
// -> selection -> rtlgen -> regalloc -> linearize -> stacking -> asmgen
// through a sequence of plain function calls rather than a generic
// "pass" interface the teacher's own pipeline doesn't use either.
package pipeline

import (
	"github.com/pkg/errors"

	"github.com/compiscript/ccc/pkg/ast"
	"github.com/compiscript/ccc/pkg/cerr"
	"github.com/compiscript/ccc/pkg/collector"
	"github.com/compiscript/ccc/pkg/mips"
	"github.com/compiscript/ccc/pkg/optimize"
	"github.com/compiscript/ccc/pkg/symbols"
	"github.com/compiscript/ccc/pkg/tac"
	"github.com/compiscript/ccc/pkg/tacgen"
	"github.com/compiscript/ccc/pkg/typecheck"
)

// Options toggles what a Run produces beyond the mandatory error list,
// following the ambient-stack rule (§0) that compiler options are a plain
// struct threaded down the pipeline rather than read from a config file.
type Options struct {
	// Optimize runs pkg/optimize's passes over the generated TAC before MIPS
	// generation. Disabling it is useful for debugging raw codegen output.
	Optimize bool
	// EmitMIPS runs the MIPS generator. The IDE collaborator's plain
	// /compile request always leaves this off; the CLI turns it on when asked
	// for assembly output.
	EmitMIPS bool
	// EmitTAC keeps the (optimized, if Optimize is set) TAC program text on
	// Result.TAC. The IDE's ?tac=1 flag turns this on.
	EmitTAC bool
}

// Result collects everything a Run produced: the accumulated diagnostics
// (always present, possibly empty), the Pass 1 scope tree (for a symbols
// dump), and the optional TAC/MIPS text controlled by Options.
type Result struct {
	Errs    *cerr.Collector
	Scope   *symbols.Scope
	Classes map[string]*symbols.ClassSymbol
	TAC     string // empty unless Options.EmitTAC
	MIPS    string // empty unless Options.EmitMIPS and there were no errors
}

// Run drives prog through Pass 1, Pass 2, TAC generation, optimization, and
// MIPS generation, accumulating diagnostics rather than stopping at the
// first one (§7). MIPS generation is skipped whenever any pass reported a
// diagnostic — lowering a program known to be ill-typed has no defined
// meaning — and its own internal faults (an unresolved class layout, an
// unsupported TAC op — both should be unreachable once Pass 2 has accepted
// the program) escalate as a wrapped error rather than a diagnostic,
// matching §7's one carve-out for TAC/MIPS generation faults.
func Run(prog *ast.Program, opts Options) (*Result, error) {
	errs := cerr.NewCollector()

	col := collector.New(errs)
	colRes := col.Collect(prog)

	chk := typecheck.New(errs, colRes.ScopeByNode, colRes.Classes)
	chkRes := chk.Check(prog)

	res := &Result{Errs: errs, Scope: colRes.Global, Classes: colRes.Classes}
	if errs.HasErrors() {
		return res, nil
	}

	gen := tacgen.New(colRes.ScopeByNode, colRes.Classes, chkRes.TypeByNode)
	tacProg, err := gen.Generate(prog)
	if err != nil {
		return res, errors.Wrap(err, "pipeline: TAC generation failed")
	}

	if opts.Optimize {
		tacProg = optimize.Optimize(tacProg, optimize.NewOptions())
	}

	if opts.EmitTAC {
		res.TAC = tacProg.String()
	}

	if opts.EmitMIPS {
		out, err := mipsProgram(tacProg, colRes.Classes)
		if err != nil {
			return res, errors.Wrap(err, "pipeline: MIPS generation failed")
		}
		res.MIPS = out
	}

	return res, nil
}

func mipsProgram(prog *tac.Program, classes map[string]*symbols.ClassSymbol) (string, error) {
	return mips.New(classes).Generate(prog)
}
