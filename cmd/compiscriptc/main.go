package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/compiscript/ccc/pkg/ast"
	"github.com/compiscript/ccc/pkg/ide"
	"github.com/compiscript/ccc/pkg/pipeline"
	"github.com/compiscript/ccc/pkg/symbols"
)

var version = "0.1.0"

// Debug-dump flags, CompCert/ralph-cc style (cmd/ralph-cc/main.go's
// dParse/dClight/... family): each turns on one extra stage's text output
// on `compile`/`dump` alongside the normal MIPS result.
var (
	dTAC bool
	dSym bool
)

var outputFile string
var noOptimize bool
var serveAddr string

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the single-dash spellings accepted alongside pflag's
// usual double-dash form, matching cmd/ralph-cc/main.go's own
// CompCert-compatibility shim.
var debugFlagNames = []string{"dtac", "dsym"}

func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, name := range debugFlagNames {
			if arg == "-"+name {
				result[i] = "--" + name
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "compiscriptc",
		Short:         "compiscriptc compiles Compiscript programs to MIPS32 assembly",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.AddCommand(newCompileCmd(out, errOut))
	rootCmd.AddCommand(newDumpCmd(out, errOut))
	rootCmd.AddCommand(newServeCmd(out, errOut))
	return rootCmd
}

// newCompileCmd wires `compiscriptc compile <program.json>`. Input is a
// JSON-serialized AST (pkg/ast.DecodeProgram's wire format), not raw
// Compiscript source text: the grammar and parser that would produce an AST
// from source are an out-of-scope external collaborator (spec.md §1), so
// this CLI, like pkg/ide, starts one stage downstream of where a parser
// would sit.
func newCompileCmd(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [program.json]",
		Short: "compile a JSON-encoded AST to MIPS32 assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doCompile(args[0], out, errOut)
		},
	}
	cmd.Flags().BoolVar(&dTAC, "dtac", false, "also print the generated TAC")
	cmd.Flags().BoolVar(&dSym, "dsym", false, "also print the Pass 1 scope tree")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write MIPS assembly to this file instead of stdout")
	cmd.Flags().BoolVar(&noOptimize, "no-optimize", false, "skip pkg/optimize's passes")
	return cmd
}

func doCompile(filename string, out, errOut io.Writer) error {
	prog, err := loadProgram(filename)
	if err != nil {
		fmt.Fprintf(errOut, "compiscriptc: %v\n", err)
		return err
	}

	opts := pipeline.Options{Optimize: !noOptimize, EmitMIPS: true, EmitTAC: dTAC}
	result, err := pipeline.Run(prog, opts)
	if err != nil {
		fmt.Fprintf(errOut, "compiscriptc: %v\n", err)
		return err
	}

	if result.Errs.HasErrors() {
		fmt.Fprintln(errOut, result.Errs.Pretty())
		return fmt.Errorf("compiscriptc: compilation failed with %d error(s)", len(result.Errs.Errors()))
	}

	if dSym {
		dumped, err := yaml.Marshal(symbols.Dump(result.Scope))
		if err != nil {
			return err
		}
		fmt.Fprintf(errOut, "--- symbols ---\n%s\n", dumped)
	}
	if dTAC {
		fmt.Fprintf(errOut, "--- tac ---\n%s\n", result.TAC)
	}

	if outputFile != "" {
		return os.WriteFile(outputFile, []byte(result.MIPS), 0o644)
	}
	fmt.Fprint(out, result.MIPS)
	return nil
}

// newDumpCmd wires `compiscriptc dump <program.json>`, a debugging entry
// point that runs only through whichever of Pass 1/TAC generation --dsym/
// --dtac select, with no MIPS generation and no exit-code gate on semantic
// errors (unlike `compile`) — useful for inspecting a program that doesn't
// fully type-check yet.
func newDumpCmd(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [program.json]",
		Short: "dump the scope tree and/or TAC for a JSON-encoded AST",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doDump(args[0], out, errOut)
		},
	}
	cmd.Flags().BoolVar(&dSym, "dsym", true, "print the Pass 1 scope tree")
	cmd.Flags().BoolVar(&dTAC, "dtac", true, "print the generated TAC")
	return cmd
}

func doDump(filename string, out, errOut io.Writer) error {
	prog, err := loadProgram(filename)
	if err != nil {
		fmt.Fprintf(errOut, "compiscriptc: %v\n", err)
		return err
	}

	result, err := pipeline.Run(prog, pipeline.Options{Optimize: true, EmitTAC: dTAC})
	if err != nil {
		fmt.Fprintf(errOut, "compiscriptc: %v\n", err)
		return err
	}

	if result.Errs.HasErrors() {
		fmt.Fprintln(errOut, result.Errs.Pretty())
	}
	if dSym {
		dumped, err := yaml.Marshal(symbols.Dump(result.Scope))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "--- symbols ---\n%s\n", dumped)
	}
	if dTAC && result.TAC != "" {
		fmt.Fprintf(out, "--- tac ---\n%s\n", result.TAC)
	}
	return nil
}

// newServeCmd wires `compiscriptc serve`, hosting pkg/ide's POST /compile
// collaborator — the in-process successor to original_source/ide/server.py
// (there run under uvicorn; here under net/http, since no framework in the
// pack covers this surface and the teacher itself never serves HTTP).
func newServeCmd(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the IDE collaborator's POST /compile endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			mux := http.NewServeMux()
			ide.NewHandler().RegisterRoutes(mux)
			fmt.Fprintf(errOut, "compiscriptc: serving on %s\n", serveAddr)
			return http.ListenAndServe(serveAddr, mux)
		},
	}
	cmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
	return cmd
}

func loadProgram(filename string) (*ast.Program, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	var raw json.RawMessage = data
	prog, err := ast.DecodeProgram(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}
	return prog, nil
}
