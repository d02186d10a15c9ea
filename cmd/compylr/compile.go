package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/johnrickE/compylr/grammar"
	spec "github.com/johnrickE/compylr/spec/grammar"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output       *string
	report       *bool
	preferReduce *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile <grammar definition path>",
		Short:   "Compile a grammar definition into a parsing table",
		Example: `  compylr compile grammar.json -o parser.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.report = cmd.Flags().Bool("report", false, "also write a report describing all states and conflicts")
	compileFlags.preferReduce = cmd.Flags().Bool("prefer-reduce", false, "resolve shift/reduce conflicts precedence leaves undecided in favor of the reduce")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	var src []byte
	{
		var err error
		if len(args) > 0 {
			src, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("Cannot read the grammar definition file %s: %w", args[0], err)
			}
		} else {
			src, err = io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
		}
	}

	def := &spec.GrammarDef{}
	err := json.Unmarshal(src, def)
	if err != nil {
		return fmt.Errorf("Cannot parse the grammar definition: %w", err)
	}
	if def.Name == "" {
		return fmt.Errorf("a grammar definition must have a name")
	}

	gram, err := buildGrammar(def)
	if err != nil {
		return err
	}

	for _, w := range gram.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}

	opts := []grammar.CompileOption{
		grammar.EnableReporting(),
	}
	if *compileFlags.preferReduce {
		opts = append(opts, grammar.ConflictResolution(grammar.PolicyReducePreference))
	}

	cgram, report, err := grammar.Compile(gram, opts...)
	if err != nil {
		return err
	}

	err = writeCompiledGrammar(cgram, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output file: %w", err)
	}

	if *compileFlags.report {
		err = writeReport(report, cgram.Name, *compileFlags.output)
		if err != nil {
			return fmt.Errorf("Cannot write a report file: %w", err)
		}
	}

	sr, rr := report.CountConflicts()
	if sr+rr > 0 {
		fmt.Fprintf(os.Stderr, "%v conflicts (%v shift/reduce, %v reduce/reduce)\n", sr+rr, sr, rr)
	}

	return nil
}

func buildGrammar(def *spec.GrammarDef) (*grammar.Grammar, error) {
	b := grammar.NewGrammarBuilder(def.Name)
	for _, t := range def.Terminals {
		var opts []grammar.TerminalOption
		if t.Pattern != "" {
			opts = append(opts, grammar.Pattern(t.Pattern))
		}
		if t.Skip {
			opts = append(opts, grammar.Skip())
		}
		b.Terminal(t.Name, opts...)
	}
	for _, p := range def.Productions {
		b.Production(p.LHS, p.RHS...)
	}
	for _, level := range def.Precedence {
		switch level.Assoc {
		case "left":
			b.LeftAssoc(level.Terminals...)
		case "right":
			b.RightAssoc(level.Terminals...)
		default:
			return nil, fmt.Errorf("invalid associativity: %v ('left' or 'right' are allowed)", level.Assoc)
		}
	}
	b.Start(def.Start)
	return b.Build()
}

func writeCompiledGrammar(cgram *spec.CompiledGrammar, path string) error {
	var w io.Writer
	if path != "" {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	b, err := json.Marshal(cgram)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%v\n", string(b))
	return nil
}

// writeReport writes a report to <grammar-name>-report.json, placed in the
// same directory as the compiled grammar, or in the working directory when
// the compiled grammar goes to stdout.
func writeReport(report *spec.Report, gramName string, outPath string) error {
	dir := ""
	if outPath != "" {
		dir, _ = filepath.Split(outPath)
	}
	reportPath := filepath.Join(dir, gramName+"-report.json")

	f, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Fprintf(f, "%v\n", string(b))
	return nil
}
