package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/johnrickE/compylr/driver"
	spec "github.com/johnrickE/compylr/spec/grammar"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source    *string
	onlyParse *bool
	json      *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <compiled grammar path>",
		Short:   "Parse a text stream",
		Example: `  cat src | compylr parse grammar.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.onlyParse = cmd.Flags().Bool("only-parse", false, "when this option is enabled, the parser doesn't build a syntax tree")
	parseFlags.json = cmd.Flags().Bool("json", false, "enable JSON output of a syntax tree")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	src := os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	toks, err := driver.NewTokenStream(cgram, src)
	if err != nil {
		return err
	}

	gram := driver.NewGrammar(cgram)

	var opts []driver.ParserOption
	var treeAct *driver.SyntaxTreeActionSet
	if !*parseFlags.onlyParse {
		treeAct = driver.NewSyntaxTreeActionSet(gram)
		opts = append(opts, driver.SemanticAction(treeAct))
	}

	p, err := driver.NewParser(toks, gram, opts...)
	if err != nil {
		return err
	}

	err = p.Parse()
	if err != nil {
		return err
	}

	if treeAct != nil {
		if *parseFlags.json {
			b, err := json.Marshal(treeAct.Tree())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%v\n", string(b))
		} else {
			driver.PrintTree(os.Stdout, treeAct.Tree())
		}
	}

	return nil
}

func readCompiledGrammar(path string) (*spec.CompiledGrammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cgram := &spec.CompiledGrammar{}
	err = json.Unmarshal(data, cgram)
	if err != nil {
		return nil, err
	}
	return cgram, nil
}
