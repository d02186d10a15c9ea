package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "compylr",
	Short: "Generate a portable canonical LR(1) parsing table from a grammar",
	Long: `compylr provides two features:
- Generates a portable canonical LR(1) parsing table from a grammar definition.
- Parses a text stream according to a compiled grammar.
  This feature is primarily aimed at debugging the grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
