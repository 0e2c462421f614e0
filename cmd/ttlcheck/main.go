// Command ttlcheck validates and evaluates type-transformation annotations
// from the command line, against a reference host built from an optional
// yaml seed file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string
var flagDebug bool

var rootCmd = &cobra.Command{
	Use:   "ttlcheck",
	Short: "Validate and evaluate type-transformation-language annotations",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "yaml file seeding the reference host's types and slots")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "dump the parsed term and result type")

	rootCmd.AddCommand(validateCmd, evalCmd, watchCmd)

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ttlcheck:", err)
		os.Exit(1)
	}
}
