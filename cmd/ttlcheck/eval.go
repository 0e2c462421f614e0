package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/krux02/ttl/stubhost"
	"github.com/krux02/ttl/ttl"
)

var evalCmd = &cobra.Command{
	Use:   "eval <expr-file>",
	Short: "Parse, validate, and evaluate a TTL annotation to a host type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term, diags, err := parseAndValidateFile(args[0])
		printDiagnostics(diags)
		if err != nil {
			return err
		}
		if term == nil {
			return errors.New("annotation is not a well-formed TTL term")
		}

		scope, err := loadScope(flagConfig)
		if err != nil {
			return err
		}
		host := stubhost.NewHost(scope)

		result, evalDiags := ttl.Eval(term, nil, nil, host)
		printDiagnostics(evalDiags)

		if flagDebug {
			spew.Fdump(os.Stdout, term, result)
		}
		fmt.Println(result)
		return nil
	},
}
