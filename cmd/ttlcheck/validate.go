package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/krux02/ttl/exprparse"
	"github.com/krux02/ttl/ttl"
)

var validateCmd = &cobra.Command{
	Use:   "validate <expr-file>",
	Short: "Parse and syntactically validate a TTL annotation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term, diags, err := parseAndValidateFile(args[0])
		if err != nil {
			return err
		}
		printDiagnostics(diags)
		if flagDebug && term != nil {
			spew.Fdump(os.Stdout, term)
		}
		if term == nil {
			return errors.New("annotation is not a well-formed TTL term")
		}
		return nil
	},
}

func parseAndValidateFile(path string) (ttl.Term, []ttl.Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", path)
	}
	node, perrs := exprparse.Parse(string(data))
	if len(perrs) > 0 {
		for _, pe := range perrs {
			fmt.Fprintln(os.Stderr, "parse error:", pe.Error())
		}
		return nil, nil, errors.Errorf("%s: %d parse error(s)", path, len(perrs))
	}
	term, diags, ok := ttl.Validate(node)
	if !ok {
		return nil, diags, nil
	}
	return term, diags, nil
}

func printDiagnostics(diags []ttl.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%d:%d: %s\n", d.Pos.Line, d.Pos.Col, d.Message())
	}
}
