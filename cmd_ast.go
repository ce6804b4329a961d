package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"zexus/lexer"
	"zexus/parser"
	"zexus/tparser"
)

// astCmd is "ast": parses a source file and prints its parsed program
// as indented JSON, the spec's standalone replacement for the
// teacher's cRepl-only "-dumpAST" flag (cmd_repl_compiled.go). Defaults
// to the tolerant parser, since it always returns a Program even for
// malformed input; -strict switches to the production parser, which
// aborts on the first SyntaxError.
type astCmd struct {
	strict bool
}

func (*astCmd) Name() string     { return "ast" }
func (*astCmd) Synopsis() string { return "Parse a source file and print its AST as JSON" }
func (*astCmd) Usage() string {
	return `ast <file>:
  Print the parsed program as indented JSON.
`
}

func (cmd *astCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.strict, "strict", false, "use the production parser instead of the tolerant parser")
}

func (cmd *astCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	lex := lexer.New(string(data))
	tokens, lexDiags := lex.Scan()
	for _, d := range lexDiags {
		fmt.Fprintln(os.Stderr, d.String())
	}

	var tree any
	if cmd.strict {
		p := parser.Make(tokens)
		prog, err := p.Parse()
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return subcommands.ExitFailure
		}
		tree = prog
	} else {
		prog, diags := tparser.Parse(tokens, globalConfig)
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.String())
		}
		tree = prog
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tree); err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to encode AST: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
