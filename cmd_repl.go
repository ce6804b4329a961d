package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"zexus/evaluator"
	"zexus/lexer"
	"zexus/renderer"
	"zexus/tparser"
)

// replCmd implements the tree-walking REPL (spec §4.4), one evaluator
// reused across every input line so `let`s and `action`s persist
// across the session the way the teacher's own repl() loop reused one
// interpreter.Interpreter value. github.com/chzyer/readline replaces
// the teacher's bare bufio.Scanner loop with history and line editing.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive tree-walking REPL session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive REPL backed by the tolerant parser and evaluator.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\n\nWelcome to Zexus!")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	ev := evaluator.New(renderer.Null{})

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return subcommands.ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}
		if line == "exit" {
			return subcommands.ExitSuccess
		}
		if line == "" {
			continue
		}

		lex := lexer.New(line)
		tokens, lexDiags := lex.Scan()
		for _, d := range lexDiags {
			fmt.Fprintln(os.Stderr, d.String())
		}

		prog, diags := tparser.Parse(tokens, globalConfig)
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.String())
		}

		result, err := ev.Run(&prog)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			continue
		}
		fmt.Println(result)
	}
}
