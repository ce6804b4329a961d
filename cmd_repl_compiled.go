package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"zexus/compiler"
	"zexus/lexer"
	"zexus/parser"
	"zexus/renderer"
	"zexus/semantic"
	"zexus/token"
	"zexus/vm"
)

// replCompiledCmd is "cRepl": the compiled-path REPL, one VM reused
// across the session with a fresh semantic analysis and compiler for
// each input. The analyzer sees only the current input, so a name bound
// by an earlier input is reported as undefined. Same shape as the teacher's own cRepl loop
// (accumulate a multi-line buffer until isInputReady says the braces
// balance and the last token isn't a dangling operator/keyword, then
// parse-analyze-compile-run that buffer and reset it).
type replCompiledCmd struct {
	dumpBytecode bool
}

func (*replCompiledCmd) Name() string { return "cRepl" }
func (*replCompiledCmd) Synopsis() string {
	return "Start a REPL session backed by the compiler and VM"
}
func (*replCompiledCmd) Usage() string {
	return `zexus cRepl`
}

func (cmd *replCompiledCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.dumpBytecode, "dumpBytecode", false, "print the disassembled bytecode for each evaluated line")
	f.BoolVar(&cmd.dumpBytecode, "du", false, "shorthand for dumpBytecode")
}

func (cmd *replCompiledCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to the Zexus programming language!")
	fmt.Println("")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.New(renderer.Null{})
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return subcommands.ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		lex := lexer.New(source)
		tokens, lexDiags := lex.Scan()
		if len(lexDiags) > 0 {
			for _, d := range lexDiags {
				fmt.Fprintln(os.Stderr, d.String())
			}
			buffer.Reset()
			continue
		}

		if !isInputReady(tokens) {
			continue
		}

		p := parser.Make(tokens)
		prog, err := p.Parse()
		if err != nil {
			if syntaxErr, ok := err.(parser.SyntaxError); ok && syntaxErr.Pos.Line == tokens[len(tokens)-1].Pos.Line {
				continue
			}
			fmt.Fprintf(os.Stdout, "Parse error: %v\n", err)
			buffer.Reset()
			continue
		}

		resolved, _, semDiags := semantic.Analyze(&prog)
		if len(semDiags) > 0 {
			for _, d := range semDiags {
				fmt.Fprintln(os.Stdout, d.String())
			}
			buffer.Reset()
			continue
		}

		bc, err := compiler.New().Compile(resolved)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			buffer.Reset()
			continue
		}

		if cmd.dumpBytecode {
			fmt.Fprint(os.Stdout, compiler.Disassemble(bc.Instructions))
		}

		result, runtimeErr := machine.Run(bc)
		if runtimeErr != nil {
			fmt.Fprintln(os.Stderr, runtimeErr.Error())
			buffer.Reset()
			continue
		}
		fmt.Println(result)
		buffer.Reset()
	}
}

// isInputReady checks whether braces are balanced and the last
// non-EOF token isn't a dangling operator/keyword that expects more
// input, so the REPL keeps buffering instead of trying (and failing)
// to parse a statement the user hasn't finished typing yet.
func isInputReady(tokens []token.Token) bool {
	braceBalance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			braceBalance++
		case token.RCUR:
			braceBalance--
		}
	}
	if braceBalance > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.TokenType {
	case token.ASSIGN,
		token.PLUS,
		token.MINUS,
		token.STAR,
		token.SLASH,
		token.PERCENT,
		token.BANG,
		token.EQUAL_EQUAL,
		token.NOT_EQUAL,
		token.LESS,
		token.LESS_EQUAL,
		token.LARGER,
		token.LARGER_EQUAL,
		token.AND_AND,
		token.OR_OR,
		token.COMMA,
		token.ARROW,
		token.LPA,
		token.LCUR,
		token.IF,
		token.ELSE,
		token.WHILE,
		token.FOR,
		token.ACTION,
		token.RETURN,
		token.LET,
		token.TRY,
		token.CATCH:
		return false
	}

	return true
}

// lastNonEOF returns the last non-EOF token, or nil if every token is EOF.
func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].TokenType != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}
