// cmd/zexus is the command-line front end: the teacher's own
// subcommands.Register-based dispatcher (never actually wired up in its
// own main.go, whose func main() called a bare repl() loop instead of
// registering anything), fixed and generalized to the six subcommands
// spec.md's front end calls for: two tree-walking commands (run, repl)
// over the tolerant parser and evaluator, two compiled commands (runC,
// cRepl) over the production parser, semantic analyzer, emitter and
// VM, emit for standalone bytecode inspection, and ast for dumping a
// parsed program as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"zexus/config"
)

// globalConfig is built once from the process's global flags and
// threaded into every subcommand that consults §6.3's parser/runtime
// flags, replacing the package-level globals the teacher never needed
// (it only ever had one parser, one interpreter, no flags to share
// across commands).
var globalConfig config.Config

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&runCompiledCmd{}, "")
	subcommands.Register(&replCompiledCmd{}, "")
	subcommands.Register(&emitBytecodeCmd{}, "")
	subcommands.Register(&astCmd{}, "")

	tolerable := flag.Bool("tolerable", false, "record the tolerable syntax style instead of universal; no parser reads this setting")
	noAdvancedParsing := flag.Bool("no-advanced-parsing", false, "disable the tolerant parser's structural/context-stack stages and always fall back to the plain recursive-descent pass")
	debug := flag.Bool("debug", false, "enable debug logging in the parsers/evaluator/VM")
	flag.Parse()

	style := config.Universal
	if *tolerable {
		style = config.Tolerable
	}
	globalConfig = config.New(
		config.WithSyntaxStyle(style),
		config.WithAdvancedParsing(!*noAdvancedParsing),
		config.WithDebugLogs(*debug),
	)

	os.Exit(int(subcommands.Execute(context.Background())))
}

func debugf(format string, args ...interface{}) {
	if globalConfig.EnableDebugLogs {
		fmt.Fprintf(os.Stderr, "debug: "+format+"\n", args...)
	}
}
