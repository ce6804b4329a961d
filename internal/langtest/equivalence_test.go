package langtest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"zexus/config"
	"zexus/lexer"
	"zexus/parser"
	"zexus/tparser"
)

// samplePrograms are well-formed enough that both the tolerant parser
// and the production parser should agree on their shape. Constructs the
// production parser doesn't support (renderer declarations: import,
// screen, component, theme) are deliberately left out of this list —
// see shape.go's VisitImport et al. doc comment.
var samplePrograms = []struct {
	name   string
	source string
}{
	{"arithmetic", `let x = 1 + 2 * 3 - 4 / 2`},
	{"comparison", `let ok = 1 < 2 && 3 >= 3 || !false`},
	{"if_else", `
if x > 0 {
	print "positive"
} else {
	print "non-positive"
}
`},
	{"while_loop", `
let i = 0
while i < 10 {
	i = i + 1
}
`},
	{"for_each", `
for each item in [1, 2, 3] {
	print item
}
`},
	{"try_catch", `
try {
	let r = 1 / 0
} catch err {
	print err
}
`},
	{"action_decl_and_call", `
action add(a, b) {
	return a + b
}
let sum = add(1, 2)
`},
	{"lambda", `let double = lambda x -> x * 2`},
	{"list_and_map_literals", `
let l = [1, 2, 3]
let m = { "a": 1, "b": 2 }
`},
	{"event_and_emit", `
event Ping { count: int }
emit Ping { count: 1 }
`},
	{"method_call_and_index", `
let xs = [1, 2, 3]
let n = xs.length()
let first = xs[0]
`},
	{"contract_and_protocol", `
protocol Counter {
	increment()
}
contract Tally require Counter {
	persistent storage count
	action increment() {
		count = count + 1
	}
}
`},
}

// TestParserEquivalence asserts that the tolerant parser (package
// tparser, producing package ast) and the production parser (package
// parser, producing package cast) agree on the grammar shape of the
// same well-formed source, construct for construct. The two ASTs are
// distinct Go types with no common representation to compare directly,
// so each side is flattened to a Shape first (see shape.go) and
// compared with cmp.Diff, which gives a readable path-based diff on
// mismatch instead of a flat "not equal".
func TestParserEquivalence(t *testing.T) {
	for _, tc := range samplePrograms {
		t.Run(tc.name, func(t *testing.T) {
			lex := lexer.New(tc.source)
			tokens, lexDiags := lex.Scan()
			if len(lexDiags) > 0 {
				t.Fatalf("unexpected lexer diagnostics: %v", lexDiags)
			}

			interpProg, parseDiags := tparser.Parse(tokens, config.New())
			if len(parseDiags) > 0 {
				t.Fatalf("unexpected tolerant-parser diagnostics: %v", parseDiags)
			}

			compiledProg, err := parser.Make(tokens).Parse()
			if err != nil {
				t.Fatalf("unexpected production-parser error: %v", err)
			}

			interpShape := ShapeOfInterp(interpProg)
			compiledShape := ShapeOfCompiled(compiledProg)

			if diff := cmp.Diff(interpShape, compiledShape); diff != "" {
				t.Errorf("interpreter AST and compiler AST disagree on shape (-interp +compiled):\n%s", diff)
			}
		})
	}
}
