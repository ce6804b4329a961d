// fallback.go is stage 4 of the tolerant parser's pipeline (spec
// §4.2.4): used when structural analysis (stage 1) reports the token
// stream isn't trustworthy — deeply malformed input with delimiters
// that never balance — or when config.Config.EnableAdvancedParsing is
// off (spec §6.3). It reruns the exact same context-stack grammar
// (statements.go/expressions.go) and the same recovery engine
// (recovery.go), just without stage 1's pre-segmentation: a Parser
// built with a nil blocks map falls back to indentation alone for
// colon-block extents (enclosingClose always reports "no boundary"),
// which is the only place the grammar ever consults stage 1's output.
// This is deliberately not a second, separately-written Pratt parser:
// duplicating the whole grammar a second time would double the surface
// that has to stay in sync with package parser's own equivalence
// invariant (spec §8) for no behavioral benefit, since every other
// grammar decision here is already tie-broken locally (previous-token
// lookback, not global segmentation).
package tparser

import (
	"zexus/ast"
	"zexus/config"
	"zexus/diag"
	"zexus/token"
)

func parseFallback(tokens []token.Token, cfg config.Config, prior []diag.Diagnostic) (ast.Program, []diag.Diagnostic) {
	p := &Parser{tokens: tokens, blocks: nil, cfg: cfg, diags: prior}
	prog := p.parseProgram()
	return prog, p.diags
}
