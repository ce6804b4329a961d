// structural.go is stage 1 of the tolerant parser's pipeline (spec
// §4.2.1): a single left-to-right pass over the whole token stream that
// locates every matching delimiter pair ({}, [], ()) before any grammar
// rule is applied, and applies the one tie-break the lexical stream alone
// can resolve — tie-break rule (a): a `{` immediately after `=`, `:`, or
// `,` opens a Map block, otherwise a Brace block (the context-stack
// parser in statements.go/expressions.go refines a Brace block further
// into If/While/ForEach/Try/Catch/ActionBody/top by looking at what
// token introduced it, since that is a grammar-level decision this
// blind scan can't make).
// An unmatched closing delimiter applies tie-break rule (c): it
// terminates the innermost open block early and records a brace_mismatch
// diagnostic rather than scanning past EOF looking for a partner that
// isn't there.
package tparser

import (
	"zexus/diag"
	"zexus/token"
)

type blockKind int

const (
	blockBrace blockKind = iota
	blockMap
	blockBracket
	blockParen
)

// block is one matched delimiter pair found by segment, recorded by the
// index of its opening and closing delimiter tokens (inclusive) so later
// stages can slice tokens[open+1:close] for the body without re-scanning
// for balance themselves.
type block struct {
	kind  blockKind
	open  int
	close int
}

// segment finds every matched delimiter pair in tokens and returns them
// indexed by their opening token's position, plus any brace_mismatch
// diagnostics produced by an unmatched closer. trusted is false when the
// scan ends with unclosed delimiters still on the stack — deeply
// malformed input the context-stack parser has no clean slices to work
// from, cueing fallback.go's degraded path.
func segment(tokens []token.Token) (byOpen map[int]block, diags []diag.Diagnostic, trusted bool) {
	byOpen = make(map[int]block)
	var stack []int // indices into tokens of unmatched openers

	openKind := func(i int) (blockKind, bool) {
		switch tokens[i].TokenType {
		case token.LCUR:
			if i > 0 {
				switch tokens[i-1].TokenType {
				case token.ASSIGN, token.COLON, token.COMMA:
					return blockMap, true
				}
			}
			return blockBrace, true
		case token.LBRACKET:
			return blockBracket, true
		case token.LPA:
			return blockParen, true
		}
		return 0, false
	}

	closerFor := func(k blockKind) token.TokenType {
		switch k {
		case blockBracket:
			return token.RBRACKET
		case blockParen:
			return token.RPA
		default:
			return token.RCUR
		}
	}

	for i, t := range tokens {
		if t.TokenType == token.EOF {
			break
		}
		if kind, ok := openKind(i); ok {
			stack = append(stack, i)
			_ = kind
			continue
		}
		switch t.TokenType {
		case token.RCUR, token.RBRACKET, token.RPA:
			if len(stack) == 0 {
				diags = append(diags, diag.Diagnostic{
					Kind:     diag.Syntax,
					Message:  "unmatched closing '" + string(t.TokenType) + "'",
					Pos:      t.Pos,
					Recovery: "brace_mismatch: ignored stray closer",
				})
				continue
			}
			openIdx := stack[len(stack)-1]
			kind, _ := openKind(openIdx)
			if closerFor(kind) != t.TokenType {
				// Rule (c): a mismatched closer still terminates the
				// innermost open block rather than being swallowed —
				// otherwise one typo cascades through the rest of the
				// file's delimiter matching.
				diags = append(diags, diag.Diagnostic{
					Kind:     diag.Syntax,
					Message:  "mismatched closing delimiter '" + string(t.TokenType) + "'",
					Pos:      t.Pos,
					Recovery: "brace_mismatch: closed innermost block early",
				})
			}
			stack = stack[:len(stack)-1]
			byOpen[openIdx] = block{kind: kind, open: openIdx, close: i}
		}
	}

	trusted = len(stack) == 0
	for _, openIdx := range stack {
		diags = append(diags, diag.Diagnostic{
			Kind:     diag.Syntax,
			Message:  "unclosed '" + string(tokens[openIdx].TokenType) + "'",
			Pos:      tokens[openIdx].Pos,
			Recovery: "brace_mismatch: reached end of input still open",
		})
	}
	return byOpen, diags, trusted
}

// enclosingClose finds the innermost structural block (from stage 1's
// segmentation) that contains the parser's current cursor position, and
// returns the index of its closing delimiter token. Used by the colon-
// block tolerance (statements.go) to bound a colon-block's body at "the
// next closing brace of an enclosing block" per spec §4.2's tolerance
// list, on top of the indentation heuristic. Returns the index of the
// trailing EOF token, false when the cursor is at the top level (no
// enclosing block at all, in fallback mode, or in a degenerate parse).
func (p *Parser) enclosingClose() (int, bool) {
	best := -1
	bestSpan := -1
	for _, b := range p.blocks {
		if b.open < p.current && p.current <= b.close {
			span := b.close - b.open
			if best == -1 || span < bestSpan {
				best = b.close
				bestSpan = span
			}
		}
	}
	if best == -1 {
		return len(p.tokens) - 1, false
	}
	return best, true
}
