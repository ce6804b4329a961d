package ast

import "zexus/token"

// Pos is the interpreter AST's position type; every IA node carries one.
type Pos = token.Position

// Base is embedded by every node to satisfy Position() and to carry the
// tolerant parser's optional recovery notes ("skipped stray ';'", etc).
type Base struct {
	Pos   Pos
	Notes []string
}

func (b Base) Position() Pos { return b.Pos }
