package parser

import "zexus/token"

// SyntaxError is the production parser's hard-failure type: unlike the
// tolerant parser, it aborts at the first one rather than collecting a
// diagnostics list.
type SyntaxError struct {
	Pos     token.Position
	Message string
}

func (e SyntaxError) Error() string {
	return "💥 Zexus Syntax error:\n" + e.Pos.String() + " - " + e.Message
}
