// Package config holds the process-wide flags of spec §6.3. Their
// lifecycle is the process lifetime: a single Config value is built once
// at startup (by cmd/zexus) and threaded into the parsers/evaluator/VM
// that need to consult it, rather than read from package-level globals
// scattered across the tree the way the teacher's subcommands each kept
// their own ad hoc flag.
package config

// SyntaxStyle records the selected surface style on Config. No parser
// reads it: the production parser accepts colon-style blocks under
// either style.
type SyntaxStyle string

const (
	Universal SyntaxStyle = "universal"
	Tolerable SyntaxStyle = "tolerable"
)

// Config is the full set of process-wide flags. Zero value is invalid;
// use Default or New.
type Config struct {
	SyntaxStyle           SyntaxStyle
	EnableAdvancedParsing bool
	EnableDebugLogs       bool
}

// Default matches spec §6.3's documented defaults.
func Default() Config {
	return Config{
		SyntaxStyle:           Universal,
		EnableAdvancedParsing: true,
		EnableDebugLogs:       false,
	}
}

// Option mutates a Config under construction.
type Option func(*Config)

func WithSyntaxStyle(s SyntaxStyle) Option {
	return func(c *Config) { c.SyntaxStyle = s }
}

func WithAdvancedParsing(enabled bool) Option {
	return func(c *Config) { c.EnableAdvancedParsing = enabled }
}

func WithDebugLogs(enabled bool) Option {
	return func(c *Config) { c.EnableDebugLogs = enabled }
}

// New builds a Config starting from Default and applying opts in order.
func New(opts ...Option) Config {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
