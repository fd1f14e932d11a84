package testutil

// RepeatingTokenGenerator returns the same suspension token every time.
//
// This enables deterministic test execution and golden snapshot comparison.
// The same scenario with the same RepeatingTokenGenerator produces
// byte-identical diagnostics.
//
// Unlike vnode.FixedGenerator, which returns tokens in sequence and
// panics on exhaustion, this generator never runs out. It is useful for
// scenarios where every suspension may share one token.
//
// Thread-safety: RepeatingTokenGenerator is stateless and safe for
// concurrent use.
type RepeatingTokenGenerator struct {
	token string
}

// NewRepeatingTokenGenerator creates a generator for the given token.
// If token is empty, Generate() returns "test-token-default".
func NewRepeatingTokenGenerator(token string) *RepeatingTokenGenerator {
	if token == "" {
		token = "test-token-default"
	}
	return &RepeatingTokenGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements vnode.TokenGenerator.
func (g *RepeatingTokenGenerator) Generate() string {
	return g.token
}
