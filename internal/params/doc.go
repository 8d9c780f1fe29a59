// Package params resolves declared template values against a parameter
// context and an explicit random source.
//
// A declared value is one of four variants:
//   - Literal: a fixed value
//   - Placeholder: text with {{name}} markers filled from the context
//   - Computed: a function of (Context, RNG), optionally compiled from an
//     expr-lang expression
//   - Choice: a uniformly drawn alternative, itself resolved recursively
//
// Resolution is pure apart from the RNG state threaded through it. There is
// no package-level random source: every caller supplies its own RNG, so a
// fixed seed reproduces the same output on every run.
//
// Unbound markers are left verbatim rather than reported. Callers that need
// to detect them use Unbound, or run template validation.
package params
