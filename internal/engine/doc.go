// Package engine turns templates into placed map events.
//
// A Factory builds one Instance from a template: it resolves the template's
// parameters against the caller's overrides, resolves appearance and page
// attributes, and compiles every page's command tree. A Placer processes an
// ordered batch of Requests against a grid, asking the placement engine for
// a free coordinate per iteration and handing it to the Factory.
//
// DETERMINISM:
//
// Given the same registry, grid, requests and RNG seed, PlaceEvents returns
// byte-identical output. This holds because:
//   - Requests are processed strictly in input order
//   - Every random draw comes from the caller's RNG, in a fixed order
//   - Templates, categories and occupied coordinates are kept in
//     insertion-ordered structures, never iterated from a Go map
//   - Event ids come from a logical Clock, never from wall time
//
// Placement failures and unknown selectors do not abort the batch. The
// iteration is skipped and recorded as an Outcome so callers can compare
// requested and produced counts.
//
// The engine does no I/O and never blocks. PlaceEvents checks its context
// between iterations so that very large batches can be abandoned.
package engine
