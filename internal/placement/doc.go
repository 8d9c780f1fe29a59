// Package placement finds free tiles on a map grid for generated events.
//
// Placement is bounded rejection sampling: a Strategy proposes candidate
// coordinates and the Engine accepts the first one that is unoccupied and
// satisfies the template's PlacementRules, giving up after a fixed attempt
// budget. There is no fallback to another strategy and no search beyond the
// budget, so a crowded grid simply yields fewer placements.
//
// All randomness comes from the caller's RNG. The same grid, rules,
// occupancy and RNG state always produce the same coordinate.
package placement
