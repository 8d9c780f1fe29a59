// Package ir provides the value and record types shared by every scenesmith
// package.
//
// This package contains type definitions and serialization only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - RMMZ event data is integer-valued, use int64
//   - Record JSON tags follow the RMMZ map schema (camelCase)
//   - Canonical JSON (RFC 8785) is the only serialization used for hashing
//   - Output must be byte-identical for identical seed, templates and requests
package ir
