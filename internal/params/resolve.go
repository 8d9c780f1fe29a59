package params

import (
	"regexp"
	"strings"

	"github.com/roach88/scenesmith/internal/ir"
)

// markerPattern matches {{name}} markers; spaces inside the braces are allowed.
var markerPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\}\}`)

// Resolve turns a declared value into a concrete value.
//
//   - Literal: returned unchanged.
//   - Placeholder: markers bound in ctx are replaced by the bound value's text;
//     unbound markers are left verbatim. A string that is exactly one bound
//     marker resolves to the bound value itself, keeping its type.
//   - Computed: Fn is called once with (ctx, rng); the result is final.
//   - Choice: one option is drawn with rng.IntN and resolved recursively.
//
// Resolve never fails. Degenerate inputs (nil value, nil function, empty
// choice) resolve to IRNull.
func Resolve(v Value, ctx Context, rng RNG) ir.IRValue {
	switch val := v.(type) {
	case Literal:
		if val.Value == nil {
			return ir.IRNull{}
		}
		return val.Value
	case Placeholder:
		return substitute(val.Text, ctx)
	case Computed:
		if val.Fn == nil {
			return ir.IRNull{}
		}
		out := val.Fn(ctx, rng)
		if out == nil {
			return ir.IRNull{}
		}
		return out
	case Choice:
		if len(val.Options) == 0 {
			return ir.IRNull{}
		}
		return Resolve(val.Options[rng.IntN(len(val.Options))], ctx, rng)
	default:
		return ir.IRNull{}
	}
}

// ResolveDecls resolves each declaration in order and returns the results.
func ResolveDecls(decls Decls, ctx Context, rng RNG) ir.IRObject {
	out := make(ir.IRObject, len(decls))
	for _, d := range decls {
		out[d.Name] = Resolve(d.Value, ctx, rng)
	}
	return out
}

// BuildContext resolves template defaults in declaration order, each against
// the context built so far, and applies overrides on top. Overridden names
// are not resolved and draw no randomness.
func BuildContext(defaults Decls, overrides ir.IRObject, rng RNG) Context {
	ctx := NewContext(overrides)
	for _, d := range defaults {
		if _, overridden := overrides[d.Name]; overridden {
			continue
		}
		ctx = ctx.With(d.Name, Resolve(d.Value, ctx, rng))
	}
	return ctx
}

// HasMarkers reports whether s contains at least one {{name}} marker.
func HasMarkers(s string) bool {
	return markerPattern.MatchString(s)
}

// Markers returns the marker names in s, in order of first appearance.
func Markers(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range markerPattern.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Unbound returns the marker names in s that ctx does not bind.
func Unbound(s string, ctx Context) []string {
	var missing []string
	for _, name := range Markers(s) {
		if _, ok := ctx.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// substitute performs a single left-to-right pass; substituted text is not
// scanned again.
func substitute(text string, ctx Context) ir.IRValue {
	if loc := markerPattern.FindStringSubmatchIndex(text); loc != nil && loc[0] == 0 && loc[1] == len(text) {
		if v, ok := ctx.Lookup(text[loc[2]:loc[3]]); ok {
			return ir.Clone(v)
		}
		return ir.IRString(text)
	}

	var b strings.Builder
	last := 0
	for _, loc := range markerPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(text[last:loc[0]])
		if v, ok := ctx.Lookup(text[loc[2]:loc[3]]); ok {
			b.WriteString(ir.Text(v))
		} else {
			b.WriteString(text[loc[0]:loc[1]])
		}
		last = loc[1]
	}
	b.WriteString(text[last:])
	return ir.IRString(b.String())
}
