package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/scenesmith/internal/compiler"
	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/template"
)

// Factory builds instances from registered templates.
// It keeps no per-call state and is safe to share across goroutines as long
// as the registry is no longer mutated.
type Factory struct {
	registry *template.Registry
	logger   *slog.Logger
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithFactoryLogger sets the factory logger. The default discards output.
func WithFactoryLogger(logger *slog.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFactory creates a factory over the given registry.
func NewFactory(reg *template.Registry, opts ...FactoryOption) *Factory {
	f := &Factory{
		registry: reg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Registry returns the registry the factory reads from.
func (f *Factory) Registry() *template.Registry {
	return f.registry
}

// Generate builds the instance for templateID at the given coordinate.
//
// templateID is a bare id or "category:id". The parameter context is the
// template's defaults with overrides applied on top. Unknown templates
// return a *RuntimeError with ErrCodeTemplateNotFound.
func (f *Factory) Generate(templateID string, overrides ir.IRObject, at ir.Coordinate, id int, rng params.RNG) (*ir.Instance, error) {
	tpl, err := f.registry.Lookup(templateID)
	if err != nil {
		if errors.Is(err, template.ErrNotFound) {
			return nil, NewTemplateNotFoundError(templateID, -1)
		}
		return nil, fmt.Errorf("lookup %s: %w", templateID, err)
	}
	return f.Build(tpl, overrides, at, id, rng), nil
}

// Build is Generate for a template the caller already holds.
func (f *Factory) Build(tpl *template.Template, overrides ir.IRObject, at ir.Coordinate, id int, rng params.RNG) *ir.Instance {
	ctx := params.BuildContext(tpl.Parameters, overrides, rng)
	name := ir.Text(params.Resolve(params.Text(tpl.Name), ctx, rng))
	appearance := params.ResolveDecls(tpl.Appearance, ctx, rng)

	pages := make([]ir.CompiledPage, len(tpl.Pages))
	for i, spec := range tpl.Pages {
		pages[i] = f.page(spec, appearance, ctx, rng)
	}

	f.logger.Debug("instance generated",
		"template", tpl.Key(),
		"event_id", id,
		"x", at.X,
		"y", at.Y,
		"pages", len(pages))

	return &ir.Instance{
		ID:    id,
		Name:  name,
		Note:  fmt.Sprintf("<template:%s>", tpl.Key()),
		X:     at.X,
		Y:     at.Y,
		Pages: pages,
	}
}

func (f *Factory) page(spec template.PageSpec, appearance ir.IRObject, ctx params.Context, rng params.RNG) ir.CompiledPage {
	conditions := ir.DefaultConditions().Merge(params.ResolveDecls(spec.Conditions, ctx, rng))
	image := ir.DefaultImage().Merge(appearance).Merge(params.ResolveDecls(spec.Image, ctx, rng))
	attrs := params.ResolveDecls(spec.Attributes, ctx, rng)

	return ir.CompiledPage{
		Conditions:    conditions,
		Image:         image,
		MoveType:      intAttr(attrs, "moveType", 0),
		MoveSpeed:     intAttr(attrs, "moveSpeed", ir.DefaultMoveSpeed),
		MoveFrequency: intAttr(attrs, "moveFrequency", ir.DefaultMoveFrequency),
		MoveRoute:     ir.DefaultMoveRoute(),
		PriorityType:  intAttr(attrs, "priorityType", ir.DefaultPriorityType),
		StepAnime:     boolAttr(attrs, "stepAnime", false),
		WalkAnime:     boolAttr(attrs, "walkAnime", true),
		DirectionFix:  boolAttr(attrs, "directionFix", false),
		Through:       boolAttr(attrs, "through", false),
		Trigger:       intAttr(attrs, "trigger", 0),
		List:          compiler.CompilePage(spec.Commands, ctx, rng),
	}
}

// intAttr reads an integer attribute; missing or mistyped values give def.
func intAttr(attrs ir.IRObject, name string, def int) int {
	if n, ok := attrs[name].(ir.IRInt); ok {
		return int(n)
	}
	return def
}

// boolAttr reads a boolean attribute; missing or mistyped values give def.
func boolAttr(attrs ir.IRObject, name string, def bool) bool {
	if b, ok := attrs[name].(ir.IRBool); ok {
		return bool(b)
	}
	return def
}
