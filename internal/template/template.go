package template

import (
	"github.com/roach88/scenesmith/internal/params"
)

// Template is a reusable, parameterised event definition.
type Template struct {
	ID          string
	Category    string
	Name        string
	Description string

	// Appearance holds image fields (characterName, characterIndex,
	// direction, pattern, tileId) shared by every page.
	Appearance params.Decls

	Pages []PageSpec

	// Parameters are the defaults; overrides replace them by name.
	Parameters params.Decls

	Placement PlacementRules
}

// Key returns the registry key "category:id".
func (t *Template) Key() string {
	return Key(t.Category, t.ID)
}

// Key joins a category and id into a registry key.
func Key(category, id string) string {
	return category + ":" + id
}

// PageSpec is one event page before compilation.
type PageSpec struct {
	// Conditions override fields of the RMMZ page condition block
	// (selfSwitchCh, selfSwitchValid, switch1Id, ...).
	Conditions params.Decls

	// Image overrides the template appearance for this page only.
	Image params.Decls

	// Attributes override page attributes: moveType, moveSpeed,
	// moveFrequency, priorityType, stepAnime, walkAnime, directionFix,
	// through, trigger.
	Attributes params.Decls

	Commands []CommandNode
}

// PlacementRules constrain which tiles a template may be placed on.
// Nil tile slices mean unset.
type PlacementRules struct {
	RequireWalkable bool
	AllowedTiles    []int
	DisallowedTiles []int
}

// DefaultPlacementRules requires a walkable tile and nothing else.
func DefaultPlacementRules() PlacementRules {
	return PlacementRules{RequireWalkable: true}
}

// Allows reports whether a tile id satisfies the allowed and disallowed
// tile sets. Walkability is checked by the caller.
func (r PlacementRules) Allows(tile int) bool {
	if r.AllowedTiles != nil && !containsInt(r.AllowedTiles, tile) {
		return false
	}
	if r.DisallowedTiles != nil && containsInt(r.DisallowedTiles, tile) {
		return false
	}
	return true
}

func containsInt(list []int, v int) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}
