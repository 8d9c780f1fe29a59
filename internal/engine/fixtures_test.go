package engine

import (
	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/placement"
	"github.com/roach88/scenesmith/internal/template"
)

// chestTemplate mirrors the classic treasure chest: self switch A gates the
// second page, the first page hands out an item.
func chestTemplate() *template.Template {
	return &template.Template{
		ID:       "potion_chest",
		Category: "chest",
		Name:     "{{itemName}} Chest",
		Appearance: params.Decls{
			{Name: "characterName", Value: params.Lit("!Chest")},
			{Name: "characterIndex", Value: params.Lit(0)},
		},
		Parameters: params.Decls{
			{Name: "itemName", Value: params.Lit("Potion")},
			{Name: "itemId", Value: params.Lit(1)},
		},
		Pages: []template.PageSpec{
			{
				Attributes: params.Decls{{Name: "trigger", Value: params.Lit(0)}},
				Commands: []template.CommandNode{
					template.PlaySound{Name: params.Lit("Chest1")},
					template.Say{Text: params.Text("{{itemName}}")},
					template.ChangeItems{ItemID: params.Text("{{itemId}}"), Amount: params.Lit(1)},
					template.Raw{Code: 123, Operands: []params.Value{params.Lit("A"), params.Lit(0)}},
				},
			},
			{
				Conditions: params.Decls{
					{Name: "selfSwitchCh", Value: params.Lit("A")},
					{Name: "selfSwitchValid", Value: params.Lit(true)},
				},
				Image: params.Decls{{Name: "direction", Value: params.Lit(8)}},
			},
		},
		Placement: template.DefaultPlacementRules(),
	}
}

func villagerTemplate(id string, lines ...string) *template.Template {
	options := make([]params.Value, len(lines))
	for i, l := range lines {
		options[i] = params.Lit(l)
	}
	return &template.Template{
		ID:       id,
		Category: "villager",
		Name:     id,
		Parameters: params.Decls{
			{Name: "greeting", Value: params.OneOf(options...)},
		},
		Pages: []template.PageSpec{{
			Attributes: params.Decls{{Name: "moveType", Value: params.Lit(1)}},
			Commands: []template.CommandNode{
				template.Say{Text: params.Text("{{greeting}}")},
			},
		}},
		Placement: template.DefaultPlacementRules(),
	}
}

func testRegistry() *template.Registry {
	reg := template.NewRegistry()
	reg.MustRegister(chestTemplate())
	reg.MustRegister(villagerTemplate("farmer", "Nice weather.", "Crops are growing."))
	reg.MustRegister(villagerTemplate("smith", "Need a blade?", "Hot forge today."))
	return reg
}

// roomGrid has a wall border and floor inside.
func roomGrid(w, h int) *placement.Grid {
	g := placement.NewGrid(w, h, placement.WallTile)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			g.Set(x, y, placement.FloorTile)
		}
	}
	g.Rooms = []placement.Rect{{X: 1, Y: 1, W: w / 2, H: h / 2}}
	g.Entrances = []ir.Coordinate{{X: 1, Y: h / 2}}
	return g
}
