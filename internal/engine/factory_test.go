package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenesmith/internal/compiler"
	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/template"
	"github.com/roach88/scenesmith/internal/testutil"
)

// Overrides replace parameter defaults before commands are compiled.
func TestGenerateOverridesParameters(t *testing.T) {
	reg := template.NewRegistry()
	reg.MustRegister(&template.Template{
		ID:       "chest_basic",
		Category: "chest",
		Pages: []template.PageSpec{{
			Conditions: params.Decls{
				{Name: "selfSwitchCh", Value: params.Lit("A")},
				{Name: "selfSwitchValid", Value: params.Lit(true)},
			},
			Commands: []template.CommandNode{template.Say{Text: params.Text("{{itemName}}")}},
		}},
		Parameters: params.Decls{{Name: "itemName", Value: params.Lit("Potion")}},
	})

	f := NewFactory(reg)
	inst, err := f.Generate("chest_basic", ir.IRObject{"itemName": ir.IRString("Healing Potion")},
		ir.Coordinate{X: 2, Y: 3}, 1, testutil.NewScriptedRNG())
	require.NoError(t, err)

	require.Len(t, inst.Pages, 1)
	list := inst.Pages[0].List
	require.Len(t, list, 2)
	assert.Equal(t, ir.CodeShowText, list[0].Code)
	assert.Equal(t, ir.IRString("Healing Potion"), list[0].Parameters[4])
	assert.Equal(t, ir.Terminator(), list[1])
	assert.Equal(t, ir.IRBool(true), inst.Pages[0].Conditions["selfSwitchValid"])
	assert.Equal(t, ir.IRString("A"), inst.Pages[0].Conditions["selfSwitchCh"])
}

func TestGenerateBuildsFullInstance(t *testing.T) {
	f := NewFactory(testRegistry())
	inst, err := f.Generate("chest:potion_chest", ir.IRObject{"itemName": ir.IRString("Ether"), "itemId": ir.IRInt(7)},
		ir.Coordinate{X: 4, Y: 5}, 9, testutil.NewScriptedRNG())
	require.NoError(t, err)

	assert.Equal(t, 9, inst.ID)
	assert.Equal(t, "Ether Chest", inst.Name)
	assert.Equal(t, "<template:chest:potion_chest>", inst.Note)
	assert.Equal(t, ir.Coordinate{X: 4, Y: 5}, inst.Coordinate())
	require.Len(t, inst.Pages, 2)

	first := inst.Pages[0]
	assert.Equal(t, []int{ir.CodePlaySE, ir.CodeShowText, ir.CodeChangeItems, 123, ir.CodeEnd}, codesOf(first.List))
	assert.Equal(t, ir.IRInt(7), first.List[2].Parameters[0], "typed placeholder operand")
	assert.Equal(t, ir.IRString("!Chest"), first.Image["characterName"])
	assert.Equal(t, ir.IRInt(2), first.Image["direction"], "default direction")
	assert.Equal(t, ir.IRBool(false), first.Conditions["selfSwitchValid"])
	assert.Equal(t, ir.DefaultMoveSpeed, first.MoveSpeed)
	assert.Equal(t, ir.DefaultPriorityType, first.PriorityType)
	assert.True(t, first.WalkAnime)
	assert.Equal(t, 0, first.Trigger)

	second := inst.Pages[1]
	assert.Equal(t, ir.IRInt(8), second.Image["direction"], "page image overrides appearance")
	assert.Equal(t, ir.IRString("!Chest"), second.Image["characterName"])
	assert.Equal(t, ir.IRBool(true), second.Conditions["selfSwitchValid"])
	assert.Equal(t, []ir.Instruction{ir.Terminator()}, second.List)

	for _, page := range inst.Pages {
		assert.NoError(t, compiler.CheckBalance(page.List))
	}
}

func TestGenerateTemplateNotFound(t *testing.T) {
	f := NewFactory(testRegistry())
	_, err := f.Generate("dragon_hoard", nil, ir.Coordinate{}, 1, testutil.NewScriptedRNG())
	require.Error(t, err)
	assert.True(t, IsTemplateNotFound(err))
	assert.False(t, IsPlacementFailed(err))
}

func TestGenerateAttributes(t *testing.T) {
	reg := template.NewRegistry()
	reg.MustRegister(&template.Template{
		ID:       "ghost",
		Category: "npc",
		Pages: []template.PageSpec{{
			Attributes: params.Decls{
				{Name: "through", Value: params.Lit(true)},
				{Name: "moveType", Value: params.Lit(1)},
				{Name: "trigger", Value: params.Lit("not a number")},
			},
		}},
	})

	inst, err := NewFactory(reg).Generate("ghost", nil, ir.Coordinate{}, 1, testutil.NewScriptedRNG())
	require.NoError(t, err)
	page := inst.Pages[0]
	assert.True(t, page.Through)
	assert.Equal(t, 1, page.MoveType)
	assert.Equal(t, 0, page.Trigger, "mistyped attribute falls back to default")
}

func TestGenerateDeterministic(t *testing.T) {
	f := NewFactory(testRegistry())
	gen := func() string {
		inst, err := f.Generate("farmer", nil, ir.Coordinate{X: 1, Y: 1}, 1, params.NewRNG(77))
		require.NoError(t, err)
		return ir.MustInstanceHash(*inst)
	}
	assert.Equal(t, gen(), gen())
}

func codesOf(list []ir.Instruction) []int {
	out := make([]int, len(list))
	for i, in := range list {
		out[i] = in.Code
	}
	return out
}
