package compiler

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/template"
	"github.com/roach88/scenesmith/internal/testutil"
)

func say(text string) template.Say {
	return template.Say{Text: params.Text(text)}
}

func codes(list []ir.Instruction) []int {
	out := make([]int, len(list))
	for i, in := range list {
		out[i] = in.Code
	}
	return out
}

func indents(list []ir.Instruction) []int {
	out := make([]int, len(list))
	for i, in := range list {
		out[i] = in.Indent
	}
	return out
}

func compile(nodes ...template.CommandNode) []ir.Instruction {
	return Compile(nodes, params.NewContext(nil), testutil.NewScriptedRNG())
}

func TestCompileSay(t *testing.T) {
	ctx := params.NewContext(ir.IRObject{"itemName": ir.IRString("Healing Potion")})
	got := Compile([]template.CommandNode{say("You found {{itemName}}")}, ctx, testutil.NewScriptedRNG())

	require.Len(t, got, 1)
	assert.Equal(t, ir.Instruction{
		Code:       ir.CodeShowText,
		Indent:     0,
		Parameters: ir.IRArray{ir.IRString(""), ir.IRInt(0), ir.IRInt(0), ir.IRInt(2), ir.IRString("You found Healing Potion")},
	}, got[0])
}

func TestCompileSayWithFace(t *testing.T) {
	got := compile(template.Say{Text: params.Lit("Hi"), Face: params.Lit("Actor1"), FaceIndex: params.Lit(3)})
	assert.Equal(t, ir.IRArray{ir.IRString("Actor1"), ir.IRInt(3), ir.IRInt(0), ir.IRInt(2), ir.IRString("Hi")}, got[0].Parameters)
}

// A conditional with both arms: open, then-body, else, else-body, close.
func TestCompileConditionalBranchWithElse(t *testing.T) {
	got := compile(template.ConditionalBranch{
		Condition: template.SwitchIs(params.Lit(1), true),
		Then:      []template.CommandNode{say("yes")},
		Else:      []template.CommandNode{say("no")},
	})

	require.Len(t, got, 5)
	assert.Equal(t, []int{ir.CodeConditionalStart, ir.CodeShowText, ir.CodeElse, ir.CodeShowText, ir.CodeBranchEnd}, codes(got))
	assert.Equal(t, []int{0, 1, 0, 1, 0}, indents(got))
	assert.Equal(t, ir.IRArray{ir.IRInt(0), ir.IRInt(1), ir.IRInt(0)}, got[0].Parameters)
	assert.Equal(t, ir.IRString("yes"), got[1].Parameters[4])
	assert.Equal(t, ir.IRString("no"), got[3].Parameters[4])
	assert.NoError(t, CheckBalance(got))
}

func TestCompileConditionalBranchElse(t *testing.T) {
	tests := []struct {
		name      string
		elseNodes []template.CommandNode
		want      []int
	}{
		{"nil else omits marker", nil, []int{ir.CodeConditionalStart, ir.CodeShowText, ir.CodeBranchEnd}},
		{"empty else keeps marker", []template.CommandNode{}, []int{ir.CodeConditionalStart, ir.CodeShowText, ir.CodeElse, ir.CodeBranchEnd}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compile(template.ConditionalBranch{
				Condition: template.HasItem(params.Lit(4)),
				Then:      []template.CommandNode{say("x")},
				Else:      tt.elseNodes,
			})
			assert.Equal(t, tt.want, codes(got))
			assert.NoError(t, CheckBalance(got))
		})
	}
}

func TestCompileChoices(t *testing.T) {
	got := compile(
		template.ShowChoices{Options: []params.Value{params.Lit("Open"), params.Lit("Leave")}, CancelType: 1},
		template.ChoiceCase{Index: 0, Body: []template.CommandNode{say("opened")}},
		template.ChoiceCase{Index: 1, Label: params.Lit("Walk away"), Body: []template.CommandNode{say("bye")}},
		say("after"),
	)

	assert.Equal(t, []int{
		ir.CodeShowChoices,
		ir.CodeWhenChoice, ir.CodeShowText,
		ir.CodeWhenChoice, ir.CodeShowText,
		ir.CodeChoicesEnd,
		ir.CodeShowText,
	}, codes(got))
	assert.Equal(t, []int{0, 0, 1, 0, 1, 0, 0}, indents(got))
	assert.Equal(t, ir.IRArray{ir.IRArray{ir.IRString("Open"), ir.IRString("Leave")}, ir.IRInt(1)}, got[0].Parameters)
	assert.Equal(t, ir.IRArray{ir.IRInt(0), ir.IRString("Open")}, got[1].Parameters, "label defaults to the option")
	assert.Equal(t, ir.IRArray{ir.IRInt(1), ir.IRString("Walk away")}, got[3].Parameters)
	assert.NoError(t, CheckBalance(got))
}

func TestCompileChoicesClosedAtEndOfList(t *testing.T) {
	got := compile(
		template.ShowChoices{Options: []params.Value{params.Lit("A")}},
		template.ChoiceCase{Index: 0},
	)
	assert.Equal(t, []int{ir.CodeShowChoices, ir.CodeWhenChoice, ir.CodeChoicesEnd}, codes(got))
	assert.NoError(t, CheckBalance(got))
}

func TestCompileChoicesClosedByNextShowChoices(t *testing.T) {
	got := compile(
		template.ShowChoices{Options: []params.Value{params.Lit("A")}},
		template.ChoiceCase{Index: 0},
		template.ShowChoices{Options: []params.Value{params.Lit("B")}},
		template.ChoiceCase{Index: 0},
	)
	assert.Equal(t, []int{
		ir.CodeShowChoices, ir.CodeWhenChoice, ir.CodeChoicesEnd,
		ir.CodeShowChoices, ir.CodeWhenChoice, ir.CodeChoicesEnd,
	}, codes(got))
	assert.NoError(t, CheckBalance(got))
}

func TestCompileCancelCase(t *testing.T) {
	got := compile(
		template.ShowChoices{Options: []params.Value{params.Lit("A")}, CancelType: -2},
		template.ChoiceCase{Index: 0},
		template.ChoiceCase{Index: template.CancelIndex, Body: []template.CommandNode{say("cancelled")}},
	)
	assert.Equal(t, []int{ir.CodeShowChoices, ir.CodeWhenChoice, ir.CodeWhenCancel, ir.CodeShowText, ir.CodeChoicesEnd}, codes(got))
	assert.Equal(t, ir.IRArray{}, got[2].Parameters)
	assert.NoError(t, CheckBalance(got))
}

func TestCompileNestedScopes(t *testing.T) {
	got := compile(
		template.ShowChoices{Options: []params.Value{params.Lit("Pay"), params.Lit("Refuse")}},
		template.ChoiceCase{Index: 0, Body: []template.CommandNode{
			template.ConditionalBranch{
				Condition: template.GoldAtLeast(params.Lit(50)),
				Then: []template.CommandNode{
					template.ChangeGold{Op: template.Decrease, Amount: params.Lit(50)},
					template.ShowChoices{Options: []params.Value{params.Lit("Thanks")}},
					template.ChoiceCase{Index: 0, Body: []template.CommandNode{say("deep")}},
				},
				Else: []template.CommandNode{say("too poor")},
			},
		}},
		template.ChoiceCase{Index: 1},
	)

	assert.Equal(t, []int{0, 0, 1, 2, 2, 2, 3, 2, 1, 2, 1, 0, 0}, indents(got))
	assert.Equal(t, []int{
		ir.CodeShowChoices,
		ir.CodeWhenChoice,
		ir.CodeConditionalStart,
		ir.CodeChangeGold,
		ir.CodeShowChoices,
		ir.CodeWhenChoice,
		ir.CodeShowText,
		ir.CodeChoicesEnd,
		ir.CodeElse,
		ir.CodeShowText,
		ir.CodeBranchEnd,
		ir.CodeWhenChoice,
		ir.CodeChoicesEnd,
	}, codes(got))
	assert.NoError(t, CheckBalance(got))
}

func TestCompileStateCommands(t *testing.T) {
	got := compile(
		template.SetSwitch{ID: params.Lit(5), On: true},
		template.SetSwitch{ID: params.Lit(6), On: false},
		template.SetVariable{ID: params.Lit(3), Op: template.VarAdd, Value: params.Lit(2)},
		template.ChangeGold{Op: template.Increase, Amount: params.Lit(100)},
		template.ChangeItems{ItemID: params.Lit(7), Op: template.Decrease, Amount: params.Lit(2)},
		template.PlaySound{Name: params.Lit("Chest1")},
		template.Raw{Code: 230, Operands: []params.Value{params.Lit(60)}},
	)

	want := []ir.Instruction{
		{Code: ir.CodeControlSwitches, Parameters: ir.IRArray{ir.IRInt(5), ir.IRInt(5), ir.IRInt(0)}},
		{Code: ir.CodeControlSwitches, Parameters: ir.IRArray{ir.IRInt(6), ir.IRInt(6), ir.IRInt(1)}},
		{Code: ir.CodeControlVariables, Parameters: ir.IRArray{ir.IRInt(3), ir.IRInt(3), ir.IRInt(1), ir.IRInt(0), ir.IRInt(2)}},
		{Code: ir.CodeChangeGold, Parameters: ir.IRArray{ir.IRInt(0), ir.IRInt(0), ir.IRInt(100)}},
		{Code: ir.CodeChangeItems, Parameters: ir.IRArray{ir.IRInt(7), ir.IRInt(1), ir.IRInt(0), ir.IRInt(2)}},
		{Code: ir.CodePlaySE, Parameters: ir.IRArray{ir.IRObject{
			"name": ir.IRString("Chest1"), "volume": ir.IRInt(90), "pitch": ir.IRInt(100), "pan": ir.IRInt(0),
		}}},
		{Code: 230, Parameters: ir.IRArray{ir.IRInt(60)}},
	}
	assert.Equal(t, want, got)
}

func TestCompileTypedPlaceholderOperand(t *testing.T) {
	ctx := params.NewContext(ir.IRObject{"reward": ir.IRInt(250)})
	got := Compile([]template.CommandNode{
		template.ChangeGold{Amount: params.Text("{{reward}}")},
	}, ctx, testutil.NewScriptedRNG())

	assert.Equal(t, ir.IRInt(250), got[0].Parameters[2])
}

func TestCompileTypedPlaceholderText(t *testing.T) {
	ctx := params.NewContext(ir.IRObject{
		"gold": ir.IRInt(50),
		"ok":   ir.IRBool(true),
		"face": ir.IRInt(7),
	})
	got := Compile([]template.CommandNode{
		template.Say{Text: params.Text("{{gold}}"), Face: params.Text("{{face}}")},
		template.ShowChoices{Options: []params.Value{params.Text("{{ok}}"), params.Lit("No")}},
		template.ChoiceCase{Index: 0},
		template.ChoiceCase{Index: 1, Label: params.Text("{{gold}}")},
		template.ChangeItems{ItemID: params.Text("{{gold}}")},
	}, ctx, testutil.NewScriptedRNG())

	require.Equal(t, []int{ir.CodeShowText, ir.CodeShowChoices, ir.CodeWhenChoice, ir.CodeWhenChoice, ir.CodeChoicesEnd, ir.CodeChangeItems}, codes(got))
	assert.Equal(t, ir.IRString("50"), got[0].Parameters[4])
	assert.Equal(t, ir.IRString("7"), got[0].Parameters[0])
	assert.Equal(t, ir.IRArray{ir.IRString("true"), ir.IRString("No")}, got[1].Parameters[0])
	assert.Equal(t, ir.IRString("true"), got[2].Parameters[1])
	assert.Equal(t, ir.IRString("50"), got[3].Parameters[1])

	// Numeric operands keep the bound type.
	assert.Equal(t, ir.IRInt(50), got[5].Parameters[0])
}

func TestCompileMultiLineSay(t *testing.T) {
	got := compile(template.ConditionalBranch{
		Condition: template.SwitchIs(params.Lit(1), true),
		Then:      []template.CommandNode{say("Line one\nLine two\r\nLine three")},
	})

	require.Equal(t, []int{ir.CodeConditionalStart, ir.CodeShowText, ir.CodeTextLine, ir.CodeTextLine, ir.CodeBranchEnd}, codes(got))
	assert.Equal(t, []int{0, 1, 1, 1, 0}, indents(got))
	assert.Equal(t, ir.IRString("Line one"), got[1].Parameters[4])
	assert.Equal(t, ir.IRArray{ir.IRString("Line two")}, got[2].Parameters)
	assert.Equal(t, ir.IRArray{ir.IRString("Line three")}, got[3].Parameters)
	assert.NoError(t, CheckBalance(got))
}

func TestCompileSingleLineSayHasNoTextLines(t *testing.T) {
	got := compile(say("one line"))
	assert.Equal(t, []int{ir.CodeShowText}, codes(got))
}

func TestCompileEmpty(t *testing.T) {
	got := compile()
	assert.NotNil(t, got)
	assert.Empty(t, got)

	page := CompilePage(nil, params.NewContext(nil), testutil.NewScriptedRNG())
	assert.Equal(t, []ir.Instruction{ir.Terminator()}, page)
}

func TestCompilePageTerminator(t *testing.T) {
	page := CompilePage([]template.CommandNode{say("a"), say("b")}, params.NewContext(nil), testutil.NewScriptedRNG())
	require.Len(t, page, 3)
	assert.Equal(t, ir.Terminator(), page[2])
	assert.NoError(t, CheckBalance(page))
}

func TestCompileDeterministic(t *testing.T) {
	nodes := []template.CommandNode{
		template.Say{Text: params.OneOfLit("Hello", "Hi", "Hey", "Greetings")},
		template.ChangeGold{Amount: params.MustExpr("randInt(10, 99)")},
		template.ShowChoices{Options: []params.Value{params.OneOfLit("Yes", "Sure"), params.Lit("No")}},
		template.ChoiceCase{Index: 0, Body: []template.CommandNode{template.Say{Text: params.OneOfLit("a", "b", "c")}}},
	}

	first := CompilePage(nodes, params.NewContext(nil), params.NewRNG(11))
	second := CompilePage(nodes, params.NewContext(nil), params.NewRNG(11))
	assert.Equal(t, first, second)

	a, err := ir.MarshalCanonical(instructionsArray(first))
	require.NoError(t, err)
	b, err := ir.MarshalCanonical(instructionsArray(second))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCompileDoesNotMutateNodes(t *testing.T) {
	ops := []params.Value{params.Lit(1), params.Lit(2)}
	node := template.Raw{Code: 355, Operands: ops}
	compile(node)
	assert.Equal(t, []params.Value{params.Lit(1), params.Lit(2)}, node.Operands)
}

// randomTree builds a well-formed command tree of bounded depth.
func randomTree(rng *rand.Rand, depth int) []template.CommandNode {
	n := rng.IntN(4)
	nodes := make([]template.CommandNode, 0, n)
	for range n {
		kind := rng.IntN(5)
		if depth <= 0 {
			kind = rng.IntN(2)
		}
		switch kind {
		case 0:
			nodes = append(nodes, say("line"))
		case 1:
			nodes = append(nodes, say("first\nsecond"), template.SetSwitch{ID: params.Lit(rng.IntN(9) + 1), On: rng.IntN(2) == 0})
		case 2:
			branch := template.ConditionalBranch{
				Condition: template.SwitchIs(params.Lit(1), true),
				Then:      randomTree(rng, depth-1),
			}
			if rng.IntN(2) == 0 {
				branch.Else = append([]template.CommandNode{}, randomTree(rng, depth-1)...)
			}
			nodes = append(nodes, branch)
		default:
			options := rng.IntN(3) + 1
			choices := template.ShowChoices{CancelType: -1}
			for range options {
				choices.Options = append(choices.Options, params.Lit("opt"))
			}
			nodes = append(nodes, choices)
			for i := range options {
				nodes = append(nodes, template.ChoiceCase{Index: i, Body: randomTree(rng, depth-1)})
			}
			if rng.IntN(2) == 0 {
				nodes = append(nodes, template.ChoiceCase{Index: template.CancelIndex, Body: randomTree(rng, depth-1)})
			}
		}
	}
	return nodes
}

func TestCompileBalancedForRandomTrees(t *testing.T) {
	for seed := uint64(1); seed <= 500; seed++ {
		nodes := randomTree(params.NewRNG(seed), 4)
		page := CompilePage(nodes, params.NewContext(nil), testutil.NewScriptedRNG())
		require.NoError(t, CheckBalance(page), "seed %d", seed)
	}
}

func instructionsArray(list []ir.Instruction) ir.IRArray {
	arr := make(ir.IRArray, len(list))
	for i, in := range list {
		arr[i] = in.Object()
	}
	return arr
}
