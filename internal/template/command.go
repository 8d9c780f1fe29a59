package template

import (
	"github.com/roach88/scenesmith/internal/params"
)

// CommandNode is one node of a declarative command tree. It is a sealed
// variant; the compiler switches over the concrete types below.
type CommandNode interface {
	command() // Sealed
}

// Say shows a message window.
type Say struct {
	Text      params.Value
	Face      params.Value // face image name; nil means none
	FaceIndex params.Value // nil means 0
}

// ShowChoices opens a choice scope. It must be followed by its ChoiceCase
// siblings.
type ShowChoices struct {
	Options []params.Value

	// CancelType follows RMMZ: -1 disallows cancel, otherwise the index of
	// the choice taken on cancel.
	CancelType int
}

// CancelIndex marks the ChoiceCase taken when the player cancels.
const CancelIndex = -1

// ChoiceCase is the body run when the player picks choice Index.
// A nil Label reuses the matching ShowChoices option.
type ChoiceCase struct {
	Index int
	Label params.Value
	Body  []CommandNode
}

// ConditionalBranch runs Then when Condition holds and Else otherwise.
// A nil Else means the branch has no else part; an empty non-nil Else still
// emits the else marker.
type ConditionalBranch struct {
	Condition Condition
	Then      []CommandNode
	Else      []CommandNode
}

// SetSwitch turns a game switch on or off.
type SetSwitch struct {
	ID params.Value
	On bool
}

// SetVariable applies Op to a game variable with a constant operand.
type SetVariable struct {
	ID    params.Value
	Op    VariableOp
	Value params.Value
}

// ChangeItems adds or removes inventory items.
type ChangeItems struct {
	ItemID params.Value
	Op     AmountOp
	Amount params.Value
}

// ChangeGold adds or removes party gold.
type ChangeGold struct {
	Op     AmountOp
	Amount params.Value
}

// PlaySound plays a sound effect. Nil Volume, Pitch and Pan take the RMMZ
// defaults 90, 100 and 0.
type PlaySound struct {
	Name   params.Value
	Volume params.Value
	Pitch  params.Value
	Pan    params.Value
}

// Raw emits an arbitrary instruction code with resolved operands.
type Raw struct {
	Code     int
	Operands []params.Value
}

func (Say) command()               {}
func (ShowChoices) command()       {}
func (ChoiceCase) command()        {}
func (ConditionalBranch) command() {}
func (SetSwitch) command()         {}
func (SetVariable) command()       {}
func (ChangeItems) command()       {}
func (ChangeGold) command()        {}
func (PlaySound) command()         {}
func (Raw) command()               {}

// PageAttributes are the page attribute names a PageSpec may override.
var PageAttributes = []string{
	"moveType", "moveSpeed", "moveFrequency", "priorityType",
	"stepAnime", "walkAnime", "directionFix", "through", "trigger",
}

// VariableOp is the Control Variables operation.
type VariableOp int

const (
	VarSet VariableOp = iota
	VarAdd
	VarSub
	VarMul
	VarDiv
	VarMod
)

var variableOpNames = map[string]VariableOp{
	"set": VarSet, "add": VarAdd, "sub": VarSub,
	"mul": VarMul, "div": VarDiv, "mod": VarMod,
}

// ParseVariableOp parses set, add, sub, mul, div or mod.
func ParseVariableOp(s string) (VariableOp, bool) {
	op, ok := variableOpNames[s]
	return op, ok
}

// AmountOp is the increase/decrease operation for items and gold.
type AmountOp int

const (
	Increase AmountOp = 0
	Decrease AmountOp = 1
)

// ParseAmountOp parses increase/decrease (also "+"/"-").
func ParseAmountOp(s string) (AmountOp, bool) {
	switch s {
	case "increase", "+":
		return Increase, true
	case "decrease", "-":
		return Decrease, true
	}
	return 0, false
}

// Walk calls fn for every node in the tree, depth first, in emission order.
// Returning false from fn skips the node's children.
func Walk(nodes []CommandNode, fn func(CommandNode) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		switch node := n.(type) {
		case ChoiceCase:
			Walk(node.Body, fn)
		case ConditionalBranch:
			Walk(node.Then, fn)
			Walk(node.Else, fn)
		}
	}
}
