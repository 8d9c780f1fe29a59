package template

import (
	"github.com/roach88/scenesmith/internal/params"
)

// ConditionKind is the first operand of a Conditional Branch instruction.
type ConditionKind int

// Condition kinds understood by RMMZ. The helpers below cover the common
// ones; the others can be written with Operands directly.
const (
	CondSwitch     ConditionKind = 0
	CondVariable   ConditionKind = 1
	CondSelfSwitch ConditionKind = 2
	CondTimer      ConditionKind = 3
	CondActor      ConditionKind = 4
	CondEnemy      ConditionKind = 5
	CondCharacter  ConditionKind = 6
	CondGold       ConditionKind = 7
	CondItem       ConditionKind = 8
	CondWeapon     ConditionKind = 9
	CondArmor      ConditionKind = 10
	CondButton     ConditionKind = 11
	CondScript     ConditionKind = 12
	CondVehicle    ConditionKind = 13
)

// Valid reports whether k is a kind RMMZ knows.
func (k ConditionKind) Valid() bool {
	return k >= CondSwitch && k <= CondVehicle
}

// Compare is the comparison used by variable conditions.
type Compare int

const (
	CompareEqual Compare = iota
	CompareGreaterOrEqual
	CompareLessOrEqual
	CompareGreater
	CompareLess
	CompareNotEqual
)

var compareNames = map[string]Compare{
	"==": CompareEqual, ">=": CompareGreaterOrEqual, "<=": CompareLessOrEqual,
	">": CompareGreater, "<": CompareLess, "!=": CompareNotEqual,
}

// ParseCompare parses one of == >= <= > < !=.
func ParseCompare(s string) (Compare, bool) {
	c, ok := compareNames[s]
	return c, ok
}

// Condition is the test of a ConditionalBranch. Operands follow the kind
// in the emitted instruction.
type Condition struct {
	Kind     ConditionKind
	Operands []params.Value
}

// SwitchIs tests a game switch: [0, id, 0=ON/1=OFF].
func SwitchIs(id params.Value, on bool) Condition {
	return Condition{Kind: CondSwitch, Operands: []params.Value{id, onOff(on)}}
}

// VariableCompare tests a variable against a constant:
// [1, id, 0, value, compare].
func VariableCompare(id params.Value, cmp Compare, value params.Value) Condition {
	return Condition{Kind: CondVariable, Operands: []params.Value{id, params.Lit(0), value, params.Lit(int(cmp))}}
}

// SelfSwitchIs tests an event self switch "A".."D": [2, ch, 0=ON/1=OFF].
func SelfSwitchIs(ch string, on bool) Condition {
	return Condition{Kind: CondSelfSwitch, Operands: []params.Value{params.Lit(ch), onOff(on)}}
}

// GoldAtLeast tests party gold: [7, amount, 0].
func GoldAtLeast(amount params.Value) Condition {
	return Condition{Kind: CondGold, Operands: []params.Value{amount, params.Lit(0)}}
}

// HasItem tests the inventory: [8, itemId].
func HasItem(itemID params.Value) Condition {
	return Condition{Kind: CondItem, Operands: []params.Value{itemID}}
}

func onOff(on bool) params.Value {
	if on {
		return params.Lit(0)
	}
	return params.Lit(1)
}
