package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/template"
)

// commandKeys are the discriminating fields of a CUE command struct.
var commandKeys = []string{
	"say", "showChoices", "when", "if", "setSwitch", "setVariable",
	"changeItems", "changeGold", "playSound", "raw",
}

// parseCommands reads a CUE list of command structs.
//
//	{say: "Hello {{name}}", face: "Actor1", faceIndex: 0}
//	{showChoices: ["Yes", "No"], cancelType: 1}
//	{when: 0, do: [...]}            // "cancel" for the cancel branch
//	{"if": {switch: 5}, then: [...], "else": [...]}
//	{setSwitch: 5, on: true}
//	{setVariable: 3, op: "add", value: 1}
//	{changeItems: 7, op: "increase", amount: 1}
//	{changeGold: 100, op: "decrease"}
//	{playSound: "Chest1", volume: 90, pitch: 100, pan: 0}
//	{raw: 230, operands: [60]}
func parseCommands(v cue.Value) ([]template.CommandNode, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var nodes []template.CommandNode
	for iter.Next() {
		node, err := parseCommand(iter.Value())
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func parseCommand(v cue.Value) (template.CommandNode, error) {
	kind := ""
	for _, key := range commandKeys {
		if v.LookupPath(cue.MakePath(cue.Str(key))).Exists() {
			if kind != "" {
				return nil, &CompileError{
					Field:   "command",
					Message: fmt.Sprintf("command has both %q and %q", kind, key),
					Pos:     v.Pos(),
				}
			}
			kind = key
		}
	}
	// Keys are looked up as string labels: "if" is a CUE keyword and must
	// be written quoted in source.
	head := v.LookupPath(cue.MakePath(cue.Str(kind)))

	switch kind {
	case "say":
		return parseSay(v, head)
	case "showChoices":
		return parseShowChoices(v, head)
	case "when":
		return parseWhen(v, head)
	case "if":
		return parseBranch(v, head)
	case "setSwitch":
		id, err := parseValue(head)
		if err != nil {
			return nil, err
		}
		on := true
		if onVal := v.LookupPath(cue.ParsePath("on")); onVal.Exists() {
			if on, err = onVal.Bool(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		return template.SetSwitch{ID: id, On: on}, nil
	case "setVariable":
		return parseSetVariable(v, head)
	case "changeItems":
		item, err := parseValue(head)
		if err != nil {
			return nil, err
		}
		op, err := parseAmountOp(v)
		if err != nil {
			return nil, err
		}
		amount, err := optionalValue(v, "amount")
		if err != nil {
			return nil, err
		}
		return template.ChangeItems{ItemID: item, Op: op, Amount: amount}, nil
	case "changeGold":
		amount, err := parseValue(head)
		if err != nil {
			return nil, err
		}
		op, err := parseAmountOp(v)
		if err != nil {
			return nil, err
		}
		return template.ChangeGold{Op: op, Amount: amount}, nil
	case "playSound":
		return parsePlaySound(v, head)
	case "raw":
		code, err := head.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		raw := template.Raw{Code: int(code)}
		if opsVal := v.LookupPath(cue.ParsePath("operands")); opsVal.Exists() {
			if raw.Operands, err = parseValueList(opsVal); err != nil {
				return nil, err
			}
		}
		return raw, nil
	default:
		return nil, &CompileError{
			Field:   "command",
			Message: fmt.Sprintf("unknown command: expected one of %v", commandKeys),
			Pos:     v.Pos(),
		}
	}
}

func parseSay(v, head cue.Value) (template.CommandNode, error) {
	// Both {say: "text"} and {say: {text: ..., face: ...}} are accepted.
	if head.IncompleteKind() == cue.StructKind && !isDeclaredStruct(head) {
		v = head
		head = head.LookupPath(cue.ParsePath("text"))
		if !head.Exists() {
			return nil, &CompileError{Field: "say.text", Message: "say needs text", Pos: v.Pos()}
		}
	}
	text, err := parseValue(head)
	if err != nil {
		return nil, err
	}
	face, err := optionalValue(v, "face")
	if err != nil {
		return nil, err
	}
	faceIndex, err := optionalValue(v, "faceIndex")
	if err != nil {
		return nil, err
	}
	return template.Say{Text: text, Face: face, FaceIndex: faceIndex}, nil
}

func parseShowChoices(v, head cue.Value) (template.CommandNode, error) {
	options, err := parseValueList(head)
	if err != nil {
		return nil, err
	}
	cancel, err := optionalInt(v, "cancelType", -1)
	if err != nil {
		return nil, err
	}
	return template.ShowChoices{Options: options, CancelType: cancel}, nil
}

func parseWhen(v, head cue.Value) (template.CommandNode, error) {
	c := template.ChoiceCase{}
	if s, err := head.String(); err == nil {
		if s != "cancel" {
			return nil, &CompileError{Field: "when", Message: `when must be a choice index or "cancel"`, Pos: head.Pos()}
		}
		c.Index = template.CancelIndex
	} else {
		n, err := head.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		c.Index = int(n)
	}

	var err error
	if c.Label, err = optionalValue(v, "label"); err != nil {
		return nil, err
	}
	if body := v.LookupPath(cue.ParsePath("do")); body.Exists() {
		if c.Body, err = parseCommands(body); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func parseBranch(v, head cue.Value) (template.CommandNode, error) {
	cond, err := parseCondition(head)
	if err != nil {
		return nil, err
	}
	b := template.ConditionalBranch{Condition: cond}
	if then := v.LookupPath(cue.ParsePath("then")); then.Exists() {
		if b.Then, err = parseCommands(then); err != nil {
			return nil, err
		}
	}
	// An explicit empty else list still emits the else marker.
	if elseVal := v.LookupPath(cue.MakePath(cue.Str("else"))); elseVal.Exists() {
		if b.Else, err = parseCommands(elseVal); err != nil {
			return nil, err
		}
		if b.Else == nil {
			b.Else = []template.CommandNode{}
		}
	}
	return b, nil
}

// parseCondition reads one of
//
//	{switch: id, on: bool}
//	{variable: id, cmp: ">=", value: n}
//	{selfSwitch: "A", on: bool}
//	{gold: n}
//	{item: id}
//	{kind: n, operands: [...]}
func parseCondition(v cue.Value) (template.Condition, error) {
	on := true
	if onVal := v.LookupPath(cue.ParsePath("on")); onVal.Exists() {
		b, err := onVal.Bool()
		if err != nil {
			return template.Condition{}, formatCUEError(err)
		}
		on = b
	}

	lookup := func(field string) cue.Value {
		return v.LookupPath(cue.MakePath(cue.Str(field)))
	}

	switch {
	case lookup("switch").Exists():
		id, err := parseValue(lookup("switch"))
		if err != nil {
			return template.Condition{}, err
		}
		return template.SwitchIs(id, on), nil

	case lookup("variable").Exists():
		id, err := parseValue(lookup("variable"))
		if err != nil {
			return template.Condition{}, err
		}
		cmpText, _, err := optionalString(v, "cmp")
		if err != nil {
			return template.Condition{}, err
		}
		if cmpText == "" {
			cmpText = "=="
		}
		cmp, ok := template.ParseCompare(cmpText)
		if !ok {
			return template.Condition{}, &CompileError{Field: "if.cmp", Message: fmt.Sprintf("unknown comparison %q", cmpText), Pos: v.Pos()}
		}
		value, err := optionalValue(v, "value")
		if err != nil {
			return template.Condition{}, err
		}
		if value == nil {
			value = params.Lit(0)
		}
		return template.VariableCompare(id, cmp, value), nil

	case lookup("selfSwitch").Exists():
		ch, err := lookup("selfSwitch").String()
		if err != nil {
			return template.Condition{}, formatCUEError(err)
		}
		return template.SelfSwitchIs(ch, on), nil

	case lookup("gold").Exists():
		amount, err := parseValue(lookup("gold"))
		if err != nil {
			return template.Condition{}, err
		}
		return template.GoldAtLeast(amount), nil

	case lookup("item").Exists():
		item, err := parseValue(lookup("item"))
		if err != nil {
			return template.Condition{}, err
		}
		return template.HasItem(item), nil

	case lookup("kind").Exists():
		kind, err := lookup("kind").Int64()
		if err != nil {
			return template.Condition{}, formatCUEError(err)
		}
		cond := template.Condition{Kind: template.ConditionKind(kind)}
		if ops := lookup("operands"); ops.Exists() {
			if cond.Operands, err = parseValueList(ops); err != nil {
				return template.Condition{}, err
			}
		}
		return cond, nil
	}

	return template.Condition{}, &CompileError{
		Field:   "if",
		Message: "condition needs one of switch, variable, selfSwitch, gold, item or kind",
		Pos:     v.Pos(),
	}
}

func parseSetVariable(v, head cue.Value) (template.CommandNode, error) {
	id, err := parseValue(head)
	if err != nil {
		return nil, err
	}
	opText, _, err := optionalString(v, "op")
	if err != nil {
		return nil, err
	}
	if opText == "" {
		opText = "set"
	}
	op, ok := template.ParseVariableOp(opText)
	if !ok {
		return nil, &CompileError{Field: "setVariable.op", Message: fmt.Sprintf("unknown operation %q", opText), Pos: v.Pos()}
	}
	value, err := optionalValue(v, "value")
	if err != nil {
		return nil, err
	}
	return template.SetVariable{ID: id, Op: op, Value: value}, nil
}

func parseAmountOp(v cue.Value) (template.AmountOp, error) {
	opText, ok, err := optionalString(v, "op")
	if err != nil || !ok {
		return template.Increase, err
	}
	op, ok := template.ParseAmountOp(opText)
	if !ok {
		return 0, &CompileError{Field: "op", Message: fmt.Sprintf("unknown operation %q: use increase or decrease", opText), Pos: v.Pos()}
	}
	return op, nil
}

func parsePlaySound(v, head cue.Value) (template.CommandNode, error) {
	name, err := parseValue(head)
	if err != nil {
		return nil, err
	}
	ps := template.PlaySound{Name: name}
	if ps.Volume, err = optionalValue(v, "volume"); err != nil {
		return nil, err
	}
	if ps.Pitch, err = optionalValue(v, "pitch"); err != nil {
		return nil, err
	}
	if ps.Pan, err = optionalValue(v, "pan"); err != nil {
		return nil, err
	}
	return ps, nil
}

func parseValueList(v cue.Value) ([]params.Value, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []params.Value
	for iter.Next() {
		val, err := parseValue(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

// isDeclaredStruct reports whether a struct is a {choice} or {expr} value
// rather than a nested command body.
func isDeclaredStruct(v cue.Value) bool {
	return v.LookupPath(cue.ParsePath("choice")).Exists() || v.LookupPath(cue.ParsePath("expr")).Exists()
}
