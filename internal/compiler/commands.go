package compiler

import (
	"strings"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/template"
)

// Message window defaults for Show Text: normal background, bottom position.
const (
	textBackground = 0
	textPosition   = 2
)

// Play SE defaults used when a PlaySound leaves a field unset.
const (
	defaultVolume = 90
	defaultPitch  = 100
	defaultPan    = 0
)

// Compile flattens a command tree into depth-tagged instructions, starting
// at depth 0.
//
// Values are resolved against ctx in emission order, so the RNG is consumed
// deterministically. Every instruction is built fresh; nothing in nodes is
// mutated.
//
// A choice scope opened by ShowChoices is closed with an End Choices marker
// at the opener's depth when its run of ChoiceCase siblings ends, when
// another ShowChoices begins, or at the end of the list. A ChoiceCase with
// no open scope is a caller error and is emitted as-is; Validate reports it.
func Compile(nodes []template.CommandNode, ctx params.Context, rng params.RNG) []ir.Instruction {
	e := &emitter{ctx: ctx, rng: rng}
	e.list(nodes, 0)
	if e.out == nil {
		return []ir.Instruction{}
	}
	return e.out
}

// CompilePage is Compile followed by the end-of-list terminator.
func CompilePage(nodes []template.CommandNode, ctx params.Context, rng params.RNG) []ir.Instruction {
	return append(Compile(nodes, ctx, rng), ir.Terminator())
}

type emitter struct {
	ctx params.Context
	rng params.RNG
	out []ir.Instruction
}

// choiceScope tracks an open Show Choices block.
type choiceScope struct {
	labels ir.IRArray
}

func (e *emitter) emit(code, indent int, parameters ...ir.IRValue) {
	if parameters == nil {
		parameters = ir.IRArray{}
	}
	e.out = append(e.out, ir.Instruction{Code: code, Indent: indent, Parameters: parameters})
}

func (e *emitter) resolve(v params.Value) ir.IRValue {
	return params.Resolve(v, e.ctx, e.rng)
}

// resolveOr resolves v, falling back to def when v is unset or null.
func (e *emitter) resolveOr(v params.Value, def ir.IRValue) ir.IRValue {
	if v == nil {
		return def
	}
	out := e.resolve(v)
	if _, isNull := out.(ir.IRNull); isNull {
		return def
	}
	return out
}

// text resolves a text-bearing operand. A marker bound to a typed value
// still lands as a string.
func (e *emitter) text(v params.Value) ir.IRString {
	out := e.resolveOr(v, ir.IRString(""))
	if s, ok := out.(ir.IRString); ok {
		return s
	}
	return ir.IRString(ir.Text(out))
}

func (e *emitter) list(nodes []template.CommandNode, depth int) {
	var scope *choiceScope
	closeScope := func() {
		if scope != nil {
			e.emit(ir.CodeChoicesEnd, depth)
			scope = nil
		}
	}

	for _, n := range nodes {
		switch node := n.(type) {
		case template.ShowChoices:
			closeScope()
			scope = e.showChoices(node, depth)
		case template.ChoiceCase:
			e.choiceCase(node, scope, depth)
		default:
			closeScope()
			e.node(n, depth)
		}
	}
	closeScope()
}

func (e *emitter) showChoices(node template.ShowChoices, depth int) *choiceScope {
	labels := make(ir.IRArray, len(node.Options))
	for i, opt := range node.Options {
		labels[i] = e.text(opt)
	}
	e.emit(ir.CodeShowChoices, depth, labels, ir.IRInt(node.CancelType))
	return &choiceScope{labels: labels}
}

func (e *emitter) choiceCase(node template.ChoiceCase, scope *choiceScope, depth int) {
	if node.Index == template.CancelIndex {
		e.emit(ir.CodeWhenCancel, depth)
		e.list(node.Body, depth+1)
		return
	}

	var label ir.IRValue = ir.IRString("")
	if scope != nil && node.Index >= 0 && node.Index < len(scope.labels) {
		label = scope.labels[node.Index]
	}
	if node.Label != nil {
		label = e.text(node.Label)
	}
	e.emit(ir.CodeWhenChoice, depth, ir.IRInt(node.Index), label)
	e.list(node.Body, depth+1)
}

func (e *emitter) node(n template.CommandNode, depth int) {
	switch node := n.(type) {
	case template.Say:
		e.say(node, depth)

	case template.ConditionalBranch:
		e.branch(node, depth)

	case template.SetSwitch:
		id := e.resolve(node.ID)
		state := 1
		if node.On {
			state = 0
		}
		e.emit(ir.CodeControlSwitches, depth, id, id, ir.IRInt(state))

	case template.SetVariable:
		id := e.resolve(node.ID)
		value := e.resolveOr(node.Value, ir.IRInt(0))
		e.emit(ir.CodeControlVariables, depth, id, id, ir.IRInt(node.Op), ir.IRInt(0), value)

	case template.ChangeGold:
		amount := e.resolveOr(node.Amount, ir.IRInt(0))
		e.emit(ir.CodeChangeGold, depth, ir.IRInt(node.Op), ir.IRInt(0), amount)

	case template.ChangeItems:
		item := e.resolve(node.ItemID)
		amount := e.resolveOr(node.Amount, ir.IRInt(1))
		e.emit(ir.CodeChangeItems, depth, item, ir.IRInt(node.Op), ir.IRInt(0), amount)

	case template.PlaySound:
		se := ir.IRObject{
			"name":   e.resolveOr(node.Name, ir.IRString("")),
			"volume": e.resolveOr(node.Volume, ir.IRInt(defaultVolume)),
			"pitch":  e.resolveOr(node.Pitch, ir.IRInt(defaultPitch)),
			"pan":    e.resolveOr(node.Pan, ir.IRInt(defaultPan)),
		}
		e.emit(ir.CodePlaySE, depth, se)

	case template.Raw:
		operands := make(ir.IRArray, len(node.Operands))
		for i, op := range node.Operands {
			operands[i] = e.resolve(op)
		}
		e.emit(node.Code, depth, operands...)
	}
}

// say emits the first line of the message in Show Text and every further
// line as a Text Line at the same depth.
func (e *emitter) say(node template.Say, depth int) {
	face := e.text(node.Face)
	faceIndex := e.resolveOr(node.FaceIndex, ir.IRInt(0))
	lines := strings.Split(strings.ReplaceAll(string(e.text(node.Text)), "\r\n", "\n"), "\n")
	e.emit(ir.CodeShowText, depth, face, faceIndex, ir.IRInt(textBackground), ir.IRInt(textPosition), ir.IRString(lines[0]))
	for _, line := range lines[1:] {
		e.emit(ir.CodeTextLine, depth, ir.IRString(line))
	}
}

func (e *emitter) branch(node template.ConditionalBranch, depth int) {
	parameters := make(ir.IRArray, 0, len(node.Condition.Operands)+1)
	parameters = append(parameters, ir.IRInt(node.Condition.Kind))
	for _, op := range node.Condition.Operands {
		parameters = append(parameters, e.resolve(op))
	}
	e.emit(ir.CodeConditionalStart, depth, parameters...)
	e.list(node.Then, depth+1)
	if node.Else != nil {
		e.emit(ir.CodeElse, depth)
		e.list(node.Else, depth+1)
	}
	e.emit(ir.CodeBranchEnd, depth)
}
