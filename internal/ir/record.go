package ir

// Event command codes understood by the RMMZ interpreter.
const (
	CodeEnd              = 0   // end of list / end of block
	CodeShowText         = 101 // [faceName, faceIndex, background, positionType, text]
	CodeShowChoices      = 102 // [[labels...], cancelType]
	CodeConditionalStart = 111 // [kind, operands...]
	CodeControlSwitches  = 121 // [startId, endId, 0=ON 1=OFF]
	CodeControlVariables = 122 // [startId, endId, op, operandType, value]
	CodeChangeGold       = 125 // [op, operandType, amount]
	CodeChangeItems      = 126 // [itemId, op, operandType, amount]
	CodePlaySE           = 250 // [{name, volume, pitch, pan}]
	CodeTextLine         = 401 // [text] continuation line of the preceding Show Text
	CodeWhenChoice       = 402 // [index, label]
	CodeWhenCancel       = 403 // []
	CodeChoicesEnd       = 404 // []
	CodeElse             = 411 // []
	CodeBranchEnd        = 412 // []
)

// Coordinate is a tile position on a map grid.
type Coordinate struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Instruction is one flat, depth-tagged unit of a compiled command list.
// Indent is the only nesting signal; there are no structural back-references.
type Instruction struct {
	Code       int     `json:"code"`
	Indent     int     `json:"indent"`
	Parameters IRArray `json:"parameters"`
}

// Terminator returns the end-of-script instruction every page list ends with.
func Terminator() Instruction {
	return Instruction{Code: CodeEnd, Indent: 0, Parameters: IRArray{}}
}

// Object returns the instruction as an IRObject for canonical serialization.
func (in Instruction) Object() IRObject {
	params := in.Parameters
	if params == nil {
		params = IRArray{}
	}
	return IRObject{
		"code":       IRInt(in.Code),
		"indent":     IRInt(in.Indent),
		"parameters": params,
	}
}

// CompiledPage is one RMMZ event page with its flattened command list.
type CompiledPage struct {
	Conditions    IRObject      `json:"conditions"`
	Image         IRObject      `json:"image"`
	MoveType      int           `json:"moveType"`
	MoveSpeed     int           `json:"moveSpeed"`
	MoveFrequency int           `json:"moveFrequency"`
	MoveRoute     IRObject      `json:"moveRoute"`
	PriorityType  int           `json:"priorityType"`
	StepAnime     bool          `json:"stepAnime"`
	WalkAnime     bool          `json:"walkAnime"`
	DirectionFix  bool          `json:"directionFix"`
	Through       bool          `json:"through"`
	Trigger       int           `json:"trigger"`
	List          []Instruction `json:"list"`
}

// Object returns the page as an IRObject for canonical serialization.
func (p CompiledPage) Object() IRObject {
	list := make(IRArray, len(p.List))
	for i, in := range p.List {
		list[i] = in.Object()
	}
	return IRObject{
		"conditions":    orEmpty(p.Conditions),
		"image":         orEmpty(p.Image),
		"moveType":      IRInt(p.MoveType),
		"moveSpeed":     IRInt(p.MoveSpeed),
		"moveFrequency": IRInt(p.MoveFrequency),
		"moveRoute":     orEmpty(p.MoveRoute),
		"priorityType":  IRInt(p.PriorityType),
		"stepAnime":     IRBool(p.StepAnime),
		"walkAnime":     IRBool(p.WalkAnime),
		"directionFix":  IRBool(p.DirectionFix),
		"through":       IRBool(p.Through),
		"trigger":       IRInt(p.Trigger),
		"list":          list,
	}
}

// Instance is a materialized map event ready for an external map writer.
// Instances are never mutated after construction.
type Instance struct {
	ID    int            `json:"id"`
	Name  string         `json:"name"`
	Note  string         `json:"note"`
	X     int            `json:"x"`
	Y     int            `json:"y"`
	Pages []CompiledPage `json:"pages"`
}

// Coordinate returns the instance position.
func (e Instance) Coordinate() Coordinate {
	return Coordinate{X: e.X, Y: e.Y}
}

// Object returns the instance as an IRObject for canonical serialization.
func (e Instance) Object() IRObject {
	pages := make(IRArray, len(e.Pages))
	for i, p := range e.Pages {
		pages[i] = p.Object()
	}
	return IRObject{
		"id":    IRInt(e.ID),
		"name":  IRString(e.Name),
		"note":  IRString(e.Note),
		"x":     IRInt(e.X),
		"y":     IRInt(e.Y),
		"pages": pages,
	}
}

func orEmpty(obj IRObject) IRObject {
	if obj == nil {
		return IRObject{}
	}
	return obj
}

// DefaultConditions returns an RMMZ page condition block with every gate off.
func DefaultConditions() IRObject {
	return IRObject{
		"actorId":         IRInt(1),
		"actorValid":      IRBool(false),
		"itemId":          IRInt(1),
		"itemValid":       IRBool(false),
		"selfSwitchCh":    IRString("A"),
		"selfSwitchValid": IRBool(false),
		"switch1Id":       IRInt(1),
		"switch1Valid":    IRBool(false),
		"switch2Id":       IRInt(1),
		"switch2Valid":    IRBool(false),
		"variableId":      IRInt(1),
		"variableValid":   IRBool(false),
		"variableValue":   IRInt(0),
	}
}

// DefaultImage returns an RMMZ page image block with no graphic.
func DefaultImage() IRObject {
	return IRObject{
		"characterIndex": IRInt(0),
		"characterName":  IRString(""),
		"direction":      IRInt(2),
		"pattern":        IRInt(1),
		"tileId":         IRInt(0),
	}
}

// DefaultMoveRoute returns the empty repeating move route RMMZ expects.
func DefaultMoveRoute() IRObject {
	return IRObject{
		"list": IRArray{IRObject{
			"code":       IRInt(0),
			"parameters": IRArray{},
		}},
		"repeat":    IRBool(true),
		"skippable": IRBool(false),
		"wait":      IRBool(false),
	}
}

// Page attribute defaults, matching the RMMZ editor.
const (
	DefaultMoveSpeed     = 3
	DefaultMoveFrequency = 3
	DefaultPriorityType  = 1
)
