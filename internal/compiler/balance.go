package compiler

import (
	"fmt"

	"github.com/roach88/scenesmith/internal/ir"
)

// BalanceError reports the first instruction that breaks scope nesting.
type BalanceError struct {
	Index   int // position in the instruction list, or len(list) for unclosed scopes
	Code    int
	Indent  int
	Message string
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("instruction %d (code %d, indent %d): %s", e.Index, e.Code, e.Indent, e.Message)
}

type openScope struct {
	code    int // CodeConditionalStart or CodeShowChoices
	depth   int
	index   int
	seenEnd bool // else marker seen (branches) or first case seen (choices)
}

// CheckBalance verifies that every Conditional Branch and Show Choices
// scope in list is closed at the depth it was opened, that bodies sit
// exactly one level deeper than their opener, and that markers appear only
// inside a matching scope. A Text Line must directly follow a Show Text or
// another Text Line at the same depth. It returns nil or a *BalanceError.
func CheckBalance(list []ir.Instruction) error {
	var stack []*openScope

	top := func() *openScope {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}
	fail := func(i int, in ir.Instruction, format string, args ...any) error {
		return &BalanceError{Index: i, Code: in.Code, Indent: in.Indent, Message: fmt.Sprintf(format, args...)}
	}

	for i, in := range list {
		s := top()
		switch in.Code {
		case ir.CodeElse, ir.CodeBranchEnd:
			if s == nil || s.code != ir.CodeConditionalStart || s.depth != in.Indent {
				return fail(i, in, "branch marker without an open conditional branch at this depth")
			}
			if in.Code == ir.CodeElse {
				if s.seenEnd {
					return fail(i, in, "second else marker for branch opened at %d", s.index)
				}
				s.seenEnd = true
				continue
			}
			stack = stack[:len(stack)-1]
			continue

		case ir.CodeWhenChoice, ir.CodeWhenCancel, ir.CodeChoicesEnd:
			if s == nil || s.code != ir.CodeShowChoices || s.depth != in.Indent {
				return fail(i, in, "choice marker without an open choice scope at this depth")
			}
			if in.Code == ir.CodeChoicesEnd {
				stack = stack[:len(stack)-1]
			} else {
				s.seenEnd = true
			}
			continue
		}

		if in.Code == ir.CodeTextLine {
			if i == 0 || (list[i-1].Code != ir.CodeShowText && list[i-1].Code != ir.CodeTextLine) || list[i-1].Indent != in.Indent {
				return fail(i, in, "text line does not follow a message at this depth")
			}
		}

		want := 0
		if s != nil {
			if s.code == ir.CodeShowChoices && !s.seenEnd {
				return fail(i, in, "instruction inside choice scope opened at %d before any case", s.index)
			}
			want = s.depth + 1
		}
		if in.Indent != want {
			return fail(i, in, "expected indent %d", want)
		}
		if in.Code == ir.CodeConditionalStart || in.Code == ir.CodeShowChoices {
			stack = append(stack, &openScope{code: in.Code, depth: in.Indent, index: i})
		}
	}

	if s := top(); s != nil {
		return &BalanceError{
			Index:   len(list),
			Code:    s.code,
			Indent:  s.depth,
			Message: fmt.Sprintf("scope opened at %d is never closed", s.index),
		}
	}
	return nil
}
