package params

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/roach88/scenesmith/internal/ir"
)

// helperSignatures declares the RNG-backed helpers available to expressions,
// so that calls are type-checked at compile time.
var helperSignatures = map[string]any{
	"roll":    func(n int) int { return 0 },
	"randInt": func(lo, hi int) int { return 0 },
	"pick":    func(options []any) any { return nil },
}

// Expr compiles an expr-lang expression into a Computed value.
//
// The expression sees every context binding as a variable plus three
// helpers drawing from the threaded RNG:
//
//	roll(n)         uniform int in [0, n)
//	randInt(lo, hi) uniform int in [lo, hi]
//	pick(list)      uniform element of list
//
// Non-integral numeric results are truncated toward zero. Evaluation errors
// resolve to IRNull, since resolution cannot fail.
func Expr(source string) (Computed, error) {
	program, err := expr.Compile(source, expr.Env(helperSignatures), expr.AllowUndefinedVariables())
	if err != nil {
		return Computed{}, fmt.Errorf("compile expression %q: %w", source, err)
	}
	return Computed{
		Name: "expr:" + source,
		Fn: func(ctx Context, rng RNG) ir.IRValue {
			return evalProgram(program, ctx, rng)
		},
	}, nil
}

// MustExpr is like Expr but panics on error.
// Use only in tests or with constant expressions.
func MustExpr(source string) Computed {
	c, err := Expr(source)
	if err != nil {
		panic(err)
	}
	return c
}

func evalProgram(program *vm.Program, ctx Context, rng RNG) ir.IRValue {
	env := make(map[string]any, ctx.Len()+len(helperSignatures))
	for _, name := range ctx.Names() {
		v, _ := ctx.Lookup(name)
		env[name] = ir.ToAny(v)
	}
	env["roll"] = func(n int) int {
		if n <= 0 {
			return 0
		}
		return rng.IntN(n)
	}
	env["randInt"] = func(lo, hi int) int {
		if hi < lo {
			lo, hi = hi, lo
		}
		return lo + rng.IntN(hi-lo+1)
	}
	env["pick"] = func(options []any) any {
		if len(options) == 0 {
			return nil
		}
		return options[rng.IntN(len(options))]
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return ir.IRNull{}
	}
	return exprResult(out)
}

func exprResult(out any) ir.IRValue {
	switch n := out.(type) {
	case float64:
		return ir.IRInt(int64(math.Trunc(n)))
	case float32:
		return ir.IRInt(int64(math.Trunc(float64(n))))
	}
	v, err := ir.FromAny(out)
	if err != nil {
		return ir.IRNull{}
	}
	return v
}
