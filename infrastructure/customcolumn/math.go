package customcolumn

import (
	"math"

	"github.com/expr-lang/expr"
)

const mathName = "Math"

// mathNamespace is bound as Math in every expression. Functions take any so
// that integer literals and float operands both work.
var mathNamespace = map[string]any{
	"abs":   unary(math.Abs),
	"ceil":  unary(math.Ceil),
	"floor": unary(math.Floor),
	"round": unary(roundHalfUp),
	"trunc": unary(math.Trunc),
	"sign":  unary(sign),
	"sqrt":  unary(math.Sqrt),
	"cbrt":  unary(math.Cbrt),
	"log":   unary(math.Log),
	"log10": unary(math.Log10),
	"exp":   unary(math.Exp),
	"pow":   binary(math.Pow),
	"min":   fold(math.Min, math.Inf(1)),
	"max":   fold(math.Max, math.Inf(-1)),
	"PI":    math.Pi,
	"E":     math.E,
}

// remainderOptions route % through math.Mod whenever a float is involved.
// expr only defines % for integers and column operands are always floats.
var remainderOptions = []expr.Option{
	expr.Function("fmod",
		func(params ...any) (any, error) {
			return math.Mod(toFloat(params[0]), toFloat(params[1])), nil
		},
		new(func(float64, float64) float64),
		new(func(float64, int) float64),
		new(func(int, float64) float64),
	),
	expr.Operator("%", "fmod"),
}

func unary(fn func(float64) float64) func(args ...any) float64 {
	return func(args ...any) float64 {
		if len(args) == 0 {
			return math.NaN()
		}
		return fn(toFloat(args[0]))
	}
}

func binary(fn func(a, b float64) float64) func(args ...any) float64 {
	return func(args ...any) float64 {
		if len(args) < 2 {
			return math.NaN()
		}
		return fn(toFloat(args[0]), toFloat(args[1]))
	}
}

func fold(fn func(a, b float64) float64, start float64) func(args ...any) float64 {
	return func(args ...any) float64 {
		acc := start
		for _, a := range args {
			acc = fn(acc, toFloat(a))
		}
		return acc
	}
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func sign(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return x
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	default:
		return math.NaN()
	}
}
