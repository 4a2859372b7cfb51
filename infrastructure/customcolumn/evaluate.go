// Package customcolumn computes user-defined report columns against flattened
// report rows.
//
// A column is static, a concatenation of other columns, or an arithmetic
// expression over other columns. Evaluation never fails outright: problems
// are written into the cell as sentinel strings (see CycleErr and the Err*
// constants).
package customcolumn

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/shopspring/decimal"
)

// DisplaySerialNo is the pseudo-column holding the 1-based row position.
const DisplaySerialNo = "displaySerialNo"

// Row is one flattened report row keyed by column id.
type Row map[string]any

// Evaluator computes custom columns. Compiled expressions are cached, so an
// Evaluator should be reused across the rows of one report. It is not safe
// for concurrent use.
type Evaluator struct {
	defs     map[string]Definition
	programs map[string]*vm.Program
	logger   *slog.Logger
}

// NewEvaluator indexes defs by id. Definitions whose payload does not match
// their kind are ignored.
func NewEvaluator(defs []Definition) *Evaluator {
	e := &Evaluator{
		defs:     make(map[string]Definition, len(defs)),
		programs: make(map[string]*vm.Program),
		logger:   slog.Default(),
	}
	for _, d := range defs {
		if err := d.check(); err != nil {
			e.logger.Warn("skipping invalid custom column", slog.String("column", d.ID), slog.Any("err", err))
			continue
		}
		e.defs[d.ID] = d
	}
	return e
}

// WithLogger replaces the logger used for operand warnings.
func (e *Evaluator) WithLogger(l *slog.Logger) *Evaluator {
	if l != nil {
		e.logger = l
	}
	return e
}

// Evaluate computes columnID for row. rowIndex is the 0-based position of
// the row in the report. Unknown ids yield an undefined value.
func Evaluate(row Row, columnID string, defs []Definition, rowIndex int) Value {
	return NewEvaluator(defs).Evaluate(row, columnID, rowIndex)
}

func (e *Evaluator) Evaluate(row Row, columnID string, rowIndex int) Value {
	return e.eval(row, columnID, rowIndex, make(map[string]bool))
}

// Apply evaluates every definition for every row, in definition order.
func Apply(rows []Row, defs []Definition) [][]Value {
	e := NewEvaluator(defs)
	out := make([][]Value, len(rows))
	for i, row := range rows {
		values := make([]Value, len(defs))
		for j, d := range defs {
			values[j] = e.Evaluate(row, d.ID, i)
		}
		out[i] = values
	}
	return out
}

// eval computes id with path holding the columns currently being computed
// above it. Reaching a column already on the path is a cycle.
func (e *Evaluator) eval(row Row, id string, rowIndex int, path map[string]bool) Value {
	def, ok := e.defs[id]
	if !ok {
		return Undefined()
	}
	path[id] = true
	defer delete(path, id)

	switch def.Kind {
	case KindStatic:
		return def.Static.Value
	case KindConcatenation:
		return e.concatenate(row, def.Concat, rowIndex, path)
	case KindArithmetic:
		return e.arithmetic(row, def.ID, def.Arith.Expression, rowIndex, path)
	default:
		return Undefined()
	}
}

func (e *Evaluator) resolve(row Row, source string, rowIndex int, path map[string]bool) Value {
	if _, custom := e.defs[source]; custom {
		if path[source] {
			return Text(CycleErr)
		}
		return e.eval(row, source, rowIndex, path)
	}
	if source == DisplaySerialNo {
		return Number(decimal.NewFromInt(int64(rowIndex + 1)))
	}
	return FromAny(row[source])
}

func (e *Evaluator) known(row Row, name string) bool {
	if _, custom := e.defs[name]; custom {
		return true
	}
	if name == DisplaySerialNo {
		return true
	}
	_, ok := row[name]
	return ok
}

func (e *Evaluator) concatenate(row Row, c *Concat, rowIndex int, path map[string]bool) Value {
	sep := c.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	parts := make([]string, 0, len(c.Sources))
	for _, source := range c.Sources {
		parts = append(parts, e.resolve(row, source, rowIndex, path).String())
	}
	return Text(strings.Join(parts, sep))
}

func (e *Evaluator) arithmetic(row Row, id, expression string, rowIndex int, path map[string]bool) (result Value) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return Text(ErrNoExpr)
	}

	env := map[string]any{mathName: mathNamespace}
	for _, name := range expressionOperands(expression) {
		if _, bound := env[name]; bound {
			continue
		}
		if !e.known(row, name) {
			return Text(ErrVar)
		}
		dep := e.resolve(row, name, rowIndex, path)
		if dep.IsSentinel() {
			if dep.String() == CycleErr {
				return Text(CycleErr)
			}
			return Text(ErrVar)
		}
		env[name] = e.operand(dep, id, name)
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("custom column expression panicked", slog.String("column", id), slog.Any("panic", r))
			result = Text(ErrExpr)
		}
	}()

	program, err := e.compile(expression, env)
	if err != nil {
		return Text(ErrExpr)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return Text(ErrExpr)
	}
	return numericResult(out)
}

func (e *Evaluator) compile(expression string, env map[string]any) (*vm.Program, error) {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	key := expression + "\x00" + strings.Join(names, ",")
	if p, ok := e.programs[key]; ok {
		return p, nil
	}
	p, err := expr.Compile(expression, append([]expr.Option{expr.Env(env)}, remainderOptions...)...)
	if err != nil {
		return nil, err
	}
	e.programs[key] = p
	return p, nil
}

// operand coerces a resolved dependency to a number. Anything that does not
// parse becomes NaN.
func (e *Evaluator) operand(v Value, column, name string) float64 {
	if d, ok := v.Decimal(); ok {
		return d.InexactFloat64()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
	if err != nil {
		e.logger.Warn("custom column operand is not numeric",
			slog.String("column", column),
			slog.String("operand", name),
			slog.String("value", v.String()))
		return math.NaN()
	}
	return f
}

func numericResult(out any) Value {
	var f float64
	switch x := out.(type) {
	case int:
		return Number(decimal.NewFromInt(int64(x)))
	case int64:
		return Number(decimal.NewFromInt(x))
	case float32:
		f = float64(x)
	case float64:
		f = x
	case bool:
		return Text(strconv.FormatBool(x))
	case string:
		return Text(x)
	default:
		return Text(ErrExpr)
	}
	if math.IsNaN(f) {
		return Text(ErrCalcNaN)
	}
	if math.IsInf(f, 0) {
		return Text(ErrInfinite)
	}
	return Number(decimal.NewFromFloat(f).Round(4))
}
