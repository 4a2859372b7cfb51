package customcolumn

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel values written into report cells in place of a result.
const (
	CycleErr    = "CycleErr"
	ErrCalcNaN  = "Err:CalcNaN"
	ErrInfinite = "Err:Infinite"
	ErrExpr     = "Err:Expr"
	ErrVar      = "Err:Var"
	ErrNoExpr   = "Err:NoExpr"
)

type valueKind uint8

const (
	kindUndefined valueKind = iota
	kindText
	kindNumber
)

// Value is a computed cell: undefined, text or a number.
type Value struct {
	kind valueKind
	text string
	num  decimal.Decimal
}

func Undefined() Value { return Value{} }

func Text(s string) Value { return Value{kind: kindText, text: s} }

func Number(d decimal.Decimal) Value { return Value{kind: kindNumber, num: d} }

func (v Value) IsUndefined() bool { return v.kind == kindUndefined }

func (v Value) IsNumber() bool { return v.kind == kindNumber }

// IsSentinel reports whether v is one of the error sentinels.
func (v Value) IsSentinel() bool {
	return v.kind == kindText && (v.text == CycleErr || strings.HasPrefix(v.text, "Err:"))
}

// Decimal returns the numeric value; ok is false for text and undefined.
func (v Value) Decimal() (decimal.Decimal, bool) {
	return v.num, v.kind == kindNumber
}

// Interface returns the value as a plain Go value for spreadsheet cells:
// float64 for numbers, string for text, nil for undefined.
func (v Value) Interface() any {
	switch v.kind {
	case kindNumber:
		return v.num.InexactFloat64()
	case kindText:
		return v.text
	default:
		return nil
	}
}

// String renders the value for display. Undefined renders empty.
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return v.num.String()
	case kindText:
		return v.text
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return []byte(v.num.String()), nil
	case kindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null" || raw == "":
		*v = Undefined()
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
	default:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("static value must be a string or number: %w", err)
		}
		*v = Number(d)
	}
	return nil
}

// FromAny converts a report row field to a Value.
func FromAny(field any) Value {
	switch x := field.(type) {
	case nil:
		return Undefined()
	case Value:
		return x
	case string:
		return Text(x)
	case decimal.Decimal:
		return Number(x)
	case *decimal.Decimal:
		if x == nil {
			return Undefined()
		}
		return Number(*x)
	case int:
		return Number(decimal.NewFromInt(int64(x)))
	case int32:
		return Number(decimal.NewFromInt32(x))
	case int64:
		return Number(decimal.NewFromInt(x))
	case uint:
		return Number(decimal.RequireFromString(strconv.FormatUint(uint64(x), 10)))
	case uint64:
		return Number(decimal.RequireFromString(strconv.FormatUint(x, 10)))
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case json.Number:
		if d, err := decimal.NewFromString(x.String()); err == nil {
			return Number(d)
		}
		return Text(x.String())
	case bool:
		return Text(strconv.FormatBool(x))
	case time.Time:
		if x.IsZero() {
			return Undefined()
		}
		return Text(x.Format("2006-01-02"))
	case []string:
		return Text(strings.Join(x, ","))
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			parts = append(parts, FromAny(item).String())
		}
		return Text(strings.Join(parts, ","))
	case fmt.Stringer:
		return Text(x.String())
	default:
		return Text(fmt.Sprint(x))
	}
}

func fromFloat(f float64) Value {
	if math.IsNaN(f) {
		return Text("NaN")
	}
	if math.IsInf(f, 0) {
		return Text("Infinity")
	}
	return Number(decimal.NewFromFloat(f))
}
