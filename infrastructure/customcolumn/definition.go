package customcolumn

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind names how a custom column is computed.
type Kind string

const (
	KindStatic        Kind = "static"
	KindConcatenation Kind = "concatenation"
	KindArithmetic    Kind = "arithmetic"
)

// DefaultSeparator joins concatenated values when none is configured.
const DefaultSeparator = " "

var (
	ErrUnknownKind      = errors.New("unknown custom column type")
	ErrInvalidVariant   = errors.New("custom column fields do not match its type")
	ErrIDRequired       = errors.New("custom column id is required")
	ErrDuplicateID      = errors.New("duplicate custom column id")
	ErrReservedID       = errors.New("custom column id is reserved")
	ErrColumnNotFound   = errors.New("custom column not found")
	ErrColumnReferenced = errors.New("custom column is referenced by another column")
)

type Static struct {
	Value Value
}

type Concat struct {
	Sources   []string
	Separator string
}

type Arithmetic struct {
	Expression string
}

// Definition is a user-authored report column. Exactly one of Static, Concat
// or Arith is set, matching Kind.
type Definition struct {
	ID          string
	DisplayName string
	Kind        Kind
	Static      *Static
	Concat      *Concat
	Arith       *Arithmetic
}

func NewStatic(id, displayName string, value Value) Definition {
	return Definition{ID: id, DisplayName: displayName, Kind: KindStatic, Static: &Static{Value: value}}
}

func NewConcat(id, displayName string, sources []string, separator string) Definition {
	return Definition{ID: id, DisplayName: displayName, Kind: KindConcatenation, Concat: &Concat{Sources: sources, Separator: separator}}
}

func NewArithmetic(id, displayName, expression string) Definition {
	return Definition{ID: id, DisplayName: displayName, Kind: KindArithmetic, Arith: &Arithmetic{Expression: expression}}
}

// check reports whether the payload matches Kind.
func (d Definition) check() error {
	if strings.TrimSpace(d.ID) == "" {
		return ErrIDRequired
	}
	set := 0
	for _, p := range []bool{d.Static != nil, d.Concat != nil, d.Arith != nil} {
		if p {
			set++
		}
	}
	var ok bool
	switch d.Kind {
	case KindStatic:
		ok = d.Static != nil
	case KindConcatenation:
		ok = d.Concat != nil
	case KindArithmetic:
		ok = d.Arith != nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind)
	}
	if !ok || set != 1 {
		return fmt.Errorf("%w: column %q", ErrInvalidVariant, d.ID)
	}
	return nil
}

// wireDefinition is the stored settings shape.
type wireDefinition struct {
	ID                   string   `json:"id"`
	DisplayName          string   `json:"displayName"`
	Type                 Kind     `json:"type"`
	SourceColumns        []string `json:"sourceColumns,omitempty"`
	Separator            *string  `json:"separator,omitempty"`
	ArithmeticExpression *string  `json:"arithmeticExpression,omitempty"`
	StaticValue          *Value   `json:"staticValue,omitempty"`
}

func (d Definition) MarshalJSON() ([]byte, error) {
	w := wireDefinition{ID: d.ID, DisplayName: d.DisplayName, Type: d.Kind}
	switch {
	case d.Static != nil:
		v := d.Static.Value
		w.StaticValue = &v
	case d.Concat != nil:
		w.SourceColumns = d.Concat.Sources
		if w.SourceColumns == nil {
			w.SourceColumns = []string{}
		}
		sep := d.Concat.Separator
		w.Separator = &sep
	case d.Arith != nil:
		expr := d.Arith.Expression
		w.ArithmeticExpression = &expr
	}
	return json.Marshal(w)
}

func (d *Definition) UnmarshalJSON(b []byte) error {
	var w wireDefinition
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := Definition{
		ID:          strings.TrimSpace(w.ID),
		DisplayName: strings.TrimSpace(w.DisplayName),
		Kind:        w.Type,
	}
	switch w.Type {
	case KindStatic:
		v := Undefined()
		if w.StaticValue != nil {
			v = *w.StaticValue
		}
		out.Static = &Static{Value: v}
	case KindConcatenation:
		if w.SourceColumns == nil {
			return fmt.Errorf("%w: concatenation needs sourceColumns", ErrInvalidVariant)
		}
		sep := DefaultSeparator
		if w.Separator != nil {
			sep = *w.Separator
		}
		out.Concat = &Concat{Sources: w.SourceColumns, Separator: sep}
	case KindArithmetic:
		if w.ArithmeticExpression == nil {
			return fmt.Errorf("%w: arithmetic needs arithmeticExpression", ErrInvalidVariant)
		}
		out.Arith = &Arithmetic{Expression: *w.ArithmeticExpression}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, w.Type)
	}
	*d = out
	return nil
}
