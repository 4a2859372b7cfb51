package rangespec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTotal       = errors.New("quantity out of range")
	ErrBlankRange         = errors.New("range is required")
	ErrMalformedToken     = errors.New("malformed range token")
	ErrOutOfBounds        = errors.New("unit out of bounds")
	ErrDuplicateUnit      = errors.New("duplicate unit")
	ErrIncompleteCoverage = errors.New("units do not cover the full quantity")
)

// ValidationError describes the first problem found in a mapping set.
type ValidationError struct {
	Kind  error
	Row   int // 1-based, 0 when the error is about the whole set
	Token string
	Unit  int
	Total int
	// Assigned is the compressed set of units seen before the failure.
	Assigned string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrInvalidTotal:
		return fmt.Sprintf("quantity %d must be between 1 and %d", e.Total, MaxUnits)
	case ErrBlankRange:
		return fmt.Sprintf("row %d: range is required", e.Row)
	case ErrMalformedToken:
		return fmt.Sprintf("row %d: invalid range %q", e.Row, e.Token)
	case ErrOutOfBounds:
		return fmt.Sprintf("row %d: %q must stay within 1-%d", e.Row, e.Token, e.Total)
	case ErrDuplicateUnit:
		return fmt.Sprintf("row %d: unit %d is assigned more than once", e.Row, e.Unit)
	case ErrIncompleteCoverage:
		assigned := e.Assigned
		if assigned == "" {
			assigned = "none"
		}
		return fmt.Sprintf("assigned units (%s) must cover exactly 1-%d", assigned, e.Total)
	default:
		return "invalid range mappings"
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// ValidateMappings checks that mappings partition 1..total exactly. Unlike
// Parse, any malformed token is an error.
func ValidateMappings(mappings []Mapping, total int) error {
	if total < 1 || total > MaxUnits {
		return &ValidationError{Kind: ErrInvalidTotal, Total: total}
	}
	seen := make(map[int]struct{}, total)
	order := make([]int, 0, total)

	for i, m := range mappings {
		row := i + 1
		spec := strings.TrimSpace(m.Range)
		if spec == "" {
			return &ValidationError{Kind: ErrBlankRange, Row: row, Total: total}
		}
		for _, raw := range strings.Split(spec, ",") {
			token := strings.TrimSpace(raw)
			start, end, ok := parseToken(token)
			if !ok || start > end {
				return &ValidationError{Kind: ErrMalformedToken, Row: row, Token: token, Total: total}
			}
			if start < 1 || end > total {
				return &ValidationError{Kind: ErrOutOfBounds, Row: row, Token: token, Total: total}
			}
			for n := start; n <= end; n++ {
				if _, dup := seen[n]; dup {
					return &ValidationError{Kind: ErrDuplicateUnit, Row: row, Token: token, Unit: n, Total: total}
				}
				seen[n] = struct{}{}
				order = append(order, n)
			}
		}
	}

	if len(seen) != total {
		return &ValidationError{Kind: ErrIncompleteCoverage, Total: total, Assigned: Compress(order)}
	}
	return nil
}
