package masters

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"stockroom/infrastructure/audit"
)

var (
	ErrUnknownKind           = errors.New("unknown master kind")
	ErrNameRequired          = errors.New("name is required")
	ErrFinancialYearRequired = errors.New("financial year is required")
	ErrNegativeAmount        = errors.New("amount must not be negative")
	ErrNameExists            = errors.New("name already exists")
	ErrNotFound              = errors.New("master row not found")
	ErrInUse                 = errors.New("master row is referenced and cannot be deleted")
	ErrUnknownLocation       = errors.New("unknown location")
)

// Kind describes one master table.
type Kind struct {
	Name   string
	table  string
	entity string
	budget bool
}

var kinds = map[string]Kind{
	"categories": {Name: "categories", table: "categories", entity: audit.EntityCategory},
	"locations":  {Name: "locations", table: "locations", entity: audit.EntityLocation},
	"statuses":   {Name: "statuses", table: "statuses", entity: audit.EntityStatus},
	"budgets":    {Name: "budgets", table: "budgets", entity: audit.EntityBudget, budget: true},
}

// ParseKind maps a URL segment to its master table.
func ParseKind(raw string) (Kind, error) {
	k, ok := kinds[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return Kind{}, ErrUnknownKind
	}
	return k, nil
}

// Master is one master row. Budget fields are only set for budgets.
type Master struct {
	ID            int64            `json:"id" bun:"id"`
	Name          string           `json:"name" bun:"name"`
	FinancialYear string           `json:"financialYear,omitempty" bun:"financial_year"`
	Amount        *decimal.Decimal `json:"amount,omitempty" bun:"amount"`
}

// Input is the create and update payload.
type Input struct {
	Name          string           `json:"name" validate:"required,max=100"`
	FinancialYear string           `json:"financialYear" validate:"max=20"`
	Amount        *decimal.Decimal `json:"amount"`
}

func (k Kind) normalize(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.FinancialYear = strings.TrimSpace(in.FinancialYear)
	if in.Name == "" {
		return Input{}, ErrNameRequired
	}
	if !k.budget {
		return Input{Name: in.Name}, nil
	}
	if in.FinancialYear == "" {
		return Input{}, ErrFinancialYearRequired
	}
	if in.Amount == nil {
		zero := decimal.Zero
		in.Amount = &zero
	}
	if in.Amount.IsNegative() {
		return Input{}, ErrNegativeAmount
	}
	return in, nil
}
