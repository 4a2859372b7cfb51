// Package audit records before/after snapshots of changed entities.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/uptrace/bun"

	"stockroom/models"
)

// Entity types written by the stock handlers.
const (
	EntityUser          = "user"
	EntityBudget        = "budget"
	EntityCategory      = "category"
	EntityLocation      = "location"
	EntityStatus        = "status"
	EntityInvoice       = "invoice"
	EntityStockUnit     = "stock_unit"
	EntityStockBatch    = "stock_batch"
	EntityReportSetting = "report_setting"
)

// Service writes audit records inside the caller transaction so the record
// commits or rolls back with the change it describes.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Write(ctx context.Context, tx bun.Tx, userID int64, action, entityType, entityID string, before, after any) error {
	beforeJSON, err := marshal(before)
	if err != nil {
		return fmt.Errorf("audit before: %w", err)
	}
	afterJSON, err := marshal(after)
	if err != nil {
		return fmt.Errorf("audit after: %w", err)
	}
	_, err = tx.NewInsert().Model(&models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
	}).Exec(ctx)
	return err
}

// WriteID is Write for integer primary keys.
func (s *Service) WriteID(ctx context.Context, tx bun.Tx, userID int64, action, entityType string, entityID int64, before, after any) error {
	return s.Write(ctx, tx, userID, action, entityType, strconv.FormatInt(entityID, 10), before, after)
}

// Filter narrows List. Zero values match everything; Limit defaults to 100
// and is capped at 1000.
type Filter struct {
	EntityType string
	EntityID   string
	UserID     int64
	Limit      int
}

// Entry is an audit row joined with the acting username.
type Entry struct {
	ID         int64           `bun:"id" json:"id"`
	UserID     int64           `bun:"user_id" json:"userId"`
	Username   string          `bun:"username" json:"username"`
	Action     string          `bun:"action" json:"action"`
	EntityType string          `bun:"entity_type" json:"entityType"`
	EntityID   string          `bun:"entity_id" json:"entityId"`
	Before     json.RawMessage `bun:"-" json:"before,omitempty"`
	After      json.RawMessage `bun:"-" json:"after,omitempty"`
	BeforeJSON string          `bun:"before_json" json:"-"`
	AfterJSON  string          `bun:"after_json" json:"-"`
	CreatedAt  string          `bun:"created_at" json:"createdAt"`
}

// List returns the newest entries first.
func (s *Service) List(ctx context.Context, tx bun.Tx, f Filter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	q := `
SELECT al.id, al.user_id, COALESCE(u.username, '') AS username, al.action, al.entity_type, al.entity_id,
       COALESCE(al.before_json, '') AS before_json, COALESCE(al.after_json, '') AS after_json,
       strftime('%Y-%m-%dT%H:%M:%SZ', al.created_at) AS created_at
FROM audit_logs al
LEFT JOIN users u ON u.id = al.user_id
WHERE 1 = 1`
	args := make([]any, 0, 4)
	if f.EntityType != "" {
		q += " AND al.entity_type = ?"
		args = append(args, f.EntityType)
	}
	if f.EntityID != "" {
		q += " AND al.entity_id = ?"
		args = append(args, f.EntityID)
	}
	if f.UserID > 0 {
		q += " AND al.user_id = ?"
		args = append(args, f.UserID)
	}
	q += " ORDER BY al.id DESC LIMIT ?"
	args = append(args, limit)

	entries := make([]Entry, 0)
	if err := tx.NewRaw(q, args...).Scan(ctx, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].BeforeJSON != "" {
			entries[i].Before = json.RawMessage(entries[i].BeforeJSON)
		}
		if entries[i].AfterJSON != "" {
			entries[i].After = json.RawMessage(entries[i].AfterJSON)
		}
	}
	return entries, nil
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
