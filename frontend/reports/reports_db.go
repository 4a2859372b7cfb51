package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/customcolumn"
	"stockroom/infrastructure/sqlite"
	"stockroom/models"
)

// LoadSettings returns the stored layout, or the default layout when the
// user has none.
func LoadSettings(ctx context.Context, db *sqlite.DB, userID int64) (Settings, error) {
	var s Settings
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		s, err = loadSettings(ctx, tx, userID)
		return err
	})
	return s, err
}

func loadSettings(ctx context.Context, tx bun.Tx, userID int64) (Settings, error) {
	var row models.ReportSetting
	err := tx.NewSelect().Model(&row).Where("user_id = ?", userID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultSettings(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal([]byte(row.SettingsJSON), &s); err != nil {
		return Settings{}, fmt.Errorf("decode report settings for user %d: %w", userID, err)
	}
	return normalizeSettings(s), nil
}

func defaultSettings() Settings {
	return normalizeSettings(Settings{})
}

func normalizeSettings(s Settings) Settings {
	if s.VisibleColumns == nil {
		s.VisibleColumns = []string{}
	}
	if s.ColumnOrder == nil {
		s.ColumnOrder = []string{}
	}
	if s.CustomColumns == nil {
		s.CustomColumns = []customcolumn.Definition{}
	}
	return s
}

// SaveSettings validates and stores a full layout.
func SaveSettings(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, s Settings) (Settings, error) {
	s = normalizeSettings(s)
	if err := validateSettings(s); err != nil {
		return Settings{}, err
	}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := loadSettings(ctx, tx, userID)
		if err != nil {
			return err
		}
		return storeSettings(ctx, tx, auditSvc, userID, "report.settings.update", before, s)
	})
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}

// AddCustomColumn adds or replaces one custom column. A blank id gets a
// generated one; a new column is appended to the visible list when that list
// is explicit.
func AddCustomColumn(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, def customcolumn.Definition) (Settings, customcolumn.Definition, error) {
	if strings.TrimSpace(def.ID) == "" {
		def.ID = NewColumnID()
	}
	var saved Settings
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := loadSettings(ctx, tx, userID)
		if err != nil {
			return err
		}
		existed := false
		for _, d := range before.CustomColumns {
			if d.ID == def.ID {
				existed = true
				break
			}
		}

		next := before
		next.CustomColumns, err = customcolumn.Upsert(before.CustomColumns, def)
		if err != nil {
			return err
		}
		if !existed && len(next.VisibleColumns) > 0 {
			next.VisibleColumns = append(append([]string{}, next.VisibleColumns...), def.ID)
		}
		if err := validateSettings(next); err != nil {
			return err
		}
		saved = next
		return storeSettings(ctx, tx, auditSvc, userID, "report.column.upsert", before, next)
	})
	if err != nil {
		return Settings{}, customcolumn.Definition{}, err
	}
	return saved, def, nil
}

// RemoveCustomColumn deletes a custom column that no other column reads and
// drops it from the visible and order lists.
func RemoveCustomColumn(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, id string) (Settings, error) {
	var saved Settings
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := loadSettings(ctx, tx, userID)
		if err != nil {
			return err
		}
		next := before
		next.CustomColumns, err = customcolumn.Remove(before.CustomColumns, id)
		if err != nil {
			return err
		}
		next.VisibleColumns = without(before.VisibleColumns, id)
		next.ColumnOrder = without(before.ColumnOrder, id)
		saved = next
		return storeSettings(ctx, tx, auditSvc, userID, "report.column.delete", before, next)
	})
	return saved, err
}

func storeSettings(ctx context.Context, tx bun.Tx, auditSvc *audit.Service, userID int64, action string, before, after Settings) error {
	blob, err := json.Marshal(after)
	if err != nil {
		return err
	}
	row := models.ReportSetting{UserID: userID, SettingsJSON: string(blob), UpdatedAt: time.Now()}
	if _, err := tx.NewInsert().Model(&row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("settings_json = EXCLUDED.settings_json").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return err
	}
	return auditSvc.WriteID(ctx, tx, userID, action, audit.EntityReportSetting, userID, before, after)
}

// NewColumnID returns a fresh custom column id that is also a valid
// expression identifier.
func NewColumnID() string {
	return "cc_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// recordExportRun stores one download and returns its id.
func recordExportRun(ctx context.Context, db *sqlite.DB, userID int64, format string, rowCount int, filters any) (string, error) {
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	run := models.ExportRun{
		ID:        uuid.NewString(),
		Format:    format,
		RowCount:  rowCount,
		Filters:   string(filtersJSON),
		CreatedAt: time.Now(),
	}
	if userID > 0 {
		run.UserID = &userID
	}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&run).Exec(ctx)
		return err
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}
