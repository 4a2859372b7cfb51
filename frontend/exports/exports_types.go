package exports

import "encoding/json"

// RunView is one recorded report download.
type RunView struct {
	ID        string          `json:"id" bun:"id"`
	UserID    int64           `json:"userId,omitempty" bun:"user_id"`
	Username  string          `json:"username,omitempty" bun:"username"`
	Format    string          `json:"format" bun:"format"`
	RowCount  int             `json:"rowCount" bun:"row_count"`
	Filters   json.RawMessage `json:"filters" bun:"-"`
	RawFilter string          `json:"-" bun:"filters_json"`
	CreatedAt string          `json:"createdAt" bun:"created_at"`
}

// Filter narrows the history. UserID zero means every user.
type Filter struct {
	UserID int64
	Format string
	Limit  int
}

const (
	defaultLimit = 50
	maxLimit     = 500
)
