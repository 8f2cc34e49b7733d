package postgres

import (
	"database/sql"
	"time"
)

type keyRow struct {
	ID           string
	Key          string
	DailyLimit   sql.NullInt64  `db:"daily_limit"`
	UsageCount   int64          `db:"usage_count"`
	LastUsedDate sql.NullString `db:"last_used_date"`
	Created      time.Time
	Updated      time.Time
}
