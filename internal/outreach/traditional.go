package outreach

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLTraditionalSource reads the host platform's supplier email log over
// SQL. Only manually-sent rows matter to the comparison; the query filters
// at the database.
type SQLTraditionalSource struct {
	db *sql.DB
}

// NewSQLTraditionalSource creates a source over an open database handle.
func NewSQLTraditionalSource(db *sql.DB) *SQLTraditionalSource {
	return &SQLTraditionalSource{db: db}
}

// FetchManualOutreach returns the manually-sent email records.
func (s *SQLTraditionalSource) FetchManualOutreach(ctx context.Context) ([]TraditionalRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT is_ai_generated, responded, response_time_hours
		FROM supplier_emails
		WHERE is_ai_generated = false`)
	if err != nil {
		return nil, fmt.Errorf("querying supplier emails: %w", err)
	}
	defer rows.Close()

	var records []TraditionalRecord
	for rows.Next() {
		var rec TraditionalRecord
		var responseTime sql.NullFloat64
		if err := rows.Scan(&rec.IsAIGenerated, &rec.Responded, &responseTime); err != nil {
			return nil, fmt.Errorf("scanning supplier email row: %w", err)
		}
		if responseTime.Valid {
			rec.ResponseTime = &responseTime.Float64
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading supplier email rows: %w", err)
	}
	return records, nil
}

// StaticTraditionalSource serves a fixed record list. Used in dev mode and
// by tests that do not need a database.
type StaticTraditionalSource struct {
	Records []TraditionalRecord
}

// FetchManualOutreach returns the configured records.
func (s *StaticTraditionalSource) FetchManualOutreach(ctx context.Context) ([]TraditionalRecord, error) {
	return s.Records, nil
}
