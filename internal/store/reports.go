package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/honeypot/internal/callback"
	"github.com/MikeSquared-Agency/honeypot/internal/intelligence"
)

const schema = `
CREATE TABLE IF NOT EXISTS honeypot_reports (
	id             uuid PRIMARY KEY,
	session_id     text        NOT NULL,
	scam_detected  boolean     NOT NULL,
	total_messages integer     NOT NULL,
	intelligence   jsonb       NOT NULL,
	agent_notes    text        NOT NULL,
	acknowledged   boolean     NOT NULL,
	created_at     timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS honeypot_reports_session_idx ON honeypot_reports (session_id);

CREATE TABLE IF NOT EXISTS honeypot_report_items (
	id        uuid PRIMARY KEY,
	report_id uuid NOT NULL REFERENCES honeypot_reports (id) ON DELETE CASCADE,
	category  text NOT NULL,
	value     text NOT NULL
);
CREATE INDEX IF NOT EXISTS honeypot_report_items_value_idx ON honeypot_report_items (category, value);
`

// EnsureSchema creates the archive tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// WriteReport archives a final report and one row per intelligence item,
// so the same phone number or handle can be found across sessions.
func (s *Store) WriteReport(ctx context.Context, p callback.Payload, acknowledged bool) (uuid.UUID, error) {
	intel, err := json.Marshal(p.ExtractedIntelligence)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal intelligence: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	reportID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO honeypot_reports (id, session_id, scam_detected, total_messages, intelligence, agent_notes, acknowledged, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		reportID, p.SessionID, p.ScamDetected, p.TotalMessagesExchanged, intel, p.AgentNotes, acknowledged,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert report: %w", err)
	}

	for category, values := range p.ExtractedIntelligence {
		for _, v := range values {
			_, err = tx.Exec(ctx, `
				INSERT INTO honeypot_report_items (id, report_id, category, value)
				VALUES ($1, $2, $3, $4)`,
				uuid.New(), reportID, string(category), v,
			)
			if err != nil {
				return uuid.Nil, fmt.Errorf("insert item: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return reportID, nil
}

// ReportRow is an archived report as read back from the database.
type ReportRow struct {
	ID            uuid.UUID
	SessionID     string
	ScamDetected  bool
	TotalMessages int
	Intelligence  map[intelligence.Category][]string
	AgentNotes    string
	Acknowledged  bool
	CreatedAt     time.Time
}

// GetReport fetches one archived report.
func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*ReportRow, error) {
	var (
		row   ReportRow
		intel []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, session_id, scam_detected, total_messages, intelligence, agent_notes, acknowledged, created_at
		FROM honeypot_reports WHERE id = $1`, id,
	).Scan(&row.ID, &row.SessionID, &row.ScamDetected, &row.TotalMessages, &intel, &row.AgentNotes, &row.Acknowledged, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	if err := json.Unmarshal(intel, &row.Intelligence); err != nil {
		return nil, fmt.Errorf("unmarshal intelligence: %w", err)
	}
	return &row, nil
}

// SessionsWithItem returns the ids of sessions whose reports contain value
// under category, most recent first.
func (s *Store) SessionsWithItem(ctx context.Context, category intelligence.Category, value string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.session_id
		FROM honeypot_report_items i
		JOIN honeypot_reports r ON r.id = i.report_id
		WHERE i.category = $1 AND i.value = $2
		GROUP BY r.session_id
		ORDER BY max(r.created_at) DESC`,
		string(category), value,
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
