package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Montabos/Quantis/pkg/models"
)

// ReportRepo persists finished analysis reports keyed by run ID.
type ReportRepo struct{}

func NewReportRepo() *ReportRepo {
	return &ReportRepo{}
}

// ReportRecord is one stored analysis run.
type ReportRecord struct {
	RunID     string                 `json:"run_id"`
	Question  string                 `json:"question"`
	Result    *models.AnalysisResult `json:"result"`
	CreatedAt time.Time              `json:"created_at"`
}

// Schema assumption (managed by migrations):
//
//	CREATE TABLE IF NOT EXISTS decision_reports (
//	  run_id TEXT PRIMARY KEY,
//	  question TEXT NOT NULL,
//	  report_json JSONB NOT NULL,
//	  created_at TIMESTAMPTZ NOT NULL
//	);

// Save upserts a finished report under its run ID.
func (r *ReportRepo) Save(ctx context.Context, runID, question string, result *models.AnalysisResult) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO decision_reports (run_id, question, report_json, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id)
		DO UPDATE SET
			question = EXCLUDED.question,
			report_json = EXCLUDED.report_json;
	`
	if _, err := pool.Exec(ctx, query, runID, question, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Load retrieves one stored report by run ID.
func (r *ReportRepo) Load(ctx context.Context, runID string) (*ReportRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT question, report_json, created_at FROM decision_reports WHERE run_id = $1`

	record := &ReportRecord{RunID: runID}
	var jsonData []byte
	err := pool.QueryRow(ctx, query, runID).Scan(&record.Question, &jsonData, &record.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no report found for run %s", runID)
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	record.Result = &result
	return record, nil
}

// List returns the most recent runs, newest first, without the full report
// payloads.
func (r *ReportRepo) List(ctx context.Context, limit int) ([]ReportRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT run_id, question, created_at FROM decision_reports ORDER BY created_at DESC LIMIT $1`
	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var records []ReportRecord
	for rows.Next() {
		var record ReportRecord
		if err := rows.Scan(&record.RunID, &record.Question, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
