// Package repository implements data access for the capture index.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/StarsWhere/log-server/internal/capture"
	"go.uber.org/zap"
)

// CaptureRecord is one indexed capture row: the summary of a request,
// not its content. The text log remains the system of record.
type CaptureRecord struct {
	ID          int64
	RequestID   string
	CapturedAt  time.Time
	Client      string
	Method      string
	Path        string
	URL         string
	HeaderCount int
	BodyLength  int
}

// CaptureRepository indexes captured requests in SQLite.
type CaptureRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCaptureRepository creates a CaptureRepository.
func NewCaptureRepository(db *sql.DB, logger *zap.Logger) *CaptureRepository {
	return &CaptureRepository{db: db, logger: logger}
}

// Insert indexes one snapshot under the given request ID.
func (r *CaptureRepository) Insert(ctx context.Context, requestID string, s *capture.Snapshot) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO captures (
			request_id, captured_at, client, method, path, url,
			header_count, body_length
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		requestID, s.Timestamp.Format(capture.TimestampLayout),
		s.ClientAddr, s.Method, s.Path, s.URL,
		len(s.Headers), s.BodyLength)
	if err != nil {
		return 0, fmt.Errorf("insert capture: %w", err)
	}
	return result.LastInsertId()
}

// List retrieves indexed captures, newest first. method filters to one
// HTTP verb when non-nil.
func (r *CaptureRepository) List(ctx context.Context, limit, offset int, method *string) ([]*CaptureRecord, error) {
	query := `
		SELECT id, request_id, captured_at, client, method, path, url,
		       header_count, body_length
		FROM captures`
	params := []any{}
	if method != nil {
		query += ` WHERE method = ?`
		params = append(params, *method)
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	params = append(params, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query captures: %w", err)
	}
	defer rows.Close()

	records := make([]*CaptureRecord, 0)
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of indexed captures.
func (r *CaptureRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM captures`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count captures: %w", err)
	}
	return total, nil
}

func (r *CaptureRepository) scan(rows *sql.Rows) (*CaptureRecord, error) {
	var rec CaptureRecord
	var capturedAt string
	if err := rows.Scan(
		&rec.ID, &rec.RequestID, &capturedAt, &rec.Client,
		&rec.Method, &rec.Path, &rec.URL,
		&rec.HeaderCount, &rec.BodyLength,
	); err != nil {
		return nil, fmt.Errorf("scan capture: %w", err)
	}
	ts, err := time.ParseInLocation(capture.TimestampLayout, capturedAt, time.Local)
	if err != nil {
		r.logger.Warn("unparseable captured_at in index", zap.String("value", capturedAt))
	} else {
		rec.CapturedAt = ts
	}
	return &rec, nil
}
