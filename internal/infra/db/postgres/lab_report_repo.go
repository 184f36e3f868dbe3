package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/labsight/internal/domain/labreports"
)

const reportColumns = `id, user_id, file_name, raw_text, structured_data, ai_analysis, document_key, uploaded_at`

const schema = `
CREATE TABLE IF NOT EXISTS lab_reports (
  id              UUID        PRIMARY KEY,
  user_id         TEXT        NOT NULL,
  file_name       TEXT        NOT NULL,
  raw_text        TEXT        NOT NULL,
  structured_data JSONB       NULL,
  ai_analysis     TEXT        NULL,
  document_key    TEXT        NULL,
  uploaded_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_lab_reports_user_uploaded ON lab_reports (user_id, uploaded_at DESC);`

type LabReportRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewLabReportRepository(db *sql.DB, timeout time.Duration) *LabReportRepository {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LabReportRepository{db: db, timeout: timeout}
}

func (r *LabReportRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *LabReportRepository) Insert(ctx context.Context, rep *domain.LabReport) error {
	const q = `
INSERT INTO lab_reports
(` + reportColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`

	structured, err := encodeStructured(rep.StructuredData)
	if err != nil {
		return fmt.Errorf("encode structured data: %w", err)
	}
	uploaded := rep.UploadedAt
	if uploaded.IsZero() {
		uploaded = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err = r.db.ExecContext(ctx, q,
		rep.ID, stringOrDash(rep.UserID), rep.FileName, rep.RawText,
		structured, nullString(rep.AIAnalysis), nullIfEmpty(rep.DocumentKey), uploaded,
	)
	return err
}

func (r *LabReportRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.LabReport, error) {
	const q = `
SELECT ` + reportColumns + `
FROM lab_reports
WHERE user_id=$1 ORDER BY uploaded_at DESC;`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.LabReport{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *LabReportRepository) Get(ctx context.Context, userID string, id domain.ReportID) (*domain.LabReport, error) {
	const q = `
SELECT ` + reportColumns + `
FROM lab_reports
WHERE user_id=$1 AND id=$2 LIMIT 1;`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rep, err := scanReport(r.db.QueryRowContext(ctx, q, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rep, err
}

func (r *LabReportRepository) Delete(ctx context.Context, userID string, id domain.ReportID) error {
	const q = `DELETE FROM lab_reports WHERE user_id=$1 AND id=$2;`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, q, userID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.LabReport, error) {
	var (
		rep        domain.LabReport
		structured sql.NullString
		analysis   sql.NullString
		docKey     sql.NullString
	)
	if err := row.Scan(
		&rep.ID, &rep.UserID, &rep.FileName, &rep.RawText,
		&structured, &analysis, &docKey, &rep.UploadedAt,
	); err != nil {
		return nil, err
	}
	data, err := decodeStructured(structured)
	if err != nil {
		return nil, fmt.Errorf("decode structured data for %s: %w", rep.ID, err)
	}
	rep.StructuredData = data
	rep.AIAnalysis = stringPtr(analysis)
	rep.DocumentKey = docKey.String
	rep.UploadedAt = rep.UploadedAt.UTC()
	return &rep, nil
}
