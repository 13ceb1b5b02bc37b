package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/reports"
)

type ReportRepository struct{ db *sql.DB }

func NewReportRepository(db *sql.DB) *ReportRepository { return &ReportRepository{db: db} }

func (r *ReportRepository) Save(ctx context.Context, rep *domain.Report) error {
	const q = `
INSERT INTO prediction_reports (id, user_id, prediction_id, result, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET result = EXCLUDED.result;`
	created := rep.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, rep.ID, rep.UserID, rep.PredictionID, rep.Result, created)
	return err
}

func (r *ReportRepository) Paginate(ctx context.Context, userID string, page, pageSize int) ([]*domain.Report, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, user_id, prediction_id, result, created_at
FROM prediction_reports
WHERE user_id=$1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, userID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Report
	for rows.Next() {
		var rep domain.Report
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.PredictionID, &rep.Result, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rep)
	}
	return out, rows.Err()
}

func (r *ReportRepository) LatestByPrediction(ctx context.Context, userID string, predictionID string) (*domain.Report, error) {
	const q = `
SELECT id, user_id, prediction_id, result, created_at
FROM prediction_reports
WHERE user_id=$1 AND prediction_id=$2
ORDER BY created_at DESC
LIMIT 1;`
	var rep domain.Report
	if err := r.db.QueryRowContext(ctx, q, userID, predictionID).Scan(
		&rep.ID, &rep.UserID, &rep.PredictionID, &rep.Result, &rep.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rep, nil
}
