package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
)

type PredictionRepository struct{ db *sql.DB }

func NewPredictionRepository(db *sql.DB) *PredictionRepository { return &PredictionRepository{db: db} }

// Create insert satu Prediction (immutable, plain INSERT)
func (r *PredictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	const q = `
INSERT INTO predictions
(id, user_id, image_url, annotated_url, result, confidence,
 patient_name, patient_age, patient_sex, patient_ref, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);`

	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.ImageURL, nullable(p.AnnotatedURL), p.Result, p.Confidence,
		nullable(p.PatientName), p.PatientAge, nullable(string(p.PatientSex)), nullable(p.PatientRef),
		created,
	)
	return err
}

// Get by ID + owner
func (r *PredictionRepository) Get(ctx context.Context, userID string, id domain.PredictionID) (*domain.Prediction, error) {
	const q = `
SELECT id, user_id, image_url, annotated_url, result, confidence,
       patient_name, patient_age, patient_sex, patient_ref, created_at
FROM predictions
WHERE user_id=$1 AND id=$2 LIMIT 1;`
	return scanRow(r.db.QueryRowContext(ctx, q, userID, id))
}

// ListByUser ordered most-recent-first; patientRef filter pakai ILIKE
func (r *PredictionRepository) ListByUser(ctx context.Context, userID string, patientRef string, limit int) ([]*domain.Prediction, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
SELECT id, user_id, image_url, annotated_url, result, confidence,
       patient_name, patient_age, patient_sex, patient_ref, created_at
FROM predictions
WHERE user_id=$1`
	args := []any{userID}

	if patientRef != "" {
		query += ` AND patient_ref ILIKE $2`
		args = append(args, "%"+escapeLikePattern(patientRef)+"%")
		query += `
ORDER BY created_at DESC, id DESC LIMIT $3;`
	} else {
		query += `
ORDER BY created_at DESC, id DESC LIMIT $2;`
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Prediction
	for rows.Next() {
		p, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteByUser: satu statement, atomic terhadap concurrent reads
func (r *PredictionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM predictions WHERE user_id=$1;`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*domain.Prediction, error) {
	var p domain.Prediction
	var annotated, name, sex, ref sql.NullString
	var age sql.NullInt64
	if err := row.Scan(
		&p.ID, &p.UserID, &p.ImageURL, &annotated, &p.Result, &p.Confidence,
		&name, &age, &sex, &ref, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.AnnotatedURL = annotated.String
	p.PatientName = name.String
	p.PatientAge = int(age.Int64)
	p.PatientSex = domain.Sex(sex.String)
	p.PatientRef = ref.String
	return &p, nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
