package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
)

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Create insert satu Prediction. Records are immutable, so this is a plain
// INSERT: no upsert path exists on purpose.
func (r *PredictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	const q = `
INSERT INTO predictions
(id, user_id, image_url, annotated_url, result, confidence,
 patient_name, patient_age, patient_sex, patient_ref, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?);
`
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
WHERE user_id=? AND id=? LIMIT 1;
`
	return scanOne(r.db.QueryRowContext(ctx, q, userID, id))
}

// ListByUser: riwayat per user, paling baru duluan. patientRef filter pakai
// LIKE case-insensitive.
func (r *PredictionRepository) ListByUser(ctx context.Context, userID string, patientRef string, limit int) ([]*domain.Prediction, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
SELECT id, user_id, image_url, annotated_url, result, confidence,
       patient_name, patient_age, patient_sex, patient_ref, created_at
FROM predictions
WHERE user_id=?`
	args := []any{userID}

	if patientRef != "" {
		query += " AND LOWER(patient_ref) LIKE LOWER(?)"
		args = append(args, "%"+escapeLikePattern(patientRef)+"%")
	}

	query += "\nORDER BY created_at DESC, id DESC LIMIT ?;"
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

// DeleteByUser hapus semua record milik user. Satu statement supaya atomic
// terhadap concurrent reads.
func (r *PredictionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM predictions WHERE user_id=?;`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*domain.Prediction, error) {
	return scanRow(row)
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
