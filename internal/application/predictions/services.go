package predictions

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/fracture-ai/internal/application"
	domain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
	"github.com/bryanwahyu/fracture-ai/internal/domain/users"
	"github.com/bryanwahyu/fracture-ai/internal/middleware"
)

// Service implements use-cases untuk Prediction: the submit pipeline plus
// history read/delete. Safe for concurrent use; runs are independent.
type Service struct {
	Repo       domain.Repository
	Classifier domain.Classifier
	Artifacts  domain.ArtifactStore
	Notifier   domain.Notifier
	Users      users.Repository
	Clock      application.Clock
	Log        zerolog.Logger

	notifyWG sync.WaitGroup
}

// Submit runs one pipeline: validate → save artifact → classify → persist →
// notify (detached). The step order is an invariant, each step bounds the
// blast radius of the next one's failure.
func (s *Service) Submit(ctx context.Context, userID string, req domain.SubmitRequest) (*domain.Prediction, error) {
	age, sex, err := req.Validate()
	if err != nil {
		return nil, err
	}

	// Kalau caller disconnect di tengah jalan, run tetap diselesaikan:
	// inference cost sudah terlanjur keluar begitu artifact tersimpan.
	runCtx := context.WithoutCancel(ctx)

	// artifact dulu, supaya ada reference untuk diagnosis kalau inference gagal
	key := fmt.Sprintf("%s/%s%s", userID, uuid.New().String(), safeExt(req.Filename))
	imageURL, err := s.Artifacts.Save(runCtx, req.Image, key)
	if err != nil {
		return nil, err
	}

	res, err := s.Classifier.Classify(runCtx, req.Image, req.Filename)
	if err != nil {
		// artifact is retained on purpose: it has diagnostic value and no
		// record references it
		return nil, err
	}

	p := &domain.Prediction{
		ID:          domain.PredictionID(uuid.New().String()),
		UserID:      userID,
		ImageURL:    imageURL,
		Result:      res.Label,
		Confidence:  res.Confidence,
		PatientName: strings.TrimSpace(req.PatientName),
		PatientAge:  age,
		PatientSex:  sex,
		PatientRef:  strings.TrimSpace(req.PatientRef),
		CreatedAt:   s.Clock.Now(),
	}
	if err := s.Repo.Create(runCtx, p); err != nil {
		return nil, &domain.PersistenceError{Err: err}
	}

	// 🚀 kirim notifikasi di background; hasil pipeline tidak tergantung delivery
	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		nctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.dispatchNotification(nctx, p)
	}()

	return p, nil
}

// dispatchNotification is the observability hook for the detached send:
// every failure ends up in the log, never in the pipeline outcome.
func (s *Service) dispatchNotification(ctx context.Context, p *domain.Prediction) {
	user, err := s.Users.FindByID(ctx, p.UserID)
	if err != nil {
		s.Log.Warn().Err(err).
			Str("prediction_id", string(p.ID)).
			Str("user_id", p.UserID).
			Msg("cannot resolve user for report email")
		return
	}
	if err := s.Notifier.Send(ctx, user, p); err != nil {
		s.Log.Warn().Err(err).
			Str("prediction_id", string(p.ID)).
			Str("recipient", user.Email).
			Msg("report email delivery failed")
		return
	}
	middleware.IncrementEmails()
	s.Log.Info().
		Str("prediction_id", string(p.ID)).
		Str("recipient", user.Email).
		Msg("report email dispatched")
}

// Flush waits for in-flight notifications. Dipanggil saat shutdown dan dari test.
func (s *Service) Flush() {
	s.notifyWG.Wait()
}

// History ambil semua record milik user, paling baru duluan. patientRef
// filter substring case-insensitive.
func (s *Service) History(ctx context.Context, userID string, patientRef string, limit int) ([]*domain.Prediction, error) {
	return s.Repo.ListByUser(ctx, userID, strings.TrimSpace(patientRef), limit)
}

// DeleteHistory hapus semua record milik user, return jumlah yang terhapus.
func (s *Service) DeleteHistory(ctx context.Context, userID string) (int64, error) {
	return s.Repo.DeleteByUser(ctx, userID)
}

// Get ambil 1 record by id, scoped ke owner
func (s *Service) Get(ctx context.Context, userID string, id domain.PredictionID) (*domain.Prediction, error) {
	return s.Repo.Get(ctx, userID, id)
}

// safeExt keeps only a plain extension so the storage key stays clean.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".bmp", ".tif", ".tiff":
		return ext
	}
	return ".jpg"
}
