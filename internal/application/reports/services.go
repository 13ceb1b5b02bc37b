package reports

import (
	"context"

	"github.com/google/uuid"

	"github.com/bryanwahyu/fracture-ai/internal/application"
	preddomain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
	domain "github.com/bryanwahyu/fracture-ai/internal/domain/reports"
)

// Service generates and stores AI clinical notes for persisted predictions.
type Service struct {
	Client      domain.Client
	Repo        domain.Repository
	Predictions preddomain.Repository
	Clock       application.Clock
}

// GenerateAndStore: lookup prediction milik user → generate note → simpan.
func (s *Service) GenerateAndStore(ctx context.Context, userID string, predictionID preddomain.PredictionID) (*domain.Report, error) {
	p, err := s.Predictions.Get(ctx, userID, predictionID)
	if err != nil {
		return nil, err
	}

	result, err := s.Client.Generate(ctx, p)
	if err != nil {
		return nil, err
	}

	rep := &domain.Report{
		ID:           domain.ReportID(uuid.New().String()),
		UserID:       userID,
		PredictionID: string(p.ID),
		Result:       result,
		CreatedAt:    s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// List reports per user, paginated
func (s *Service) List(ctx context.Context, userID string, page, pageSize int) ([]*domain.Report, error) {
	return s.Repo.Paginate(ctx, userID, page, pageSize)
}

// LatestFor returns the newest report for one prediction, nil when none exists.
func (s *Service) LatestFor(ctx context.Context, userID string, predictionID string) (*domain.Report, error) {
	return s.Repo.LatestByPrediction(ctx, userID, predictionID)
}
