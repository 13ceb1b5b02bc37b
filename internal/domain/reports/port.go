package reports

import (
	"context"
	"errors"

	"github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// Client generates the report body for a prediction.
type Client interface {
	Generate(ctx context.Context, p *predictions.Prediction) (string, error)
}

// Repository port for persisting and querying reports
type Repository interface {
	Save(ctx context.Context, r *Report) error
	Paginate(ctx context.Context, userID string, page, pageSize int) ([]*Report, error)
	LatestByPrediction(ctx context.Context, userID string, predictionID string) (*Report, error)
}
