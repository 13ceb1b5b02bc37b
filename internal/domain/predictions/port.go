package predictions

import (
	"context"
	"io"

	"github.com/bryanwahyu/fracture-ai/internal/domain/users"
)

// Repository port (interface untuk persistence).
// Every method takes the owning user's ID so cross-user access is impossible
// by construction, not by query discipline.
type Repository interface {
	Create(ctx context.Context, p *Prediction) error
	Get(ctx context.Context, userID string, id PredictionID) (*Prediction, error)
	// ListByUser returns records ordered by creation time descending.
	// patientRef, when non-empty, filters by partial case-insensitive match.
	ListByUser(ctx context.Context, userID string, patientRef string, limit int) ([]*Prediction, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Classifier port (interface untuk model eksternal).
// Implementations own the whole transport translation: timeout enforcement,
// exit/status capture, and parsing of loosely-typed output into Result.
type Classifier interface {
	Classify(ctx context.Context, image []byte, filename string) (Result, error)
}

// ArtifactStore port (interface untuk penyimpanan gambar).
// Save must return a reference that is resolvable immediately.
type ArtifactStore interface {
	Save(ctx context.Context, data []byte, key string) (string, error)
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Notifier port. Best-effort delivery of the result summary; a nil error may
// also mean the send was deliberately skipped (e.g. missing attachment).
type Notifier interface {
	Send(ctx context.Context, user *users.User, p *Prediction) error
}
