package mail

import (
	"context"

	"github.com/rs/zerolog"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
	"github.com/bryanwahyu/fracture-ai/internal/domain/users"
)

// Noop satisfies the Notifier port when mail is disabled in config.
type Noop struct {
	log zerolog.Logger
}

func NewNoop(log zerolog.Logger) *Noop {
	return &Noop{log: log.With().Str("component", "mail-dispatcher").Logger()}
}

func (n *Noop) Send(_ context.Context, user *users.User, p *domain.Prediction) error {
	n.log.Debug().
		Str("prediction_id", string(p.ID)).
		Str("recipient", user.Email).
		Msg("mail disabled, skipping report email")
	return nil
}
