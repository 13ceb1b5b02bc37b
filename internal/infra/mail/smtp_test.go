package mail

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
	"github.com/bryanwahyu/fracture-ai/internal/domain/users"
)

type failingStore struct{ calls int }

func (s *failingStore) Save(context.Context, []byte, string) (string, error) {
	return "", errors.New("not used")
}

func (s *failingStore) Fetch(context.Context, string) (io.ReadCloser, error) {
	s.calls++
	return nil, &domain.StorageError{Op: "fetch", Err: errors.New("object gone")}
}

func samplePrediction() *domain.Prediction {
	return &domain.Prediction{
		ID:          "pred-1",
		UserID:      "user-1",
		ImageURL:    "http://artifacts.test/uploads/user-1/xray.png",
		Result:      domain.LabelComminutedFracture,
		Confidence:  0.8754,
		PatientName: "Jane Doe",
		PatientAge:  34,
		PatientSex:  domain.SexFemale,
		PatientRef:  "MRN-001",
		CreatedAt:   time.Now(),
	}
}

func sampleUser() *users.User {
	return &users.User{
		ID:       "user-1",
		FullName: "Dr. Smith",
		Email:    "smith@example.com",
	}
}

// Artifact yang hilang bukan failure: Send harus skip tanpa error dan tanpa
// coba-coba dial SMTP.
func TestSendSkipsWhenArtifactMissing(t *testing.T) {
	store := &failingStore{}
	d := &Dispatcher{
		from:      "noreply@fractureai.test",
		artifacts: store,
		log:       zerolog.Nop(),
	}

	err := d.Send(context.Background(), sampleUser(), samplePrediction())
	assert.NoError(t, err)
	assert.Equal(t, 1, store.calls)
}

func TestRenderBody(t *testing.T) {
	body, err := renderBody(sampleUser(), samplePrediction())
	require.NoError(t, err)

	assert.Contains(t, body, "Dr. Smith")
	assert.Contains(t, body, "MRN-001")
	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, "female")
	// label ditampilkan human-readable, bukan snake_case
	assert.Contains(t, body, "comminuted fracture")
	assert.NotContains(t, body, "comminuted_fracture")
	assert.Contains(t, body, "87.54%")
	assert.Contains(t, body, "cid:"+attachmentName)
	assert.Contains(t, body, "Disclaimer")
}

func TestRenderBodyDefaultsPatientRef(t *testing.T) {
	p := samplePrediction()
	p.PatientRef = ""
	body, err := renderBody(sampleUser(), p)
	require.NoError(t, err)
	assert.Contains(t, body, "N/A")
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "100.00", formatPercent(1))
	assert.Equal(t, "0.00", formatPercent(0))
	assert.Equal(t, "93.00", formatPercent(0.93))
	assert.Equal(t, "87.54", formatPercent(0.8754))
}
