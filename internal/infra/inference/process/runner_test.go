package process

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

// The runner appends the image path as the last argument; `sh -c '...'`
// receives it as $0, which the scripts below ignore.

func TestRunnerSuccess(t *testing.T) {
	r := NewRunner("sh", []string{"-c", `echo '{"prediction":"comminuted_fracture","confidence":0.71}'`}, 5*time.Second)

	res, err := r.Classify(context.Background(), pngBytes, "xray.png")
	require.NoError(t, err)
	assert.Equal(t, domain.LabelComminutedFracture, res.Label)
	assert.InDelta(t, 0.71, res.Confidence, 1e-9)
}

func TestRunnerNonZeroExitCarriesStderr(t *testing.T) {
	r := NewRunner("sh", []string{"-c", `echo "model weights not found" >&2; exit 3`}, 5*time.Second)

	_, err := r.Classify(context.Background(), pngBytes, "xray.png")
	var iErr *domain.InferenceError
	require.ErrorAs(t, err, &iErr)
	assert.Equal(t, domain.ReasonExitStatus, iErr.Reason)
	assert.Contains(t, iErr.Diagnostic, "exited with 3")
	assert.Contains(t, iErr.Diagnostic, "model weights not found")
}

func TestRunnerMalformedStdout(t *testing.T) {
	r := NewRunner("sh", []string{"-c", `echo "loading model..."`}, 5*time.Second)

	_, err := r.Classify(context.Background(), pngBytes, "xray.png")
	var iErr *domain.InferenceError
	require.ErrorAs(t, err, &iErr)
	assert.Equal(t, domain.ReasonBadOutput, iErr.Reason)
	assert.Contains(t, iErr.Diagnostic, "loading model")
}

func TestRunnerTimeout(t *testing.T) {
	r := NewRunner("sh", []string{"-c", `sleep 5`}, 100*time.Millisecond)

	start := time.Now()
	_, err := r.Classify(context.Background(), pngBytes, "xray.png")
	var iErr *domain.InferenceError
	require.ErrorAs(t, err, &iErr)
	assert.Equal(t, domain.ReasonTimeout, iErr.Reason)
	assert.Less(t, time.Since(start), 3*time.Second, "timeout must cut the wait short")
}

func TestParseRejectsOutOfRangeConfidence(t *testing.T) {
	_, err := parse([]byte(`{"prediction":"no_fracture","confidence":1.7}`), nil)
	var iErr *domain.InferenceError
	require.ErrorAs(t, err, &iErr)
	assert.Equal(t, domain.ReasonBadOutput, iErr.Reason)
}

func TestParseRejectsUnknownLabel(t *testing.T) {
	_, err := parse([]byte(`{"prediction":"spiral_fracture","confidence":0.5}`), nil)
	var iErr *domain.InferenceError
	require.ErrorAs(t, err, &iErr)
	assert.Equal(t, domain.ReasonBadOutput, iErr.Reason)
}
