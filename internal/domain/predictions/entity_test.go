package predictions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Umur 0 valid (bayi), harus tetap muncul di JSON.
func TestPredictionJSONKeepsZeroAge(t *testing.T) {
	p := &Prediction{
		ID:         "p1",
		UserID:     "u1",
		ImageURL:   "http://files.local/u1/a.png",
		Result:     LabelNoFracture,
		Confidence: 0.99,
		PatientAge: 0,
	}
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"patient_age":0`)
}
