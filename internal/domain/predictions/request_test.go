package predictions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is a minimal PNG signature, enough for MIME sniffing.
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func validRequest() SubmitRequest {
	return SubmitRequest{
		Image:       pngBytes,
		Filename:    "xray.png",
		PatientName: "Jane Doe",
		PatientAge:  "34",
		PatientSex:  "Female",
		PatientRef:  "PX-1001",
	}
}

func TestValidateOK(t *testing.T) {
	req := validRequest()
	age, sex, err := req.Validate()
	require.NoError(t, err)
	assert.Equal(t, 34, age)
	assert.Equal(t, SexFemale, sex)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
		field  string
	}{
		{"missing image", func(r *SubmitRequest) { r.Image = nil }, "image"},
		{"non-image payload", func(r *SubmitRequest) { r.Image = []byte("just some text") }, "image"},
		{"missing name", func(r *SubmitRequest) { r.PatientName = "  " }, "patientName"},
		{"missing age", func(r *SubmitRequest) { r.PatientAge = "" }, "patientAge"},
		{"non-numeric age", func(r *SubmitRequest) { r.PatientAge = "abc" }, "patientAge"},
		{"negative age", func(r *SubmitRequest) { r.PatientAge = "-3" }, "patientAge"},
		{"missing sex", func(r *SubmitRequest) { r.PatientSex = "" }, "patientSex"},
		{"unknown sex", func(r *SubmitRequest) { r.PatientSex = "unknown" }, "patientSex"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, _, err := req.Validate()
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestParseSexCaseInsensitive(t *testing.T) {
	for raw, want := range map[string]Sex{
		"male":   SexMale,
		"Female": SexFemale,
		"OTHER":  SexOther,
		" male ": SexMale,
	} {
		got, ok := ParseSex(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got)
	}
	_, ok := ParseSex("f")
	assert.False(t, ok)
}

func TestKnownLabel(t *testing.T) {
	assert.True(t, KnownLabel(LabelNoFracture))
	assert.True(t, KnownLabel(LabelSimpleFracture))
	assert.True(t, KnownLabel(LabelComminutedFracture))
	assert.False(t, KnownLabel(Label("hairline_fracture")))
	assert.False(t, KnownLabel(Label("")))
}
