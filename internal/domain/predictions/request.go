package predictions

import (
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MIME types the pipeline accepts as a radiographic image upload.
var allowedImageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// SubmitRequest hidup hanya selama satu pipeline run, tidak pernah dipersist.
// Age comes in raw because it arrives as a multipart form value.
type SubmitRequest struct {
	Image       []byte
	Filename    string
	PatientName string
	PatientAge  string
	PatientSex  string
	PatientRef  string
}

// ParseSex accepts the enum values case-insensitively ("Female" from older
// clients is still valid input).
func ParseSex(raw string) (Sex, bool) {
	switch Sex(strings.ToLower(strings.TrimSpace(raw))) {
	case SexMale:
		return SexMale, true
	case SexFemale:
		return SexFemale, true
	case SexOther:
		return SexOther, true
	}
	return "", false
}

// Validate is the hard precondition of the pipeline: nothing downstream runs
// (no artifact write, no inference call) when it fails.
func (r *SubmitRequest) Validate() (int, Sex, error) {
	if len(r.Image) == 0 {
		return 0, "", &ValidationError{Field: "image", Message: "image file is required"}
	}
	if mt := mimetype.Detect(r.Image); !allowedImageMIMEs[mt.String()] {
		return 0, "", &ValidationError{Field: "image", Message: "unsupported image type " + mt.String()}
	}
	if strings.TrimSpace(r.PatientName) == "" {
		return 0, "", &ValidationError{Field: "patientName", Message: "patient name is required"}
	}
	age, err := strconv.Atoi(strings.TrimSpace(r.PatientAge))
	if err != nil {
		return 0, "", &ValidationError{Field: "patientAge", Message: "patient age must be an integer"}
	}
	if age < 0 {
		return 0, "", &ValidationError{Field: "patientAge", Message: "patient age cannot be negative"}
	}
	sex, ok := ParseSex(r.PatientSex)
	if !ok {
		return 0, "", &ValidationError{Field: "patientSex", Message: "patient sex must be one of: male, female, other"}
	}
	return age, sex, nil
}
