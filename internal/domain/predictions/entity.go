package predictions

import (
	"time"
)

// ID tipe untuk Prediction
type PredictionID string

// Label enum (closed set, extend here when the model learns new classes)
type Label string

const (
	LabelNoFracture         Label = "no_fracture"
	LabelSimpleFracture     Label = "simple_fracture"
	LabelComminutedFracture Label = "comminuted_fracture"
)

// KnownLabel reports whether l is part of the closed result set.
func KnownLabel(l Label) bool {
	switch l {
	case LabelNoFracture, LabelSimpleFracture, LabelComminutedFracture:
		return true
	}
	return false
}

// Sex enum
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// Aggregate Root: Prediction
// Immutable once created: hanya create dan delete, tidak ada update path.
type Prediction struct {
	ID           PredictionID `json:"id"`
	UserID       string       `json:"user_id"`
	ImageURL     string       `json:"image_url"`
	AnnotatedURL string       `json:"annotated_url,omitempty"`
	Result       Label        `json:"result"`
	Confidence   float64      `json:"confidence"`
	PatientName  string       `json:"patient_name,omitempty"`
	PatientAge   int          `json:"patient_age"`
	PatientSex   Sex          `json:"patient_sex,omitempty"`
	PatientRef   string       `json:"patient_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Result hasil dari Classifier
type Result struct {
	Label      Label
	Confidence float64
}
