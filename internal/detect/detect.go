// Package detect locates the quiz regions in a captured frame.
package detect

import (
	"errors"
	"image"
	"strings"

	"symbol-spotter/pkg/geometry"
)

// ErrModelUnavailable is returned when the detection model cannot be loaded.
var ErrModelUnavailable = errors.New("detection model unavailable")

// Label names a detected region.
type Label string

const (
	LabelReference Label = "reference"
	LabelQuestion  Label = "question"
	LabelOptionA   Label = "option_a"
	LabelOptionB   Label = "option_b"
	LabelOptionC   Label = "option_c"
	LabelOptionD   Label = "option_d"
	LabelOptionE   Label = "option_e"
)

// OptionLabel returns the answer-box label for a letter such as "C".
func OptionLabel(letter string) Label {
	return Label("option_" + strings.ToLower(letter))
}

// DefaultClassNames is the class order of the exported quiz model.
var DefaultClassNames = []string{"A", "B", "C", "D", "E", "REFERENSI", "SOAL"}

// LabelForClass maps a model class name to a region label.
func LabelForClass(name string) (Label, bool) {
	switch strings.ToUpper(name) {
	case "REFERENSI":
		return LabelReference, true
	case "SOAL":
		return LabelQuestion, true
	case "A", "B", "C", "D", "E":
		return OptionLabel(name), true
	}
	return "", false
}

// Regions maps labels to boxes in frame coordinates. Absent labels were not
// detected this frame.
type Regions map[Label]geometry.RectInt

// Has reports whether every label is present.
func (r Regions) Has(labels ...Label) bool {
	for _, l := range labels {
		if _, ok := r[l]; !ok {
			return false
		}
	}
	return true
}

// Detector finds regions in a frame.
type Detector interface {
	Detect(frame image.Image) (Regions, error)
	Close() error
}

// Static always reports the same regions. It is used for fixed-layout
// screens and in tests.
type Static struct {
	Regions Regions
	Err     error
}

// Detect returns a copy of the configured regions.
func (s *Static) Detect(image.Image) (Regions, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(Regions, len(s.Regions))
	for k, v := range s.Regions {
		out[k] = v
	}
	return out, nil
}

// Close does nothing.
func (s *Static) Close() error { return nil }
