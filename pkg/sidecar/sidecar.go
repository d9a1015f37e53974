// Package sidecar reads the acquisition fields of a dcm2niix JSON sidecar
// that the converter needs.
package sidecar

import (
	"encoding/json"
	"fmt"
	"io"

	"tensor2bvec/internal/models"
)

// Sidecar holds the optional GE diffusion fields. A nil field was absent.
type Sidecar struct {
	NumDirs                *int    `json:"NumberOfDiffusionDirectionGE"`
	NumT2                  *int    `json:"NumberOfDiffusionT2GE"`
	PhaseEncodingDirection *string `json:"PhaseEncodingDirection"`
}

// Parse decodes a sidecar. Unknown fields are ignored.
func Parse(r io.Reader) (*Sidecar, error) {
	var sc Sidecar
	if err := json.NewDecoder(r).Decode(&sc); err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			return nil, fmt.Errorf("sidecar syntax error at byte offset %d: %w", e.Offset, err)
		}
		return nil, fmt.Errorf("failed to decode sidecar: %w", err)
	}
	return &sc, nil
}

// Frequency maps the phase-encoding direction to the frequency-encoding
// direction: j/j- give RL and i/i- give AP. ok is false when the sidecar
// does not determine it.
func (s *Sidecar) Frequency() (freq models.Frequency, ok bool) {
	if s == nil || s.PhaseEncodingDirection == nil {
		return "", false
	}
	switch *s.PhaseEncodingDirection {
	case "j", "j-":
		return models.RL, true
	case "i", "i-":
		return models.AP, true
	}
	return "", false
}
