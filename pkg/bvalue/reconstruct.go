// Package bvalue reconstructs per-direction b-values from GE gradient
// magnitudes and converts the gradient vectors to the FSL convention.
package bvalue

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"tensor2bvec/internal/models"
)

// QuantizationStep is the b-value granularity of the scanner
const QuantizationStep = 5

var (
	// ErrInvalidFrequency is returned for a frequency other than RL or AP
	ErrInvalidFrequency = errors.New("invalid frequency encoding direction")

	// ErrInvalidBValue is returned for a negative nominal b-value
	ErrInvalidBValue = errors.New("invalid nominal b-value")
)

// QuantizeBValue returns nominal*scale rounded half-up to the nearest
// multiple of QuantizationStep. The division is truncated after adding half
// a step, the same way the scanner does it.
func QuantizeBValue(nominal int, scale float64) float64 {
	step := float64(QuantizationStep)
	return math.Floor((float64(nominal)*scale+step/2)/step) * step
}

// Reconstruct replaces every row's b-value with the one implied by the squared
// norm of its gradient vector, rescales the vector accordingly and then
// applies the frequency-encoding correction. The table is modified in place
// and returned.
func Reconstruct(table *models.GradientTable, bValue int, freq models.Frequency) (*models.GradientTable, error) {
	if !freq.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrequency, freq)
	}
	if bValue < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBValue, bValue)
	}

	for i := 0; i < table.Rows(); i++ {
		vec := table.Vectors.RawRowView(i)
		scale := floats.Dot(vec, vec)

		bNew := QuantizeBValue(bValue, scale)
		table.BValues[i] = bNew

		// A zero b-value is a b0 row and must come out as a zero vector
		factor := 0.0
		if bNew != 0 {
			factor = math.Sqrt(float64(bValue) / bNew)
		}
		floats.Scale(factor, vec)
	}

	if err := ApplyFrequency(table, freq); err != nil {
		return nil, err
	}
	return table, nil
}

// ApplyFrequency applies the axis correction for the frequency-encoding
// direction. RL negates x. AP sets (y, z) to (-z, -y). Both are involutions.
func ApplyFrequency(table *models.GradientTable, freq models.Frequency) error {
	switch freq {
	case models.RL:
		for i := 0; i < table.Rows(); i++ {
			vec := table.Vectors.RawRowView(i)
			vec[0] = -vec[0]
		}
	case models.AP:
		for i := 0; i < table.Rows(); i++ {
			vec := table.Vectors.RawRowView(i)
			vec[1], vec[2] = -vec[2], -vec[1]
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, freq)
	}
	return nil
}
