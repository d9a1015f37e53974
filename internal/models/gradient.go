package models

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// GradientTable holds one b-value and one gradient vector per acquired volume.
// The first NumT2 rows are b0/T2 reference volumes, the remaining rows hold
// one diffusion direction each, in the order they appear in the tensor file.
type GradientTable struct {
	// BValues holds the b-value of each row
	BValues []float64

	// Vectors is a rows x 3 matrix of gradient components (x, y, z)
	Vectors *mat.Dense

	// NumT2 is the number of leading reference rows
	NumT2 int
}

// NewGradientTable creates a zeroed table with numT2+numDirs rows.
// The row count is fixed for the lifetime of the table.
func NewGradientTable(numDirs, numT2 int) *GradientTable {
	rows := numDirs + numT2
	return &GradientTable{
		BValues: make([]float64, rows),
		Vectors: mat.NewDense(rows, 3, nil),
		NumT2:   numT2,
	}
}

// Rows returns the number of rows in the table
func (t *GradientTable) Rows() int {
	return len(t.BValues)
}

// Vector returns a copy of row i's gradient components
func (t *GradientTable) Vector(i int) (x, y, z float64) {
	row := t.Vectors.RawRowView(i)
	return row[0], row[1], row[2]
}

// SetVector overwrites row i's gradient components
func (t *GradientTable) SetVector(i int, x, y, z float64) {
	t.Vectors.SetRow(i, []float64{x, y, z})
}

// ClearRow zeroes both the b-value and the vector of row i
func (t *GradientTable) ClearRow(i int) {
	t.BValues[i] = 0
	t.SetVector(i, 0, 0, 0)
}

// Clone returns a deep copy of the table
func (t *GradientTable) Clone() *GradientTable {
	out := &GradientTable{
		BValues: make([]float64, len(t.BValues)),
		Vectors: mat.DenseCopyOf(t.Vectors),
		NumT2:   t.NumT2,
	}
	copy(out.BValues, t.BValues)
	return out
}

// ParseResult is the output of the tensor parser. Only Table feeds the
// reconstruction; the remaining fields are kept for reporting.
type ParseResult struct {
	// Table is the populated gradient table
	Table *GradientTable

	// Comments holds the header lines that begin with '#'
	Comments []string

	// Matched holds the raw direction lines of the block that survived
	Matched []string

	// Blocks is the number of direction-count header lines seen
	Blocks int

	// Found is the number of direction lines read in the last block
	Found int
}

// Frequency is the frequency-encoding direction of the acquisition
type Frequency string

const (
	// RL is right-left frequency encoding
	RL Frequency = "RL"
	// AP is anterior-posterior frequency encoding
	AP Frequency = "AP"
)

// Valid reports whether f is one of the supported directions
func (f Frequency) Valid() bool {
	return f == RL || f == AP
}

// ParseFrequency accepts "RL" or "AP" in any case
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("invalid frequency %q (must be RL or AP)", s)
	}
	return f, nil
}

// ConversionParameters are the resolved inputs of one conversion
type ConversionParameters struct {
	// NumDirs is the number of diffusion directions in the tensor block
	NumDirs int

	// NumT2 is the number of leading b0/T2 volumes
	NumT2 int

	// BValue is the operator-selected nominal b-value
	BValue int

	// Frequency is the frequency-encoding direction
	Frequency Frequency
}

// Validate checks that every parameter is in range
func (p ConversionParameters) Validate() error {
	if p.NumDirs < 1 {
		return fmt.Errorf("number of directions must be at least 1, got %d", p.NumDirs)
	}
	if p.NumT2 < 0 {
		return fmt.Errorf("number of T2 volumes must be non-negative, got %d", p.NumT2)
	}
	if p.BValue < 0 {
		return fmt.Errorf("b-value must be non-negative, got %d", p.BValue)
	}
	if !p.Frequency.Valid() {
		return fmt.Errorf("invalid frequency %q (must be RL or AP)", p.Frequency)
	}
	return nil
}
