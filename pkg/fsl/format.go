// Package fsl renders a gradient table as FSL bval/bvec text.
package fsl

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tensor2bvec/internal/models"
)

// Output holds the formatted bval and bvec values of one table
type Output struct {
	// BVal has one formatted b-value per row
	BVal []string

	// BVec has one space-separated line per axis (x, y, z)
	BVec [3]string
}

// FormatScalar prints v with six decimals. Values that print as zero, of
// either sign, become "0".
func FormatScalar(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	if s == "0.000000" || s == "-0.000000" {
		return "0"
	}
	return s
}

// Format renders every row of the table
func Format(table *models.GradientTable) Output {
	rows := table.Rows()
	out := Output{BVal: make([]string, rows)}
	for i, b := range table.BValues {
		out.BVal[i] = FormatScalar(b)
	}

	for axis := 0; axis < 3; axis++ {
		col := make([]string, rows)
		for i := 0; i < rows; i++ {
			col[i] = FormatScalar(table.Vectors.At(i, axis))
		}
		out.BVec[axis] = strings.Join(col, " ")
	}
	return out
}

// BValText is the content of the .bval file
func (o Output) BValText() string {
	return strings.Join(o.BVal, " ")
}

// BVecText is the content of the .bvec file
func (o Output) BVecText() string {
	return strings.Join(o.BVec[:], "\n")
}

// FileNames returns the conventional bval and bvec names for a conversion
func FileNames(prefix string, params models.ConversionParameters) (bval, bvec string) {
	base := fmt.Sprintf("%s_%dt2_%ddir_b%d", prefix, params.NumT2, params.NumDirs, params.BValue)
	return base + ".bval", base + ".bvec"
}

// Write saves both files under dir and returns their paths
func Write(dir, prefix string, params models.ConversionParameters, out Output) (bvalPath, bvecPath string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}

	bvalName, bvecName := FileNames(prefix, params)
	bvalPath = filepath.Join(dir, bvalName)
	bvecPath = filepath.Join(dir, bvecName)

	if err := os.WriteFile(bvalPath, []byte(out.BValText()), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write bval file: %w", err)
	}
	if err := os.WriteFile(bvecPath, []byte(out.BVecText()), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write bvec file: %w", err)
	}
	return bvalPath, bvecPath, nil
}

// ShellCount is the number of volumes acquired at one b-value
type ShellCount struct {
	BValue int
	Count  int
}

// Summarize counts the rows per distinct b-value, in ascending b order
func Summarize(table *models.GradientTable) []ShellCount {
	counts := make(map[int]int)
	for _, b := range table.BValues {
		counts[int(b)]++
	}

	shells := make([]ShellCount, 0, len(counts))
	for b, n := range counts {
		shells = append(shells, ShellCount{BValue: b, Count: n})
	}
	sort.Slice(shells, func(i, j int) bool {
		return shells[i].BValue < shells[j].BValue
	})
	return shells
}

// FormatSummary renders one "b=<value> x <count>" line per shell
func FormatSummary(shells []ShellCount) string {
	var sb strings.Builder
	for _, s := range shells {
		fmt.Fprintf(&sb, "b=%5d x %d\n", s.BValue, s.Count)
	}
	return sb.String()
}
