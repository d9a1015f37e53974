package tensor

import (
	"errors"
	"fmt"
	"testing"

	"tensor2bvec/internal/models"
)

// checkRow fails the test if row i of the table does not hold (x, y, z)
func checkRow(t *testing.T, table *models.GradientTable, i int, wx, wy, wz float64) {
	t.Helper()
	x, y, z := table.Vector(i)
	if x != wx || y != wy || z != wz {
		t.Errorf("Expected row %d = (%g, %g, %g), got (%g, %g, %g)", i, wx, wy, wz, x, y, z)
	}
}

// TestParseSimpleBlock verifies the basic layout: T2 rows first, then directions in file order
func TestParseSimpleBlock(t *testing.T) {
	res, err := Parse("2\n1 0 0\n0 1 0\n", 2, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if res.Table.Rows() != 3 {
		t.Fatalf("Expected 3 rows, got %d", res.Table.Rows())
	}
	checkRow(t, res.Table, 0, 0, 0, 0)
	checkRow(t, res.Table, 1, 1, 0, 0)
	checkRow(t, res.Table, 2, 0, 1, 0)

	if res.Blocks != 1 || res.Found != 2 {
		t.Errorf("Expected 1 block with 2 directions, got %d blocks with %d", res.Blocks, res.Found)
	}
	if len(res.Matched) != 2 || res.Matched[1] != "0 1 0" {
		t.Errorf("Expected matched lines [1 0 0, 0 1 0], got %q", res.Matched)
	}
}

// TestParseRowCount verifies the table size for a range of parameters
func TestParseRowCount(t *testing.T) {
	for dirs := 1; dirs <= 4; dirs++ {
		for t2 := 0; t2 <= 3; t2++ {
			content := fmt.Sprintf("%d\n", dirs)
			for i := 0; i < dirs; i++ {
				content += "0.5 0.5 0.5\n"
			}

			res, err := Parse(content, dirs, t2, DefaultOptions())
			if err != nil {
				t.Fatalf("Unexpected error for dirs=%d t2=%d: %v", dirs, t2, err)
			}
			if res.Table.Rows() != dirs+t2 {
				t.Errorf("Expected %d rows, got %d", dirs+t2, res.Table.Rows())
			}
		}
	}
}

// TestParseCommentsAndBlankLines verifies that headers are collected and skipped
func TestParseCommentsAndBlankLines(t *testing.T) {
	content := "# GE tensor file\n  # generated\n\n3\r\n1 0 0\r\n\n0 1 0\n0 0 1 extra\n"
	res, err := Parse(content, 3, 0, DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if len(res.Comments) != 2 {
		t.Errorf("Expected 2 comment lines, got %d: %q", len(res.Comments), res.Comments)
	}
	checkRow(t, res.Table, 0, 1, 0, 0)
	checkRow(t, res.Table, 1, 0, 1, 0)
	checkRow(t, res.Table, 2, 0, 0, 1)
}

// TestParseSelectsBlockByCount verifies that blocks for other direction counts are ignored
func TestParseSelectsBlockByCount(t *testing.T) {
	content := "2\n9 9 9\n8 8 8\n3\n1 0 0\n0 1 0\n0 0 1\n4\n7 7 7\n7 7 7\n7 7 7\n7 7 7\n"
	res, err := Parse(content, 3, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	checkRow(t, res.Table, 0, 0, 0, 0)
	checkRow(t, res.Table, 1, 1, 0, 0)
	checkRow(t, res.Table, 2, 0, 1, 0)
	checkRow(t, res.Table, 3, 0, 0, 1)
}

// TestParseDuplicateBlocks verifies rejection by default and last-block-wins when allowed
func TestParseDuplicateBlocks(t *testing.T) {
	content := "2\n1 0 0\n0 1 0\n2\n0 0 1\n"

	_, err := Parse(content, 2, 1, DefaultOptions())
	if !errors.Is(err, ErrDuplicateBlock) {
		t.Fatalf("Expected ErrDuplicateBlock, got %v", err)
	}

	opts := DefaultOptions()
	opts.AllowDuplicateBlocks = true
	res, err := Parse(content, 2, 1, opts)
	if err != nil {
		t.Fatalf("Failed to parse with duplicates allowed: %v", err)
	}
	if res.Blocks != 2 {
		t.Errorf("Expected 2 blocks, got %d", res.Blocks)
	}
	checkRow(t, res.Table, 1, 0, 0, 1)
	// The earlier block's second row must not survive
	checkRow(t, res.Table, 2, 0, 0, 0)
	if res.Found != 1 {
		t.Errorf("Expected 1 direction in last block, got %d", res.Found)
	}
	if len(res.Matched) != 1 || res.Matched[0] != "0 0 1" {
		t.Errorf("Expected only last block's lines, got %q", res.Matched)
	}
}

// TestParseIncomplete verifies that short blocks leave zero rows or fail in strict mode
func TestParseIncomplete(t *testing.T) {
	content := "3\n1 0 0\n"

	res, err := Parse(content, 3, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to parse incomplete block: %v", err)
	}
	if res.Found != 1 {
		t.Errorf("Expected 1 direction found, got %d", res.Found)
	}
	checkRow(t, res.Table, 2, 0, 0, 0)
	checkRow(t, res.Table, 3, 0, 0, 0)

	opts := DefaultOptions()
	opts.AllowIncomplete = false
	if _, err := Parse(content, 3, 1, opts); !errors.Is(err, ErrInsufficientInput) {
		t.Errorf("Expected ErrInsufficientInput, got %v", err)
	}
}

// TestParseMalformed verifies that bad input is reported, never guessed
func TestParseMalformed(t *testing.T) {
	tests := map[string]string{
		"non-numeric component": "2\n1 0 x\n0 1 0\n",
		"two components":        "2\n1 0\n0 1 0\n",
		"nan component":         "2\nnan 0 0\n0 1 0\n",
		"inf component":         "2\n1 -Inf 0\n0 1 0\n",
		"infinity component":    "2\n1 0 Infinity\n0 1 0\n",
		"hex component":         "2\n0x1p-1 0 0\n0 1 0\n",
		"extra direction":       "2\n1 0 0\n0 1 0\n0 0 1\n",
		"no header":             "1 0 0\n0 1 0\n",
		"empty":                 "",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(content, 2, 1, DefaultOptions())
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("Expected ErrMalformedInput, got %v", err)
			}
		})
	}
}

// TestParseInvalidParameters verifies the direction and T2 count checks
func TestParseInvalidParameters(t *testing.T) {
	if _, err := Parse("0\n", 0, 1, DefaultOptions()); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("Expected ErrInvalidParameters for zero directions, got %v", err)
	}
	if _, err := Parse("1\n1 0 0\n", 1, -1, DefaultOptions()); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("Expected ErrInvalidParameters for negative T2, got %v", err)
	}
}

// TestParseScientificNotation verifies that GE float formats are accepted
func TestParseScientificNotation(t *testing.T) {
	res, err := Parse("1\n  -7.071068e-01\t0.707107   0.000000\n", 1, 0, DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	checkRow(t, res.Table, 0, -0.7071068, 0.707107, 0)
}
