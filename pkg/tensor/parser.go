// Package tensor reads the GE diffusion tensor text format.
//
// A tensor file holds one or more blocks. Each block starts with a line whose
// only token is the number of directions in that block, followed by one line
// of "x y z" gradient components per direction. Lines starting with '#' are
// header comments.
package tensor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"tensor2bvec/internal/models"
)

var (
	// ErrMalformedInput is returned for unparseable direction lines, extra
	// direction lines inside a block, or a file without a matching header
	ErrMalformedInput = errors.New("malformed tensor input")

	// ErrInsufficientInput is returned when the last block holds fewer
	// directions than requested and Options.AllowIncomplete is false
	ErrInsufficientInput = errors.New("insufficient directions in tensor input")

	// ErrDuplicateBlock is returned when the requested block appears more
	// than once and Options.AllowDuplicateBlocks is false
	ErrDuplicateBlock = errors.New("duplicate direction block in tensor input")

	// ErrInvalidParameters is returned for a non-positive direction count or
	// a negative T2 count
	ErrInvalidParameters = errors.New("invalid tensor parameters")
)

// Options controls how strictly the parser treats questionable files
type Options struct {
	// AllowIncomplete keeps trailing rows at zero when the block is short
	// instead of failing
	AllowIncomplete bool

	// AllowDuplicateBlocks lets a later block with the same direction count
	// replace an earlier one
	AllowDuplicateBlocks bool
}

// DefaultOptions accepts short blocks and rejects duplicate blocks
func DefaultOptions() Options {
	return Options{
		AllowIncomplete:      true,
		AllowDuplicateBlocks: false,
	}
}

// Parse extracts the numDirs-direction block from content into a new gradient
// table with numT2 leading zero rows.
func Parse(content string, numDirs, numT2 int, opts Options) (*models.ParseResult, error) {
	if numDirs < 1 {
		return nil, fmt.Errorf("%w: number of directions must be at least 1, got %d", ErrInvalidParameters, numDirs)
	}
	if numT2 < 0 {
		return nil, fmt.Errorf("%w: number of T2 volumes must be non-negative, got %d", ErrInvalidParameters, numT2)
	}

	header := strconv.Itoa(numDirs)
	result := &models.ParseResult{
		Table: models.NewGradientTable(numDirs, numT2),
	}

	// inBlock is true between our header line and the next single-token line
	inBlock := false
	count := 0

	for lineNo, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			result.Comments = append(result.Comments, trimmed)
			continue
		}

		tokens := strings.Fields(trimmed)
		if len(tokens) == 1 {
			if tokens[0] != header {
				// Header of a block with a different direction count
				inBlock = false
				continue
			}

			result.Blocks++
			if result.Blocks > 1 && !opts.AllowDuplicateBlocks {
				return nil, fmt.Errorf("%w: header %q repeated at line %d", ErrDuplicateBlock, header, lineNo+1)
			}
			for i := 0; i < count; i++ {
				result.Table.ClearRow(numT2 + i)
			}
			inBlock = true
			count = 0
			result.Matched = result.Matched[:0]
			continue
		}

		if !inBlock {
			continue
		}
		if count >= numDirs {
			return nil, fmt.Errorf("%w: line %d: more than %d directions in block", ErrMalformedInput, lineNo+1, numDirs)
		}

		x, y, z, err := parseDirection(tokens)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, lineNo+1, err)
		}
		result.Table.SetVector(numT2+count, x, y, z)
		result.Matched = append(result.Matched, trimmed)
		count++
	}

	if result.Blocks == 0 {
		return nil, fmt.Errorf("%w: no header line %q found", ErrMalformedInput, header)
	}

	result.Found = count
	if count < numDirs && !opts.AllowIncomplete {
		return nil, fmt.Errorf("%w: found %d of %d directions", ErrInsufficientInput, count, numDirs)
	}

	return result, nil
}

// parseDirection reads the first three tokens as x, y and z. Components
// must be finite decimal numbers.
func parseDirection(tokens []string) (x, y, z float64, err error) {
	if len(tokens) < 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 gradient components, got %d", len(tokens))
	}

	var v [3]float64
	for i := range v {
		if strings.ContainsAny(tokens[i], "xX") {
			return 0, 0, 0, fmt.Errorf("component %d: %q is not a decimal number", i+1, tokens[i])
		}
		v[i], err = strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("component %d: %v", i+1, err)
		}
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return 0, 0, 0, fmt.Errorf("component %d: %q is not finite", i+1, tokens[i])
		}
	}
	return v[0], v[1], v[2], nil
}
