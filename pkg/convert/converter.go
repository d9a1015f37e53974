// Package convert runs the tensor-to-FSL pipeline: parse the tensor block,
// reconstruct b-values and vectors, and format the bval/bvec text.
package convert

import (
	"fmt"
	"sync"

	"tensor2bvec/internal/models"
	"tensor2bvec/pkg/bvalue"
	"tensor2bvec/pkg/fsl"
	"tensor2bvec/pkg/tensor"
)

// Request is one conversion: the tensor file text and its parameters
type Request struct {
	// Name identifies the request in errors, usually the input path
	Name string

	// Content is the raw tensor file text
	Content string

	// Params are the resolved conversion parameters
	Params models.ConversionParameters
}

// Result holds everything produced by one conversion
type Result struct {
	// Parse is the parser output, including header comments and matched lines
	Parse *models.ParseResult

	// Table is the reconstructed gradient table
	Table *models.GradientTable

	// Output is the formatted bval/bvec text
	Output fsl.Output

	// Summary counts volumes per b-value
	Summary []fsl.ShellCount
}

// Incomplete reports whether the tensor block had fewer directions than
// requested, leaving trailing zero rows
func (r *Result) Incomplete() bool {
	return r.Parse.Found < r.Table.Rows()-r.Table.NumT2
}

// Converter runs conversions with a fixed set of parser options
type Converter struct {
	// options controls parser strictness
	options tensor.Options

	// numCores bounds the number of parallel conversions in ConvertAll
	numCores int
}

// NewConverter creates a converter. numCores below 1 is treated as 1.
func NewConverter(options tensor.Options, numCores int) *Converter {
	if numCores < 1 {
		numCores = 1
	}
	return &Converter{
		options:  options,
		numCores: numCores,
	}
}

// Convert runs the full pipeline for one request. Any stage failure aborts
// the conversion and no partial result is returned.
func (c *Converter) Convert(req Request) (*Result, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	parsed, err := tensor.Parse(req.Content, req.Params.NumDirs, req.Params.NumT2, c.options)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tensor file: %w", err)
	}

	table, err := bvalue.Reconstruct(parsed.Table, req.Params.BValue, req.Params.Frequency)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct b-values: %w", err)
	}

	return &Result{
		Parse:   parsed,
		Table:   table,
		Output:  fsl.Format(table),
		Summary: fsl.Summarize(table),
	}, nil
}

// ConvertAll converts independent requests in parallel. results[i] and
// errs[i] belong to reqs[i]; exactly one of them is non-nil.
func (c *Converter) ConvertAll(reqs []Request) (results []*Result, errs []error) {
	results = make([]*Result, len(reqs))
	errs = make([]error, len(reqs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.numCores)

	for i := range reqs {
		sem <- struct{}{}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := c.Convert(reqs[i])
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", reqs[i].Name, err)
				return
			}
			results[i] = res
		}(i)
	}

	wg.Wait()
	return results, errs
}
