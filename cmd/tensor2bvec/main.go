package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
	"time"

	"tensor2bvec/pkg/config"
	"tensor2bvec/pkg/convert"
	"tensor2bvec/pkg/fsl"
	"tensor2bvec/pkg/sidecar"
	"tensor2bvec/pkg/source"
)

func main() {
	// Parse command line arguments
	flags := registerFlags(flag.CommandLine)
	flag.Parse()

	if flags.writeConfig != "" {
		if err := config.CreateDefaultConfigFile(flags.writeConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", flags.writeConfig)
		return
	}

	inputs := flag.Args()
	if flags.input != "" {
		inputs = append([]string{flags.input}, inputs...)
	}
	if len(inputs) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	if flags.prefix != "" && len(inputs) > 1 {
		log.Fatalf("-prefix can only be used with a single input")
	}

	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Only flags given on the command line override the sidecar and config
	ov := flags.apply(flag.CommandLine, cfg)

	ctx := context.Background()
	client, err := source.NewClientFor(ctx, append(inputs, flags.jsonPath)...)
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}
	if client != nil {
		defer client.Close()
	}

	var sc *sidecar.Sidecar
	if flags.jsonPath != "" {
		data, err := source.ReadAll(ctx, flags.jsonPath, client)
		if err != nil {
			log.Fatalf("Failed to read sidecar: %v", err)
		}
		if sc, err = sidecar.Parse(bytes.NewReader(data)); err != nil {
			log.Fatalf("Failed to parse sidecar %s: %v", flags.jsonPath, err)
		}
	}

	params, err := config.Resolve(cfg, sc, ov)
	if err != nil {
		log.Fatalf("Failed to resolve conversion parameters: %v", err)
	}
	fmt.Printf("Directions: %d, T2 volumes: %d, b-value: %d, frequency: %s\n",
		params.NumDirs, params.NumT2, params.BValue, params.Frequency)

	reqs := make([]convert.Request, 0, len(inputs))
	for _, in := range inputs {
		data, err := source.ReadAll(ctx, in, client)
		if err != nil {
			log.Fatalf("Failed to read tensor file: %v", err)
		}
		reqs = append(reqs, convert.Request{Name: in, Content: string(data), Params: params})
	}

	converter := convert.NewConverter(cfg.ParserOptions(), cfg.Processing.NumCores)
	startTime := time.Now()
	results, errs := converter.ConvertAll(reqs)

	failed := 0
	for i, res := range results {
		if errs[i] != nil {
			log.Printf("Conversion failed: %v", errs[i])
			failed++
			continue
		}
		if err := report(reqs[i], res, flags.prefix, cfg); err != nil {
			log.Printf("Failed to write output for %s: %v", reqs[i].Name, err)
			failed++
		}
	}

	fmt.Printf("\nConverted %d of %d files in %s\n", len(reqs)-failed, len(reqs), time.Since(startTime))
	if failed > 0 {
		os.Exit(1)
	}
}

// report prints the b-value summary and writes the bval/bvec files
func report(req convert.Request, res *convert.Result, prefix string, cfg *config.Config) error {
	fmt.Printf("\n%s\n", req.Name)
	if res.Incomplete() {
		log.Printf("Warning: %s has %d of %d directions; trailing rows are zero",
			req.Name, res.Parse.Found, req.Params.NumDirs)
	}

	fmt.Println("Summary of b-values:")
	fmt.Print(fsl.FormatSummary(res.Summary))

	if cfg.Output.Verbose {
		fmt.Println("bval:")
		fmt.Println(res.Output.BValText())
		fmt.Println("bvec:")
		fmt.Println(res.Output.BVecText())
	}

	if prefix == "" {
		prefix = namePrefix(req.Name)
	}
	bvalPath, bvecPath, err := fsl.Write(cfg.Output.Dir, prefix, req.Params, res.Output)
	if err != nil {
		return err
	}
	fmt.Printf("Saved: %s\nSaved: %s\n", bvalPath, bvecPath)
	return nil
}

// namePrefix is the base name of p up to its first '.'
func namePrefix(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}
