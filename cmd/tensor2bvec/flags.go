package main

import (
	"flag"

	"tensor2bvec/pkg/config"
)

// cliFlags holds the command line values
type cliFlags struct {
	input       string
	jsonPath    string
	configPath  string
	writeConfig string
	numDirs     int
	numT2       int
	bValue      int
	freq        string
	outputDir   string
	prefix      string
	verbose     bool
	strict      bool
}

// registerFlags defines every command line flag on fs
func registerFlags(fs *flag.FlagSet) *cliFlags {
	f := &cliFlags{}
	fs.StringVar(&f.input, "input", "", "GE tensor file (local path or gs://bucket/object); more files may follow as arguments")
	fs.StringVar(&f.jsonPath, "json", "", "Optional dcm2niix JSON sidecar")
	fs.StringVar(&f.configPath, "config", "tensor2bvec.yaml", "YAML configuration file (defaults are used if missing)")
	fs.StringVar(&f.writeConfig, "write-config", "", "Write the default configuration to this path and exit")
	fs.IntVar(&f.numDirs, "dirs", 0, "Number of diffusion directions")
	fs.IntVar(&f.numT2, "t2", 0, "Number of T2 (b0) volumes")
	fs.IntVar(&f.bValue, "b", 0, "Nominal b-value")
	fs.StringVar(&f.freq, "freq", "", "Frequency-encoding direction: RL or AP")
	fs.StringVar(&f.outputDir, "output-dir", "", "Directory for the bval/bvec files")
	fs.StringVar(&f.prefix, "prefix", "", "Output filename prefix (default: input name up to the first '.')")
	fs.BoolVar(&f.verbose, "verbose", false, "Print the bval and bvec contents")
	fs.BoolVar(&f.strict, "strict", false, "Fail on incomplete or duplicated direction blocks")
	return f
}

// apply copies the flags that were set on the command line into cfg and
// returns the conversion overrides. Flags left unset keep the sidecar and
// config values.
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *config.Config) config.Overrides {
	var ov config.Overrides
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "dirs":
			ov.NumDirs = &f.numDirs
		case "t2":
			ov.NumT2 = &f.numT2
		case "b":
			ov.BValue = &f.bValue
		case "freq":
			ov.Frequency = &f.freq
		case "output-dir":
			cfg.Output.Dir = f.outputDir
		case "verbose":
			cfg.Output.Verbose = f.verbose
		}
	})
	if f.strict {
		cfg.Parsing.AllowIncomplete = false
		cfg.Parsing.AllowDuplicateBlocks = false
	}
	return ov
}
