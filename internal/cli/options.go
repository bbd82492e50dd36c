// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"seekone/internal/adapter"
	"seekone/internal/chemistry"
	"seekone/internal/cliutil"
	"seekone/internal/runutil"
	"seekone/internal/structure"
	"seekone/internal/whitelist"
)

// Options holds the flags of the barcode step.
type Options struct {
	// Input
	FQ1, FQ2 []string
	Sample   string

	// Output
	OutDir  string
	Out     string // "-" writes to stdout
	Summary string

	// Read-1 layout
	Structure string
	Barcodes  []string
	Linkers   []string
	MisB      string
	MisL      string
	Shift     bool
	Pattern   string

	Chemistry    string
	WhitelistDir string

	// Trimming
	MinLength         int
	Adapter           string
	AdapterErrorRate  float64
	AdapterMinOverlap int

	// Performance
	Core       int
	BufferSize string

	Progress bool
	Quiet    bool
	Verbose  bool

	// Filled in by Validate.
	B, L        whitelist.Budget
	BufferBytes int
	Segments    []structure.Segment
}

// Register binds every barcode flag to o with its default.
func Register(fs *pflag.FlagSet, o *Options) {
	fs.StringSliceVar(&o.FQ1, "fq1", nil, "read-1 FASTQ file(s), gzip ok (repeatable, globs ok) [*]")
	fs.StringSliceVar(&o.FQ2, "fq2", nil, "read-2 FASTQ file(s), same order as --fq1 [*]")
	fs.StringVarP(&o.Sample, "samplename", "s", "", "sample name used in output file names [*]")

	fs.StringVarP(&o.OutDir, "outdir", "o", ".", "output directory")
	fs.StringVar(&o.Out, "out", "", "output FASTQ (default <outdir>/step1/<sample>_2.fq.gz; '-' = stdout)")
	fs.StringVar(&o.Summary, "summary", "", "summary JSON (default <outdir>/<sample>_summary.json)")

	fs.StringVar(&o.Structure, "structure", "", "read-1 layout, e.g. B8L8B8L10B8U8")
	fs.StringSliceVar(&o.Barcodes, "barcode", nil, "barcode whitelist file or literal (repeatable, one per barcode segment)")
	fs.StringSliceVar(&o.Linkers, "linker", nil, "linker whitelist file or literal (repeatable, one per linker segment)")
	fs.StringVar(&o.MisB, "misB", "1,0", "barcode budget as 'substitutions,indels' (each 0 or 1)")
	fs.StringVar(&o.MisL, "misL", "1,0", "linker budget as 'substitutions,indels' (each 0 or 1)")
	fs.BoolVar(&o.Shift, "shift", false, "locate the read start by the anchor pattern")
	fs.StringVar(&o.Pattern, "pattern", "A", "anchor pattern searched in the first bases of read 1")

	fs.StringVar(&o.Chemistry, "chemistry", "", "named preset: "+strings.Join(chemistry.Names(), ", "))
	fs.StringVar(&o.WhitelistDir, "whitelist-dir", ".", "directory preset whitelist names resolve against")

	fs.IntVar(&o.MinLength, "min-length", 50, "drop adapter-trimmed read-2s shorter than this")
	fs.StringVar(&o.Adapter, "adapter", adapter.DefaultPolyA, "3' adapter trimmed from read 2")
	fs.Float64Var(&o.AdapterErrorRate, "adapter-error-rate", 0.1, "maximum adapter mismatch rate")
	fs.IntVar(&o.AdapterMinOverlap, "adapter-min-overlap", 3, "minimum adapter overlap at the read end")

	fs.IntVarP(&o.Core, "core", "t", 4, "worker goroutines (0 = all CPUs)")
	fs.StringVar(&o.BufferSize, "buffer-size", "400MiB", "bytes per input chunk per file (e.g. 64KiB, 400MiB)")

	fs.BoolVar(&o.Progress, "progress", false, "show a progress bar on stderr")
	fs.BoolVarP(&o.Quiet, "quiet", "q", false, "log warnings and errors only")
	fs.BoolVarP(&o.Verbose, "verbose", "v", false, "log debug detail")
}

// ParseBudget reads "subs,indels" where each value is 0 or 1.
func ParseBudget(s string) (whitelist.Budget, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return whitelist.Budget{}, fmt.Errorf("budget %q: want 'substitutions,indels'", s)
	}
	var v [2]bool
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 1 {
			return whitelist.Budget{}, fmt.Errorf("budget %q: values must be 0 or 1", s)
		}
		v[i] = n == 1
	}
	return whitelist.Budget{Substitutions: v[0], Indels: v[1]}, nil
}

// Validate applies the chemistry preset, expands input globs, fills the
// derived fields and checks the cross-flag rules.
func Validate(o *Options) error {
	var err error
	if o.FQ1, err = cliutil.ExpandPaths(cliutil.SplitList(o.FQ1)); err != nil {
		return err
	}
	if o.FQ2, err = cliutil.ExpandPaths(cliutil.SplitList(o.FQ2)); err != nil {
		return err
	}
	if len(o.FQ1) == 0 || len(o.FQ2) == 0 {
		return errors.New("provide --fq1 and --fq2")
	}
	if len(o.FQ1) != len(o.FQ2) {
		return fmt.Errorf("--fq1 has %d file(s) but --fq2 has %d", len(o.FQ1), len(o.FQ2))
	}
	stdin := 0
	for _, p := range append(append([]string{}, o.FQ1...), o.FQ2...) {
		if p == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return errors.New("stdin ('-') can feed at most one input")
	}
	if o.Sample == "" {
		return errors.New("provide --samplename")
	}

	o.Barcodes = cliutil.SplitList(o.Barcodes)
	o.Linkers = cliutil.SplitList(o.Linkers)
	if o.B, err = ParseBudget(o.MisB); err != nil {
		return fmt.Errorf("--misB: %w", err)
	}
	if o.L, err = ParseBudget(o.MisL); err != nil {
		return fmt.Errorf("--misL: %w", err)
	}

	if o.Chemistry != "" {
		p, err := chemistry.Lookup(o.Chemistry, o.WhitelistDir)
		if err != nil {
			return err
		}
		o.Structure, o.Barcodes, o.Linkers = p.Structure, p.Barcodes, p.Linkers
		o.B, o.L = p.B, p.L
		o.Shift, o.Pattern = p.Shift, p.Pattern
	}

	if o.Structure == "" {
		return errors.New("provide --structure or --chemistry")
	}
	if o.Segments, err = structure.Parse(o.Structure); err != nil {
		return err
	}
	if o.Shift && o.Pattern == "" {
		return errors.New("--shift needs a non-empty --pattern")
	}

	if o.MinLength < 0 {
		return errors.New("--min-length must be >= 0")
	}
	if o.Adapter == "" {
		return errors.New("--adapter must not be empty")
	}
	if o.AdapterErrorRate < 0 || o.AdapterErrorRate >= 1 {
		return errors.New("--adapter-error-rate must be in [0,1)")
	}
	if o.AdapterMinOverlap < 1 {
		return errors.New("--adapter-min-overlap must be >= 1")
	}
	if o.Core < 0 {
		return errors.New("--core must be >= 0")
	}
	if o.BufferBytes, err = runutil.ParseBufferSize(o.BufferSize); err != nil {
		return err
	}

	if o.Out == "" {
		o.Out = filepath.Join(o.OutDir, "step1", o.Sample+"_2.fq.gz")
	}
	if o.Summary == "" {
		o.Summary = filepath.Join(o.OutDir, o.Sample+"_summary.json")
	}
	return nil
}

// BackAdapter returns the read-2 adapter configured by the flags.
func (o *Options) BackAdapter() adapter.BackAdapter {
	return adapter.BackAdapter{
		Sequence:     strings.ToUpper(o.Adapter),
		MaxErrorRate: o.AdapterErrorRate,
		MinOverlap:   o.AdapterMinOverlap,
	}
}
