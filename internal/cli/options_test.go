// internal/cli/options_test.go
package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"seekone/internal/whitelist"
)

func parse(t *testing.T, args ...string) (Options, error) {
	t.Helper()
	var o Options
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Register(fs, &o)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse err: %v", err)
	}
	return o, Validate(&o)
}

func mustValidate(t *testing.T, args ...string) Options {
	t.Helper()
	o, err := parse(t, args...)
	if err != nil {
		t.Fatalf("validate err: %v", err)
	}
	return o
}

var base = []string{"--fq1", "r1.fq", "--fq2", "r2.fq", "-s", "S1", "--structure", "B8U8"}

func TestDefaults(t *testing.T) {
	o := mustValidate(t, base...)
	if o.B != (whitelist.Budget{Substitutions: true}) || o.L != o.B {
		t.Errorf("default budgets = %v / %v, want 1,0", o.B, o.L)
	}
	if o.Out != filepath.Join(".", "step1", "S1_2.fq.gz") {
		t.Errorf("default out = %q", o.Out)
	}
	if o.Summary != filepath.Join(".", "S1_summary.json") {
		t.Errorf("default summary = %q", o.Summary)
	}
	if o.BufferBytes != 400<<20 || o.Core != 4 || o.MinLength != 50 || o.Pattern != "A" {
		t.Errorf("unexpected defaults %+v", o)
	}
	if len(o.Segments) != 2 {
		t.Errorf("segments = %v", o.Segments)
	}
	a := o.BackAdapter()
	if a.Sequence != strings.Repeat("A", 15) || a.MaxErrorRate != 0.1 || a.MinOverlap != 3 {
		t.Errorf("adapter = %+v", a)
	}
}

func TestRepeatableAndCommaLists(t *testing.T) {
	o := mustValidate(t, append(base,
		"--fq1", "b1.fq", "--fq2", "b2.fq",
		"--barcode", "w1.txt,w2.txt", "--barcode", "w3.txt")...)
	if len(o.FQ1) != 2 || o.FQ1[1] != "b1.fq" || len(o.Barcodes) != 3 {
		t.Errorf("lists: fq1=%v barcodes=%v", o.FQ1, o.Barcodes)
	}
}

func TestChemistryOverrides(t *testing.T) {
	o := mustValidate(t, "--fq1", "r1.fq", "--fq2", "r2.fq", "-s", "S",
		"--chemistry", "SO01V3", "--whitelist-dir", "wl", "--structure", "B1")
	if o.Structure != "B8L8B8L10B8U8" || !o.Shift || len(o.Linkers) != 2 {
		t.Errorf("preset not applied: %+v", o)
	}
	if o.Barcodes[0] != filepath.Join("wl", "SO01V3", "seekgene.txt") {
		t.Errorf("barcode path = %q", o.Barcodes[0])
	}
	if !o.B.Indels || !o.L.Indels {
		t.Errorf("budgets = %v / %v", o.B, o.L)
	}
}

func TestParseBudget(t *testing.T) {
	cases := map[string]whitelist.Budget{
		"0,0": {},
		"1,0": {Substitutions: true},
		"0,1": {Indels: true},
		"1,1": {Substitutions: true, Indels: true},
	}
	for in, want := range cases {
		got, err := ParseBudget(in)
		if err != nil || got != want {
			t.Errorf("ParseBudget(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "1", "2,0", "1,x", "1,0,0"} {
		if _, err := ParseBudget(bad); err == nil {
			t.Errorf("ParseBudget(%q): expected error", bad)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"no inputs", []string{"-s", "S", "--structure", "B8"}},
		{"count mismatch", []string{"--fq1", "a", "--fq1", "b", "--fq2", "c", "-s", "S", "--structure", "B8"}},
		{"no sample", []string{"--fq1", "a", "--fq2", "b", "--structure", "B8"}},
		{"no structure", []string{"--fq1", "a", "--fq2", "b", "-s", "S"}},
		{"bad structure", append(base, "--structure", "B8Q3")},
		{"unknown chemistry", append(base, "--chemistry", "nope")},
		{"bad misB", append(base, "--misB", "2,0")},
		{"bad error rate", append(base, "--adapter-error-rate", "1")},
		{"bad overlap", append(base, "--adapter-min-overlap", "0")},
		{"bad buffer", append(base, "--buffer-size", "0")},
		{"negative core", append(base, "--core=-1")},
		{"two stdin", []string{"--fq1", "-", "--fq2", "-", "-s", "S", "--structure", "B8"}},
	}
	for _, c := range cases {
		if _, err := parse(t, c.args...); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}
