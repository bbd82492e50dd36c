// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"seekone/internal/app"
)

const r2 = "CGTAGCTAGCTAGGCTAGCTAGCATCGATCGATGCTAGCTAGCTAGCTAGCATGCATCGAT"

var polyA = strings.Repeat("A", 15)

// Layout B4L4B4U4 against whitelist {AAAA, CCCC} and linker GGTT.
var fixture = []struct{ r1, r2 string }{
	{"AAAAGGTTCCCCTTTA", r2},                   // exact
	{"AAATGGTTCCCCTTTA", r2 + polyA},           // barcode mismatch, adapter trimmed
	{"GGGGGGTTCCCCTTTA", r2},                   // barcode uncorrectable
	{"AAAAGGTACCCCTTTA", "ACGTACGTAC" + polyA}, // linker corrected, too short after trim
	{"AAAAGCCACCCCTTTA", r2},                   // linker uncorrectable
}

func write(t *testing.T, fn, data string) string {
	t.Helper()
	if err := os.WriteFile(fn, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", fn, err)
	}
	return fn
}

func fastq(mate int, reads []string) string {
	var b strings.Builder
	for i, s := range reads {
		fmt.Fprintf(&b, "@read%d %d:N\n%s\n+\n%s\n", i, mate, s, strings.Repeat("I", len(s)))
	}
	return b.String()
}

// inputs writes the fixture; read 1 is gzip-compressed when gz is set.
func inputs(t *testing.T, dir string, gz bool) (fq1, fq2, wl string) {
	t.Helper()
	var s1, s2 []string
	for _, p := range fixture {
		s1 = append(s1, p.r1)
		s2 = append(s2, p.r2)
	}
	fq2 = write(t, filepath.Join(dir, "S_R2.fq"), fastq(2, s2))
	if gz {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, _ = zw.Write([]byte(fastq(1, s1)))
		_ = zw.Close()
		fq1 = write(t, filepath.Join(dir, "S_R1.fq.gz"), buf.String())
	} else {
		fq1 = write(t, filepath.Join(dir, "S_R1.fq"), fastq(1, s1))
	}
	wl = write(t, filepath.Join(dir, "bc.txt"), "# cell barcodes\nAAAA\ncccc\n\n")
	return
}

func argv(fq1, fq2, wl string, extra ...string) []string {
	a := []string{"barcode",
		"--fq1", fq1, "--fq2", fq2, "-s", "S",
		"--structure", "B4L4B4U4",
		"--barcode", wl, "--linker", "GGTT",
		"--quiet",
	}
	return append(a, extra...)
}

func readGzip(t *testing.T, fn string) string {
	t.Helper()
	f, err := os.Open(fn)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestBarcodeStepEndToEnd(t *testing.T) {
	dir := t.TempDir()
	fq1, fq2, wl := inputs(t, dir, true)
	var out, errBuf bytes.Buffer
	code := app.Run(argv(fq1, fq2, wl, "--outdir", dir), &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, errBuf.String())
	}

	got := readGzip(t, filepath.Join(dir, "step1", "S_2.fq.gz"))
	want := "@AAAACCCC_TTTA_:_read0 2:N\n" + r2 + "\n+\n" + strings.Repeat("I", len(r2)) + "\n" +
		"@AAAACCCC_TTTA_AAAT:_read1 2:N\n" + r2 + "\n+\n" + strings.Repeat("I", len(r2)) + "\n"
	if got != want {
		t.Fatalf("output:\n%s\nwant:\n%s", got, want)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "S_summary.json"))
	if err != nil {
		t.Fatal(err)
	}
	var sum struct {
		Version string             `json:"__version__"`
		Stat    map[string]int64   `json:"stat"`
		GC      map[string][]int64 `json:"barcode_gc"`
		R2Q     [][]int64          `json:"r2_q"`
	}
	if err := json.Unmarshal(raw, &sum); err != nil {
		t.Fatalf("summary json: %v\n%s", err, raw)
	}
	wantStat := map[string]int64{"total": 5, "valid": 3, "B": 1, "L": 1, "trimmed": 1, "too_short": 1}
	for k, v := range wantStat {
		if sum.Stat[k] != v {
			t.Errorf("stat[%s] = %d, want %d (all: %v)", k, sum.Stat[k], v, sum.Stat)
		}
	}
	if sum.Version == "" {
		t.Error("missing __version__")
	}
	if a := sum.GC["A"]; len(a) != 8 || a[0] != 2 || a[4] != 0 {
		t.Errorf("barcode_gc[A] = %v", a)
	}
	if len(sum.R2Q) != len(r2) {
		t.Errorf("r2_q has %d positions, want %d", len(sum.R2Q), len(r2))
	}
}

func TestOutputIndependentOfWorkers(t *testing.T) {
	dir := t.TempDir()
	// Repeat the fixture so a tiny buffer yields many chunks.
	var s1, s2 []string
	for i := 0; i < 40; i++ {
		for _, p := range fixture {
			s1 = append(s1, p.r1)
			s2 = append(s2, p.r2)
		}
	}
	fq1 := write(t, filepath.Join(dir, "R1.fq"), fastq(1, s1))
	fq2 := write(t, filepath.Join(dir, "R2.fq"), fastq(2, s2))
	wl := write(t, filepath.Join(dir, "bc.txt"), "AAAA\nCCCC\n")

	run := func(core string) (string, string) {
		var out, errBuf bytes.Buffer
		sum := filepath.Join(dir, "sum"+core+".json")
		code := app.Run(argv(fq1, fq2, wl, "--out", "-", "--summary", sum,
			"--core", core, "--buffer-size", "100"), &out, &errBuf)
		if code != 0 {
			t.Fatalf("core %s: exit %d, stderr=%s", core, code, errBuf.String())
		}
		b, err := os.ReadFile(sum)
		if err != nil {
			t.Fatal(err)
		}
		return out.String(), string(b)
	}
	out1, sum1 := run("1")
	out4, sum4 := run("4")
	if out1 != out4 {
		t.Fatal("stdout differs between --core 1 and --core 4")
	}
	if sum1 != sum4 {
		t.Fatal("summary differs between --core 1 and --core 4")
	}
	if n := strings.Count(out1, "\n@"); n+1 != 80 {
		t.Fatalf("got %d records, want 80", n+1)
	}
}

func TestEmptyInputs(t *testing.T) {
	dir := t.TempDir()
	fq1 := write(t, filepath.Join(dir, "R1.fq"), "")
	fq2 := write(t, filepath.Join(dir, "R2.fq"), "")
	var out, errBuf bytes.Buffer
	sum := filepath.Join(dir, "s.json")
	code := app.Run(argv(fq1, fq2, "AAAA", "--out", "-", "--summary", sum), &out, &errBuf)
	if code != 0 || out.Len() != 0 {
		t.Fatalf("exit %d out=%q stderr=%s", code, out.String(), errBuf.String())
	}
	if _, err := os.Stat(sum); err != nil {
		t.Fatalf("summary not written: %v", err)
	}
}

func TestUnpairedInputsFail(t *testing.T) {
	dir := t.TempDir()
	fq1 := write(t, filepath.Join(dir, "R1.fq"), fastq(1, []string{"AAAAGGTTCCCCTTTA", "AAAAGGTTCCCCTTTA"}))
	fq2 := write(t, filepath.Join(dir, "R2.fq"), fastq(2, []string{r2}))
	var out, errBuf bytes.Buffer
	code := app.Run(argv(fq1, fq2, "AAAA", "--out", "-", "--summary", filepath.Join(dir, "s.json")), &out, &errBuf)
	if code != 3 {
		t.Fatalf("want exit 3 for unpaired input, got %d", code)
	}
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()
	fq1, fq2, wl := inputs(t, dir, false)
	cases := [][]string{
		{"barcode", "--fq1", fq1, "-s", "S", "--structure", "B4"},
		argv(fq1, fq2, wl, "--structure", "B4Z4"),
		argv(fq1, fq2, "not-a-file.txt", "--outdir", dir),
		{"nosuchcommand"},
	}
	for _, a := range cases {
		var out, errBuf bytes.Buffer
		if code := app.Run(a, &out, &errBuf); code != 2 {
			t.Errorf("%v: want exit 2, got %d (stderr=%s)", a, code, errBuf.String())
		}
	}
}

func TestCanceledRunExit130(t *testing.T) {
	dir := t.TempDir()
	fq1, fq2, wl := inputs(t, dir, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := app.RunContext(ctx, argv(fq1, fq2, wl, "--out", "-", "--summary", filepath.Join(dir, "s.json")), io.Discard, io.Discard)
	if code != 130 {
		t.Fatalf("expected exit 130 on cancel, got %d", code)
	}
}

func TestVersionAndChemistry(t *testing.T) {
	var out bytes.Buffer
	if code := app.Run([]string{"version"}, &out, io.Discard); code != 0 || !strings.HasPrefix(out.String(), "seekone version ") {
		t.Fatalf("version: code=%d out=%q", code, out.String())
	}
	out.Reset()
	if code := app.Run([]string{"chemistry"}, &out, io.Discard); code != 0 {
		t.Fatalf("chemistry: code=%d", code)
	}
	for _, name := range []string{"SO01V3", "nolinker", "P3CBGB"} {
		if !strings.Contains(out.String(), name+"\t") {
			t.Errorf("chemistry listing lacks %s: %q", name, out.String())
		}
	}
}
