package cmdutil

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"seekone/internal/pipeline"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		quiet, verbose bool
		want           logrus.Level
	}{
		{false, false, logrus.InfoLevel},
		{true, false, logrus.WarnLevel},
		{false, true, logrus.DebugLevel},
		{true, true, logrus.DebugLevel},
	}
	for _, c := range cases {
		if got := NewLogger(io.Discard, c.quiet, c.verbose).GetLevel(); got != c.want {
			t.Errorf("quiet=%v verbose=%v: level %v, want %v", c.quiet, c.verbose, got, c.want)
		}
	}
}

func TestWarnf(t *testing.T) {
	var b bytes.Buffer
	Warnf(&b, false, "x=%d", 1)
	Warnf(&b, true, "hidden")
	if b.String() != "WARN: x=1\n" {
		t.Fatalf("got %q", b.String())
	}
}

func TestRunStreamMergesEveryChunk(t *testing.T) {
	src := func(emit func(c1, c2 []byte) error) error {
		for _, s := range []string{"a\n", "bb\n", "ccc\n"} {
			if err := emit([]byte(s), nil); err != nil {
				return err
			}
		}
		return nil
	}
	fn := func(c1, _ []byte, out io.Writer) (int64, error) {
		_, err := out.Write(c1)
		return int64(len(c1)), err
	}
	var out bytes.Buffer
	var sum, chunks int64
	log := logrus.New()
	log.SetOutput(io.Discard)
	var pr *Progress // disabled bar is a no-op
	err := RunStream[int64](context.Background(), pipeline.Config{Workers: 2, Log: log},
		src, fn, &out, func(s int64) int64 { chunks++; sum += s; return s }, pr)
	if err != nil {
		t.Fatal(err)
	}
	if chunks != 3 || sum != 9 || out.String() != "a\nbb\nccc\n" {
		t.Fatalf("chunks=%d sum=%d out=%q", chunks, sum, out.String())
	}
	if NewProgress(io.Discard, false) != nil {
		t.Fatal("disabled progress must be nil")
	}
}
