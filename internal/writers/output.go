package writers

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/shenwei356/xopen"
)

// nopCloser flushes a buffered stdout on Close without closing stdout.
type nopCloser struct{ *bufio.Writer }

func (n nopCloser) Close() error { return n.Flush() }

// Open opens the read-2 output. "-" writes plain FASTQ to stdout; any
// other path is created with its parent directory and compressed according to
// its extension (.gz, .xz, .zst, .bz2).
func Open(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{bufio.NewWriterSize(stdout, 1<<16)}, nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	w, err := xopen.Wopen(path)
	if err != nil {
		return nil, err
	}
	return w, nil
}
