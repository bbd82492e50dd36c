// internal/fastq/chunks.go
package fastq

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shenwei356/xopen"
)

var (
	// ErrFormat reports a record that is not in 4-line FASTQ layout.
	ErrFormat = errors.New("fastq: malformed record")
	// ErrUnpaired reports paired files whose records do not line up.
	ErrUnpaired = errors.New("fastq: reads are improperly paired")
)

// appendLine appends one line (including '\n') from br to dst. A final line
// without newline gets one. It returns io.EOF only when nothing was read.
func appendLine(dst []byte, br *bufio.Reader) ([]byte, error) {
	start := len(dst)
	for {
		frag, err := br.ReadSlice('\n')
		dst = append(dst, frag...)
		switch {
		case err == nil:
			return dst, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err == io.EOF:
			if len(dst) == start {
				return dst, io.EOF
			}
			return append(dst, '\n'), nil
		default:
			return dst, err
		}
	}
}

// appendRecord appends one whole record. ok is false at a clean EOF.
func appendRecord(dst []byte, br *bufio.Reader) (out []byte, ok bool, err error) {
	start := len(dst)
	for i := 0; i < 4; i++ {
		dst, err = appendLine(dst, br)
		if err == io.EOF {
			if i == 0 {
				return dst, false, nil
			}
			return dst, false, fmt.Errorf("%w: truncated record", ErrFormat)
		}
		if err != nil {
			return dst, false, err
		}
		if i == 0 && dst[start] != '@' {
			if dst[start] == '\n' {
				// tolerate blank lines between records
				dst = dst[:start]
				i--
				continue
			}
			return dst, false, fmt.Errorf("%w: header does not start with '@'", ErrFormat)
		}
	}
	return dst, true, nil
}

// ReadPairedChunks frames r1 into chunks of whole records of at least
// bufSize bytes (the last one may be shorter) and takes the same number of
// records from r2 for each chunk. emit owns the slices it receives.
func ReadPairedChunks(r1, r2 io.Reader, bufSize int, emit func(c1, c2 []byte) error) error {
	if bufSize <= 0 {
		bufSize = 1 << 20
	}
	br1 := bufio.NewReaderSize(r1, 1<<16)
	br2 := bufio.NewReaderSize(r2, 1<<16)
	for {
		c1 := make([]byte, 0, bufSize+bufSize/8)
		n := 0
		for len(c1) < bufSize {
			var ok bool
			var err error
			c1, ok, err = appendRecord(c1, br1)
			if err != nil {
				return fmt.Errorf("read 1: %w", err)
			}
			if !ok {
				break
			}
			n++
		}
		if n == 0 {
			_, ok, err := appendRecord(nil, br2)
			if err != nil {
				return fmt.Errorf("read 2: %w", err)
			}
			if ok {
				return fmt.Errorf("%w: read 2 has more records than read 1", ErrUnpaired)
			}
			return nil
		}
		c2 := make([]byte, 0, len(c1)+len(c1)/4)
		for i := 0; i < n; i++ {
			var ok bool
			var err error
			c2, ok, err = appendRecord(c2, br2)
			if err != nil {
				return fmt.Errorf("read 2: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w: read 2 has fewer records than read 1", ErrUnpaired)
			}
		}
		if err := emit(c1, c2); err != nil {
			return err
		}
	}
}

// Pair is an opened pair of input files.
type Pair struct {
	R1, R2  io.Reader
	closers []io.Closer
}

func (p *Pair) Close() error {
	var err error
	for _, c := range p.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// OpenPair opens both ends of a read pair. Plain, gzip and the other formats
// understood by xopen are accepted; empty files yield no records.
func OpenPair(path1, path2 string) (*Pair, error) {
	p := &Pair{}
	for i, path := range []string{path1, path2} {
		r, c, err := openInput(path)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		if c != nil {
			p.closers = append(p.closers, c)
		}
		if i == 0 {
			p.R1 = r
		} else {
			p.R2 = r
		}
	}
	return p, nil
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }

func openInput(path string) (io.Reader, io.Closer, error) {
	if path != "-" {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, nil, err
		}
		if fi.Size() == 0 {
			return emptyReader{}, nil, nil
		}
	}
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return fh, fh, nil
}
