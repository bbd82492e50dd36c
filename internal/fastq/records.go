package fastq

import (
	"bytes"
	"fmt"
	"io"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

// idRegexp is equivalent to fastx.DefaultIDRegexp. Passing the default makes
// the fastx constructor write a package-level flag, which races when workers
// decode chunks concurrently.
const idRegexp = `^(\S+)\s?`

func init() {
	// Reads may carry any IUPAC letter; correction tolerates what it sees.
	seq.ValidateSeq = false
}

// Record is one decoded FASTQ entry. Slices are owned by the Record.
type Record struct {
	Name []byte // full header line without '@'
	Seq  []byte
	Qual []byte
}

// ID is the header up to the first whitespace.
func (r *Record) ID() []byte {
	if i := bytes.IndexAny(r.Name, " \t"); i >= 0 {
		return r.Name[:i]
	}
	return r.Name
}

// PairedRecords decodes two chunks produced by ReadPairedChunks and calls fn
// for each record pair in order.
func PairedRecords(c1, c2 []byte, fn func(r1, r2 *Record) error) error {
	rd1, err := fastx.NewReaderFromIO(seq.DNAredundant, bytes.NewReader(c1), idRegexp)
	if err != nil {
		return fmt.Errorf("read 1: %w", err)
	}
	defer rd1.Close()
	rd2, err := fastx.NewReaderFromIO(seq.DNAredundant, bytes.NewReader(c2), idRegexp)
	if err != nil {
		return fmt.Errorf("read 2: %w", err)
	}
	defer rd2.Close()

	var a, b Record
	for n := 0; ; n++ {
		e1 := next(rd1, &a)
		e2 := next(rd2, &b)
		if e1 == io.EOF && e2 == io.EOF {
			return nil
		}
		if e1 == io.EOF || e2 == io.EOF {
			return fmt.Errorf("%w: record counts differ after %d records", ErrUnpaired, n)
		}
		if e1 != nil {
			return fmt.Errorf("read 1: %w", e1)
		}
		if e2 != nil {
			return fmt.Errorf("read 2: %w", e2)
		}
		if !SameMate(a.ID(), b.ID()) {
			return fmt.Errorf("%w: %q vs %q", ErrUnpaired, a.ID(), b.ID())
		}
		if err := fn(&a, &b); err != nil {
			return err
		}
	}
}

// next copies the next fastx record into dst, reusing its buffers.
func next(rd *fastx.Reader, dst *Record) error {
	rec, err := rd.Read()
	if err != nil {
		return err
	}
	if len(rec.Seq.Qual) != len(rec.Seq.Seq) {
		return fmt.Errorf("%w: %s: sequence and quality lengths differ (%d != %d)",
			ErrFormat, rec.Name, len(rec.Seq.Seq), len(rec.Seq.Qual))
	}
	dst.Name = append(dst.Name[:0], rec.Name...)
	dst.Seq = append(dst.Seq[:0], rec.Seq.Seq...)
	dst.Qual = append(dst.Qual[:0], rec.Seq.Qual...)
	return nil
}

// SameMate compares read IDs ignoring a trailing /1 or /2 mate suffix.
func SameMate(a, b []byte) bool {
	return bytes.Equal(trimMate(a), trimMate(b))
}

func trimMate(id []byte) []byte {
	if n := len(id); n >= 2 && id[n-2] == '/' && (id[n-1] == '1' || id[n-1] == '2') {
		return id[:n-2]
	}
	return id
}

// WriteRecord writes one 4-line FASTQ record.
func WriteRecord(w io.Writer, name, sequence, qual []byte) error {
	var buf bytes.Buffer
	buf.Grow(len(name) + len(sequence) + len(qual) + 6)
	buf.WriteByte('@')
	buf.Write(name)
	buf.WriteByte('\n')
	buf.Write(sequence)
	buf.WriteString("\n+\n")
	buf.Write(qual)
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
