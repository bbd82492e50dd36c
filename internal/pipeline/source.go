package pipeline

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"seekone/internal/fastq"
)

// Source produces raw paired chunks in input order.
type Source func(emit func(c1, c2 []byte) error) error

// FilePair is one read-1/read-2 file pair.
type FilePair struct {
	R1, R2 string
}

// FileSource reads every pair in turn, framing each into chunks of about
// bufSize bytes of read 1.
func FileSource(pairs []FilePair, bufSize int, log logrus.FieldLogger) Source {
	return func(emit func(c1, c2 []byte) error) error {
		for _, p := range pairs {
			if err := readPair(p, bufSize, log, emit); err != nil {
				return err
			}
		}
		return nil
	}
}

func readPair(p FilePair, bufSize int, log logrus.FieldLogger, emit func(c1, c2 []byte) error) error {
	fp, err := fastq.OpenPair(p.R1, p.R2)
	if err != nil {
		return err
	}
	defer fp.Close()
	if log != nil {
		log.WithFields(logrus.Fields{"fq1": p.R1, "fq2": p.R2, "buffer": humanize.IBytes(uint64(bufSize))}).
			Debug("reading pair")
	}
	if err := fastq.ReadPairedChunks(fp.R1, fp.R2, bufSize, emit); err != nil {
		return fmt.Errorf("%s / %s: %w", p.R1, p.R2, err)
	}
	return nil
}
