// internal/barcode/process.go
package barcode

import (
	"bytes"
	"io"
	"strings"

	"seekone/internal/adapter"
	"seekone/internal/correct"
	"seekone/internal/fastq"
	"seekone/internal/stats"
	"seekone/internal/structure"
)

// AnchorWindow is how many leading read-1 bases are searched for the anchor.
const AnchorWindow = 7

// ContextBases is how many bases after a segment are passed to its
// correction function.
const ContextBases = 3

// Config of the record processor. Steps come from correct.Prepare and are
// shared read-only by every worker.
type Config struct {
	Steps []correct.Step

	Shift   bool   // search for Pattern at the start of read 1
	Pattern string // anchor, "A" by default

	Adapter   adapter.BackAdapter
	MinLength int // minimum read-2 length after adapter trimming
}

// Processor turns read pairs into renamed read-2 records.
type Processor struct {
	cfg Config
}

func New(cfg Config) *Processor {
	if cfg.Pattern == "" {
		cfg.Pattern = "A"
	}
	if cfg.Adapter.Sequence == "" {
		cfg.Adapter = adapter.PolyA()
	}
	return &Processor{cfg: cfg}
}

// ProcessChunk decodes one paired chunk, writes kept records to out and
// returns the chunk's statistics.
func (p *Processor) ProcessChunk(c1, c2 []byte, out io.Writer) (stats.Delta, error) {
	d := stats.NewDelta()
	var s scratch
	err := fastq.PairedRecords(c1, c2, func(r1, r2 *fastq.Record) error {
		return p.processPair(r1, r2, out, &d, &s)
	})
	return d, err
}

// scratch is reused across the reads of one chunk.
type scratch struct {
	barcode []byte
	bcQual  []byte
	umi     []byte
	umiQual []byte
	olds    []string
	name    []byte
}

func clamp(i, n int) int {
	if i > n {
		return n
	}
	return i
}

func (p *Processor) processPair(r1, r2 *fastq.Record, out io.Writer, d *stats.Delta, s *scratch) error {
	d.Stat[stats.Total]++
	seq, qual := r1.Seq, r1.Qual

	start := 0
	if p.cfg.Shift {
		i := bytes.Index(seq[:clamp(AnchorWindow, len(seq))], []byte(p.cfg.Pattern))
		if i < 0 {
			d.Stat[stats.NoAnchor]++
			return nil
		}
		start = i + 1
	}

	s.barcode, s.bcQual = s.barcode[:0], s.bcQual[:0]
	s.umi, s.umiQual = s.umi[:0], s.umiQual[:0]
	s.olds = s.olds[:0]
	haveUMI := false

	for _, st := range p.cfg.Steps {
		a := clamp(start, len(seq))
		b := clamp(start+st.Length, len(seq))
		obs, q := seq[a:b], qual[a:b]
		value := obs
		shift := 0
		if st.Fn != nil {
			next := seq[b:clamp(b+ContextBases, len(seq))]
			r := st.Fn(string(obs), string(next))
			if !r.Class.OK() {
				d.Stat[st.Kind.String()]++
				return nil
			}
			value = []byte(r.Corrected)
			shift = r.Shift
		}
		switch st.Kind {
		case structure.Barcode:
			s.barcode = append(s.barcode, value...)
			s.bcQual = append(s.bcQual, q...)
			if bytes.Equal(obs, value) {
				s.olds = append(s.olds, "")
			} else {
				s.olds = append(s.olds, string(obs))
			}
		case structure.UMI:
			if !haveUMI {
				s.umi = append(s.umi, value...)
				haveUMI = true
			}
			s.umiQual = append(s.umiQual, q...)
		}
		start += st.Length + shift
	}

	d.Stat[stats.Valid]++

	r2seq, r2qual := r2.Seq, r2.Qual
	if keep, trimmed := p.cfg.Adapter.Trim(r2seq); trimmed {
		r2seq, r2qual = r2seq[:keep], r2qual[:keep]
		if keep < p.cfg.MinLength {
			d.Stat[stats.TooShort]++
			return nil
		}
		d.Stat[stats.Trimmed]++
	}

	s.name = append(s.name[:0], s.barcode...)
	s.name = append(s.name, '_')
	s.name = append(s.name, s.umi...)
	s.name = append(s.name, '_')
	s.name = append(s.name, strings.Join(s.olds, ":")...)
	s.name = append(s.name, '_')
	s.name = append(s.name, r2.Name...)
	if err := fastq.WriteRecord(out, s.name, r2seq, r2qual); err != nil {
		return err
	}

	d.BarcodeGC.Observe(s.barcode)
	d.UMIGC.Observe(s.umi)
	d.R2GC.Observe(r2seq)
	d.BarcodeQ.Observe(s.bcQual)
	d.UMIQ.Observe(s.umiQual)
	d.R2Q.Observe(r2qual)
	return nil
}
