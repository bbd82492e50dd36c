package cmdutil

import (
	"io"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress is a spinner-style counter of processed chunks and reads. A nil
// *Progress is a no-op.
type Progress struct {
	p     *mpb.Progress
	bar   *mpb.Bar
	reads *atomic.Int64
}

// NewProgress returns nil when enabled is false.
func NewProgress(dst io.Writer, enabled bool) *Progress {
	if !enabled {
		return nil
	}
	reads := new(atomic.Int64)
	p := mpb.New(mpb.WithWidth(40), mpb.WithOutput(dst))
	bar := p.AddBar(0,
		mpb.PrependDecorators(
			decor.Name("processed chunks: ", decor.WC{W: len("processed chunks: "), C: decor.DindentRight}),
			decor.CurrentNoUnit("%d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string { return "reads: " + humanize.Comma(reads.Load()) }),
			decor.Name(" "),
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO), ". done"),
		),
	)
	return &Progress{p: p, bar: bar, reads: reads}
}

// Chunk records one merged chunk holding n reads.
func (pr *Progress) Chunk(n int64) {
	if pr == nil {
		return
	}
	pr.reads.Add(n)
	pr.bar.Increment()
}

// Done completes the bar and waits for the final render.
func (pr *Progress) Done() {
	if pr == nil {
		return
	}
	pr.bar.SetTotal(-1, true)
	pr.p.Wait()
}
