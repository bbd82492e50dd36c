package cmdutil

import (
	"context"
	"io"

	"seekone/internal/pipeline"
)

// RunStream runs the shared pipeline and hands every chunk's statistics to
// merge, which returns the chunk's read count for the progress bar.
func RunStream[S any](
	ctx context.Context,
	cfg pipeline.Config,
	src pipeline.Source,
	fn pipeline.Func[S],
	out io.Writer,
	merge func(S) int64,
	pr *Progress,
) error {
	err := pipeline.Run(ctx, cfg, src, fn, out, func(_ int, s S) {
		pr.Chunk(merge(s))
	})
	pr.Done()
	return err
}
