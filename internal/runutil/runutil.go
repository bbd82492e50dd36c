// internal/runutil/runutil.go
package runutil

import (
	"fmt"
	"math"
	"runtime"

	"github.com/dustin/go-humanize"
)

// DefaultBufferSize matches the per-file chunk size of the step-1 reader.
const DefaultBufferSize = 400 * 1024 * 1024

// EffectiveWorkers maps the --core value to a worker count: 0 means all CPUs.
func EffectiveWorkers(core int) int {
	if core <= 0 {
		return runtime.NumCPU()
	}
	return core
}

// ParseBufferSize accepts plain byte counts or human sizes ("64KiB", "400MB").
func ParseBufferSize(s string) (int, error) {
	if s == "" {
		return DefaultBufferSize, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --buffer-size %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid --buffer-size %q: must be > 0", s)
	}
	if n > 1<<40 || n > uint64(math.MaxInt) {
		return 0, fmt.Errorf("invalid --buffer-size %q: too large", s)
	}
	return int(n), nil
}
