package correct

import (
	"fmt"

	"seekone/internal/structure"
	"seekone/internal/whitelist"
)

// Step pairs a segment with its correction function. Fn is nil for
// pass-through segments.
type Step struct {
	structure.Segment
	Fn Func

	Table *whitelist.Table // nil when Fn is nil
}

// Options selects whitelists and budgets for Prepare.
type Options struct {
	Barcodes []string // per barcode segment; index 0 is the fallback
	Linkers  []string // per linker segment; index 0 is the fallback
	B, L     whitelist.Budget
}

func pick(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return list[0]
}

// Prepare builds one Step per segment. Barcode segments are corrected when
// at least one barcode whitelist is given, linker segments likewise. A
// barcode directly followed by a corrected linker is guarded by that
// linker's table.
func Prepare(segs []structure.Segment, o Options, cache *whitelist.Cache) ([]Step, error) {
	steps := make([]Step, len(segs))
	bi, li := 0, 0
	for i, seg := range segs {
		steps[i].Segment = seg
		switch seg.Kind {
		case structure.Barcode:
			if len(o.Barcodes) > 0 {
				t, err := cache.Get(pick(o.Barcodes, bi), o.B)
				if err != nil {
					return nil, fmt.Errorf("barcode segment %d: %w", bi, err)
				}
				var guard *whitelist.Table
				if i+1 < len(segs) && segs[i+1].Kind == structure.Linker && len(o.Linkers) > 0 {
					guard, err = cache.Get(pick(o.Linkers, li), o.L)
					if err != nil {
						return nil, fmt.Errorf("linker segment %d: %w", li, err)
					}
				}
				steps[i].Table = t
				steps[i].Fn = Bind(t, guard)
			}
			bi++
		case structure.Linker:
			if len(o.Linkers) > 0 {
				t, err := cache.Get(pick(o.Linkers, li), o.L)
				if err != nil {
					return nil, fmt.Errorf("linker segment %d: %w", li, err)
				}
				steps[i].Table = t
				steps[i].Fn = Bind(t, nil)
			}
			li++
		}
	}
	return steps, nil
}
