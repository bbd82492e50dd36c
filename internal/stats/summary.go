package stats

import "seekone/internal/jsonutil"

// GCBases are the bases reported in base-composition arrays, in order.
const GCBases = "ATCGN"

// Phred is the quality character offset.
const Phred = 33

// Summary is the serialized run summary.
type Summary struct {
	Version string           `json:"__version__"`
	Stat    map[string]int64 `json:"stat"`

	BarcodeGC map[string][]int64 `json:"barcode_gc"`
	UMIGC     map[string][]int64 `json:"umi_gc"`
	R2GC      map[string][]int64 `json:"r2_gc"`

	// indexed by position, then by quality value
	BarcodeQ [][]int64 `json:"barcode_q"`
	UMIQ     [][]int64 `json:"umi_q"`
	R2Q      [][]int64 `json:"r2_q"`
}

// Summary materializes the running total into dense arrays.
func (a *Aggregator) Summary(version string) Summary {
	t := a.total
	s := Summary{
		Version:   version,
		Stat:      make(map[string]int64, len(t.Stat)),
		BarcodeGC: denseGC(t.BarcodeGC),
		UMIGC:     denseGC(t.UMIGC),
		R2GC:      denseGC(t.R2GC),
		BarcodeQ:  denseQ(t.BarcodeQ),
		UMIQ:      denseQ(t.UMIQ),
		R2Q:       denseQ(t.R2Q),
	}
	for k, v := range t.Stat {
		s.Stat[k] = v
	}
	return s
}

// SaveFile writes the summary to path.
func (a *Aggregator) SaveFile(path, version string) error {
	return jsonutil.WriteFile(path, a.Summary(version))
}

func maxPos(d Dist) int {
	m := -1
	for k := range d {
		if k.Pos > m {
			m = k.Pos
		}
	}
	return m
}

func denseGC(d Dist) map[string][]int64 {
	n := maxPos(d) + 1
	out := make(map[string][]int64, len(GCBases))
	for i := 0; i < len(GCBases); i++ {
		b := GCBases[i]
		col := make([]int64, n)
		for p := 0; p < n; p++ {
			col[p] = d[PosSym{p, b}]
		}
		out[string(b)] = col
	}
	return out
}

func denseQ(d Dist) [][]int64 {
	n := maxPos(d) + 1
	qmax := -1
	for k := range d {
		if q := int(k.Sym) - Phred; q > qmax {
			qmax = q
		}
	}
	out := make([][]int64, n)
	for p := 0; p < n; p++ {
		row := make([]int64, qmax+1)
		for q := 0; q <= qmax; q++ {
			row[q] = d[PosSym{p, byte(q + Phred)}]
		}
		out[p] = row
	}
	return out
}
