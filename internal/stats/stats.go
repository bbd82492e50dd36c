// internal/stats/stats.go
package stats

// Counter names used in Delta.Stat besides the per-kind failure counters,
// which are keyed by the segment letter ("B", "L", ...).
const (
	Total    = "total"
	Valid    = "valid"
	NoAnchor = "no_anchor"
	Trimmed  = "trimmed"
	TooShort = "too_short"
)

// PosSym keys a per-position distribution: a base letter or a quality
// character observed at position Pos.
type PosSym struct {
	Pos int
	Sym byte
}

// Dist counts symbols per position.
type Dist map[PosSym]int64

// Observe counts every symbol of s at its offset.
func (d Dist) Observe(s []byte) {
	for i, c := range s {
		d[PosSym{i, c}]++
	}
}

func (d Dist) add(o Dist) {
	for k, v := range o {
		d[k] += v
	}
}

// Delta is what one chunk contributes to the run summary.
type Delta struct {
	Stat map[string]int64

	BarcodeGC, UMIGC, R2GC Dist
	BarcodeQ, UMIQ, R2Q    Dist
}

func NewDelta() Delta {
	return Delta{
		Stat:      make(map[string]int64),
		BarcodeGC: make(Dist),
		UMIGC:     make(Dist),
		R2GC:      make(Dist),
		BarcodeQ:  make(Dist),
		UMIQ:      make(Dist),
		R2Q:       make(Dist),
	}
}

// Add folds o into d pointwise.
func (d *Delta) Add(o Delta) {
	if d.Stat == nil {
		*d = NewDelta()
	}
	for k, v := range o.Stat {
		d.Stat[k] += v
	}
	d.BarcodeGC.add(o.BarcodeGC)
	d.UMIGC.add(o.UMIGC)
	d.R2GC.add(o.R2GC)
	d.BarcodeQ.add(o.BarcodeQ)
	d.UMIQ.add(o.UMIQ)
	d.R2Q.add(o.R2Q)
}

// Aggregator owns the running total. Only the goroutine that receives
// deltas may call Update.
type Aggregator struct {
	total  Delta
	chunks int
}

// Update adopts the first delta as the running total and adds every later
// one to it. The aggregator takes ownership of d.
func (a *Aggregator) Update(d Delta) {
	a.chunks++
	if a.total.Stat == nil {
		a.total = d
		if a.total.Stat == nil {
			a.total = NewDelta()
		}
		a.total.fill()
		return
	}
	a.total.Add(d)
}

func (d *Delta) fill() {
	for _, p := range []*Dist{&d.BarcodeGC, &d.UMIGC, &d.R2GC, &d.BarcodeQ, &d.UMIQ, &d.R2Q} {
		if *p == nil {
			*p = make(Dist)
		}
	}
}

// Chunks is the number of deltas merged so far.
func (a *Aggregator) Chunks() int { return a.chunks }

// Count returns one scalar counter of the running total.
func (a *Aggregator) Count(name string) int64 { return a.total.Stat[name] }
