// Package adapter locates 3' adapters (poly-A tails) in read 2.
package adapter

import "strings"

// DefaultPolyA is the poly-A adapter trimmed from read 2.
var DefaultPolyA = strings.Repeat("A", 15)

// BackAdapter matches an adapter anchored anywhere in the read and running
// off its 3' end. Only substitutions are counted as errors.
type BackAdapter struct {
	Sequence     string
	MaxErrorRate float64
	MinOverlap   int
}

// PolyA returns the default poly-A back adapter.
func PolyA() BackAdapter {
	return BackAdapter{Sequence: DefaultPolyA, MaxErrorRate: 0.1, MinOverlap: 3}
}

// Match returns the start of the best adapter occurrence in read. The best
// candidate has the most matching bases, then the fewest mismatches, then
// the leftmost start.
func (a BackAdapter) Match(read []byte) (int, bool) {
	minOv := a.MinOverlap
	if minOv < 1 {
		minOv = 1
	}
	if len(a.Sequence) < minOv {
		minOv = len(a.Sequence)
	}
	best, bestMatches, bestMM := -1, 0, 0
	for i := 0; i+minOv <= len(read); i++ {
		l := len(read) - i
		if l > len(a.Sequence) {
			l = len(a.Sequence)
		}
		if l < bestMatches || (l == bestMatches && bestMM == 0) {
			break // no shorter candidate can win
		}
		allowed := int(float64(l) * a.MaxErrorRate)
		mm := 0
		for j := 0; j < l && mm <= allowed; j++ {
			if !baseEq(read[i+j], a.Sequence[j]) {
				mm++
			}
		}
		if mm > allowed {
			continue
		}
		if m := l - mm; m > bestMatches || (m == bestMatches && mm < bestMM) {
			best, bestMatches, bestMM = i, m, mm
		}
	}
	return best, best >= 0
}

// Trim returns the number of bases to keep.
func (a BackAdapter) Trim(read []byte) (keep int, trimmed bool) {
	if i, ok := a.Match(read); ok {
		return i, true
	}
	return len(read), false
}

func baseEq(r, a byte) bool {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	return r == a
}
