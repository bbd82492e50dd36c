// internal/structure/structure.go
package structure

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the segment letter used in a read-1 structure string.
type Kind byte

const (
	Barcode  Kind = 'B'
	Linker   Kind = 'L'
	UMI      Kind = 'U'
	Template Kind = 'T'
	Any      Kind = 'X' // skipped, never corrected
)

func (k Kind) String() string { return string(k) }

// ErrMalformed is returned when a structure string does not match the grammar.
var ErrMalformed = errors.New("malformed structure")

// Segment is one field of read 1.
type Segment struct {
	Kind   Kind
	Length int
}

func (s Segment) String() string { return fmt.Sprintf("%c%d", s.Kind, s.Length) }

func validKind(c byte) bool {
	switch Kind(c) {
	case Barcode, Linker, UMI, Template, Any:
		return true
	}
	return false
}

// Parse decodes strings like "B8L15B8L15B8U12T15". Tokens are kept in the
// order written; adjacent tokens of the same kind are never merged.
func Parse(s string) ([]Segment, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformed)
	}
	var segs []Segment
	i := 0
	for i < len(s) {
		c := s[i]
		if !validKind(c) {
			return nil, fmt.Errorf("%w: %q: unexpected %q at offset %d", ErrMalformed, s, c, i)
		}
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i+1 {
			return nil, fmt.Errorf("%w: %q: missing length after %c at offset %d", ErrMalformed, s, c, i)
		}
		n, err := strconv.Atoi(s[i+1 : j])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %q: length %q must be positive", ErrMalformed, s, s[i+1:j])
		}
		segs = append(segs, Segment{Kind: Kind(c), Length: n})
		i = j
	}
	return segs, nil
}

// Format is the inverse of Parse.
func Format(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.String())
	}
	return b.String()
}

// Count returns how many segments of kind k are present.
func Count(segs []Segment, k Kind) int {
	n := 0
	for _, s := range segs {
		if s.Kind == k {
			n++
		}
	}
	return n
}

// MinReadLength is the number of read-1 bases consumed by segs before any shift.
func MinReadLength(segs []Segment) int {
	n := 0
	for _, s := range segs {
		n += s.Length
	}
	return n
}
