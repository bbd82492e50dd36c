// internal/correct/correct.go
package correct

import (
	"strings"

	"seekone/internal/whitelist"
)

// Class is the outcome of correcting one observed segment.
type Class int

const (
	Uncorrectable Class = iota
	Unmodified
	IndelCorrected
	MismatchCorrected
)

func (c Class) String() string {
	switch c {
	case Unmodified:
		return "unmodified"
	case MismatchCorrected:
		return "mismatch"
	case IndelCorrected:
		return "indel"
	default:
		return "uncorrectable"
	}
}

// OK reports whether the segment may be used.
func (c Class) OK() bool { return c != Uncorrectable }

// Result of Correct. Shift is added to the nominal segment length to get the
// number of read bases actually consumed.
type Result struct {
	Class     Class
	Shift     int
	Corrected string
}

// Correct classifies observed against t. Exact beats mismatch beats indel.
// An indel hit is accepted only when linker is nil or one of its canonical
// sequences starts with the last observed base followed by next.
func Correct(observed string, t *whitelist.Table, next string, linker *whitelist.Table) Result {
	if _, ok := t.Exact[observed]; ok {
		return Result{Class: Unmodified, Corrected: observed}
	}
	if c, ok := t.Mismatch[observed]; ok {
		return Result{Class: MismatchCorrected, Corrected: c}
	}
	if c, ok := t.Indel[observed]; ok && indelGuard(observed, next, linker) {
		return Result{Class: IndelCorrected, Shift: -1, Corrected: c}
	}
	return Result{Class: Uncorrectable, Corrected: observed}
}

func indelGuard(observed, next string, linker *whitelist.Table) bool {
	if linker == nil {
		return true
	}
	if observed == "" {
		return false
	}
	prefix := observed[len(observed)-1:] + next
	for _, l := range linker.Canonical {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

// Func is a correction closure bound to one segment's tables.
type Func func(observed, next string) Result

// Bind closes Correct over t and an optional linker guard.
func Bind(t *whitelist.Table, linker *whitelist.Table) Func {
	return func(observed, next string) Result {
		return Correct(observed, t, next, linker)
	}
}
