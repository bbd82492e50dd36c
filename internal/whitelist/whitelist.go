// internal/whitelist/whitelist.go
package whitelist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shenwei356/xopen"
	"github.com/sirupsen/logrus"
)

// Bases is the alphabet variants are generated over.
const Bases = "ATCG"

// ErrInvalidLiteral is returned when a whitelist path cannot be opened and
// the string is not usable as a literal sequence either.
var ErrInvalidLiteral = errors.New("whitelist is neither a readable file nor a literal sequence")

// Budget is the error budget of one segment kind.
type Budget struct {
	Substitutions bool
	Indels        bool
}

func (b Budget) String() string { return fmt.Sprintf("%d,%d", btoi(b.Substitutions), btoi(b.Indels)) }

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Table holds the lookup maps built from one whitelist. It is read-only
// after Build returns.
type Table struct {
	Source    string
	Literal   bool     // built from the source string itself, not a file
	Canonical []string // whitelist order, duplicates removed

	Exact    map[string]string
	Mismatch map[string]string
	Indel    map[string]string

	// Collisions counts variants that were already mapped to a different
	// canonical sequence when re-inserted. The later insert wins.
	Collisions int
}

// Build reads a whitelist file (plain or compressed) and derives the variant
// tables requested by budget. Blank lines and lines starting with '#' are
// skipped. When src cannot be opened, it is used as a single literal
// sequence.
func Build(src string, budget Budget, log logrus.FieldLogger) (*Table, error) {
	t := &Table{
		Source:   src,
		Exact:    make(map[string]string),
		Mismatch: make(map[string]string),
		Indel:    make(map[string]string),
	}

	seqs, err := readFile(src)
	switch {
	case err == nil:
	case errors.Is(err, errUnopenable):
		if !isLiteral(src) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLiteral, src)
		}
		if log != nil {
			log.WithField("whitelist", src).Warn("whitelist file cannot be opened; using the string itself as a one-entry whitelist")
		}
		t.Literal = true
		seqs = []string{strings.ToUpper(src)}
	default:
		return nil, err
	}

	for _, s := range seqs {
		t.add(s, budget)
	}
	if log != nil && t.Collisions > 0 {
		log.WithFields(logrus.Fields{"whitelist": src, "collisions": t.Collisions}).
			Debug("variant collisions resolved by last insert")
	}
	return t, nil
}

func (t *Table) add(s string, budget Budget) {
	if _, dup := t.Exact[s]; !dup {
		t.Canonical = append(t.Canonical, s)
	}
	t.Exact[s] = s
	if budget.Indels {
		forEachIndel(s, func(v string) { t.put(t.Indel, v, s) })
	}
	if budget.Substitutions {
		forEachMismatch(s, func(v string) { t.put(t.Mismatch, v, s) })
	}
}

func (t *Table) put(m map[string]string, variant, canonical string) {
	if prev, ok := m[variant]; ok && prev != canonical {
		t.Collisions++
	}
	m[variant] = canonical
}

// forEachMismatch yields every single-base substitution of s.
func forEachMismatch(s string, fn func(string)) {
	b := []byte(s)
	for i := range b {
		orig := b[i]
		for j := 0; j < len(Bases); j++ {
			if Bases[j] == orig {
				continue
			}
			b[i] = Bases[j]
			fn(string(b))
		}
		b[i] = orig
	}
}

// forEachIndel yields s with one base deleted and one base appended at the
// end, skipping variants equal to s.
func forEachIndel(s string, fn func(string)) {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		buf = append(buf[:0], s[:i]...)
		buf = append(buf, s[i+1:]...)
		buf = append(buf, 0)
		for j := 0; j < len(Bases); j++ {
			buf[len(buf)-1] = Bases[j]
			if v := string(buf); v != s {
				fn(v)
			}
		}
	}
}

var errUnopenable = errors.New("cannot open")

func readFile(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return nil, errUnopenable
	}
	if fi.Size() == 0 {
		return nil, nil
	}
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, errUnopenable
	}
	defer fh.Close()

	var seqs []string
	br := bufio.NewReader(fh)
	for {
		line, err := br.ReadString('\n')
		if s := strings.TrimSpace(line); s != "" && s[0] != '#' {
			seqs = append(seqs, strings.ToUpper(s))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read whitelist %s: %w", path, err)
		}
	}
	return seqs, nil
}

func isLiteral(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		default:
			return false
		}
	}
	return true
}
