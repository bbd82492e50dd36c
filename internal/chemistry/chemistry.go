// internal/chemistry/chemistry.go
package chemistry

import (
	"fmt"
	"path/filepath"
	"sort"

	"seekone/internal/whitelist"
)

// Preset is a named read-1 layout with its whitelists and error budgets.
// Whitelist entries are file names relative to the whitelist directory.
type Preset struct {
	Name      string
	Shift     bool
	Pattern   string
	Structure string
	Barcodes  []string
	Linkers   []string
	B, L      whitelist.Budget
}

var presets = map[string]Preset{
	"SO01V3": {
		Name:      "SO01V3",
		Shift:     true,
		Pattern:   "A",
		Structure: "B8L8B8L10B8U8",
		Barcodes:  []string{"SO01V3/seekgene.txt"},
		Linkers:   []string{"SO01V3/Linker1.txt", "SO01V3/Linker2.txt"},
		B:         whitelist.Budget{Substitutions: true, Indels: true},
		L:         whitelist.Budget{Substitutions: true, Indels: true},
	},
	"nolinker": {
		Name:      "nolinker",
		Shift:     true,
		Pattern:   "A",
		Structure: "B8X8B8X10B8U8",
		Barcodes:  []string{"SO01V3/seekgene.txt"},
		B:         whitelist.Budget{Substitutions: true, Indels: true},
	},
	"P3CBGB": {
		Name:      "P3CBGB",
		Pattern:   "A",
		Structure: "B17U12",
		Barcodes:  []string{"P3CBGB/P3CB.barcode.txt"},
	},
}

// Lookup returns the preset called name with whitelist paths joined to dir.
func Lookup(name, dir string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown chemistry %q (known: %v)", name, Names())
	}
	p.Barcodes = resolve(p.Barcodes, dir)
	p.Linkers = resolve(p.Linkers, dir)
	return p, nil
}

func resolve(files []string, dir string) []string {
	if len(files) == 0 {
		return nil
	}
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Join(dir, filepath.FromSlash(f))
	}
	return out
}

// Names lists the known presets, sorted.
func Names() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
