package chemistry

import (
	"path/filepath"
	"testing"

	"seekone/internal/structure"
)

func TestLookupResolvesPaths(t *testing.T) {
	p, err := Lookup("SO01V3", "/data/wl")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.Barcodes[0] != filepath.Join("/data/wl", "SO01V3", "seekgene.txt") || len(p.Linkers) != 2 {
		t.Fatalf("paths: %v %v", p.Barcodes, p.Linkers)
	}
	if !p.Shift || !p.B.Indels || !p.L.Substitutions {
		t.Fatalf("flags: %+v", p)
	}
}

func TestPresetsParse(t *testing.T) {
	for _, n := range Names() {
		p, err := Lookup(n, "")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := structure.Parse(p.Structure); err != nil {
			t.Fatalf("%s: %v", n, err)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("nope", ""); err == nil {
		t.Fatalf("expected error")
	}
}
