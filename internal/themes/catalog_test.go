package themes

import "testing"

func TestDefaultKeyAlwaysResolves(t *testing.T) {
	theme, ok := Resolve(DefaultKey)
	if !ok {
		t.Fatalf("default key %q must resolve", DefaultKey)
	}
	if theme.Key != DefaultKey {
		t.Fatalf("resolved theme key mismatch: %q", theme.Key)
	}
	if theme.Style.Background == "" {
		t.Fatalf("default theme must carry a complete style bundle")
	}
}

func TestResolveUnknownKeyReportsMissing(t *testing.T) {
	if _, ok := Resolve("vaporwave"); ok {
		t.Fatalf("unknown key should not resolve")
	}
	if _, ok := Resolve(""); ok {
		t.Fatalf("empty key should not resolve")
	}
}

func TestAllReturnsEntriesInStableOrder(t *testing.T) {
	first := All()
	second := All()
	if len(first) != len(catalog) {
		t.Fatalf("expected %d entries, got %d", len(catalog), len(first))
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Fatalf("catalog order not stable at index %d", i)
		}
	}
	if first[0].Key != DefaultKey {
		t.Fatalf("expected default theme first, got %q", first[0].Key)
	}
}

func TestCatalogContainsFreeAndGatedThemes(t *testing.T) {
	freeCount := 0
	for _, theme := range All() {
		if theme.Free {
			freeCount++
		}
		if theme.Name == "" || theme.Style.ButtonText == "" {
			t.Fatalf("theme %q is missing display attributes", theme.Key)
		}
	}
	if freeCount == 0 || freeCount == len(catalog) {
		t.Fatalf("catalog must mix free and gated themes, got %d free", freeCount)
	}
	if def := Default(); !def.Free {
		t.Fatalf("default theme must be free")
	}
}
