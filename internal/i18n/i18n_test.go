package i18n

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSelectLanguagesExplicit(t *testing.T) {
	got := SelectLanguages([]string{"fr", "de"}, "en_US.UTF-8", "en_US")
	if len(got) != 3 || got[0] != "fr" || got[1] != "de" || got[2] != "en" {
		t.Fatalf("got %v", got)
	}
}

func TestSelectLanguagesFromLocale(t *testing.T) {
	got := SelectLanguages(nil, "de_DE.UTF-8", "en_US")
	want := []string{"de", "en"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSelectLanguagesLcAllTakesFullPrecedenceOverLang(t *testing.T) {
	// LANG parses to "fr", which does not collide with the always-added
	// "en" fallback the way the old masked-bug test case did, so this
	// actually fails if LANG's code leaks into the result alongside
	// LC_ALL's.
	got := SelectLanguages(nil, "de_DE.UTF-8", "fr_FR")
	want := []string{"de", "en"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSelectLanguagesAlwaysIncludesEn(t *testing.T) {
	got := SelectLanguages(nil, "", "")
	if len(got) != 1 || got[0] != "en" {
		t.Fatalf("got %v, want [en]", got)
	}
}

func TestParseLocaleStripsCodesetAndModifier(t *testing.T) {
	if got := parseLocale("de_DE.UTF-8@euro"); got != "de" {
		t.Fatalf("got %q", got)
	}
	if got := parseLocale("C"); got != "" {
		t.Fatalf("expected empty for POSIX default, got %q", got)
	}
}

func TestCatalogs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"app_de.qm", "app_fr.qm", "other.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	got := Catalogs(dir, "de")
	if len(got) != 1 || filepath.Base(got[0]) != "app_de.qm" {
		t.Fatalf("got %v", got)
	}
}

func TestStageFallsBackToVerbatimCopy(t *testing.T) {
	srcDir := t.TempDir()
	catalog := filepath.Join(srcDir, "app_xx.qm")
	if err := os.WriteFile(catalog, []byte("catalog-data"), 0644); err != nil {
		t.Fatal(err)
	}

	destDir := t.TempDir()
	// mergerBin() resolves to "lconvert" by default, which is not on
	// PATH in the test environment, so Stage must fall back to copy.
	if err := Stage("xx", []string{catalog}, destDir); err != nil {
		t.Fatalf("Stage: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "app_xx.qm"))
	if err != nil {
		t.Fatalf("expected verbatim fallback copy: %v", err)
	}
	if string(data) != "catalog-data" {
		t.Fatalf("got %q", data)
	}
}
