package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalResolvesSymlink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real.txt")
	if err := os.WriteFile(real, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(real, link); err != nil {
		t.Fatal(err)
	}

	if got, want := Canonical(link), Canonical(real); got != want {
		t.Fatalf("symlink and target should canonicalize the same: %q vs %q", got, want)
	}
}

func TestCanonicalFallsBackForMissingPath(t *testing.T) {
	got := Canonical("/this/path/almost-certainly/does-not-exist-cdqt")
	if got == "" {
		t.Fatal("expected a non-empty fallback path")
	}
}
