package walk

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/blackwell-systems/cdqt/internal/detect"
	"github.com/blackwell-systems/cdqt/internal/toolkit"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

// TestWalkVisitsEachNodeOnce grounds spec §8.2's determinism/visit-once
// property with a diamond-shaped fake graph: A imports B and C, both of
// which import D. D must appear exactly once in the result.
func TestWalkVisitsEachNodeOnce(t *testing.T) {
	libDir := t.TempDir()
	for _, name := range []string{"libB.so", "libC.so", "libD.so"} {
		touch(t, filepath.Join(libDir, name))
	}

	graph := map[string]NodeInfo{
		filepath.Join(libDir, "libB.so"): {Imports: []string{"libD.so"}},
		filepath.Join(libDir, "libC.so"): {Imports: []string{"libD.so"}},
		filepath.Join(libDir, "libD.so"): {},
	}

	visitCount := map[string]int{}
	parse := func(path string) NodeInfo {
		visitCount[path]++
		return graph[path]
	}

	opts := Options{
		Format:     detect.ELF,
		MainExeDir: libDir,
		SearchDirs: []string{libDir},
		Toolkit:    toolkit.Paths{},
		Parse:      parse,
	}

	subject := NodeInfo{Imports: []string{"libB.so", "libC.so"}}
	result, err := Walk(filepath.Join(libDir, "app"), subject, opts)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	sort.Strings(result)
	if len(result) != 3 {
		t.Fatalf("got %d visited nodes, want 3: %v", len(result), result)
	}
	if visitCount[filepath.Join(libDir, "libD.so")] != 1 {
		t.Fatalf("libD.so should be parsed exactly once, got %d", visitCount[filepath.Join(libDir, "libD.so")])
	}
}

func TestWalkMissingToolkitLibraryIsFatal(t *testing.T) {
	binDir := t.TempDir()
	opts := Options{
		Format:     detect.ELF,
		MainExeDir: binDir,
		SearchDirs: []string{binDir},
		Toolkit:    toolkit.Paths{},
		Parse:      func(string) NodeInfo { return NodeInfo{} },
	}

	subject := NodeInfo{Imports: []string{"libQt6Core.so.6"}}
	_, err := Walk(filepath.Join(binDir, "app"), subject, opts)
	if err == nil {
		t.Fatal("expected fatal error for unresolved toolkit-named dependency")
	}
}

func TestWalkMissingSystemLibraryIsSkipped(t *testing.T) {
	binDir := t.TempDir()
	opts := Options{
		Format:     detect.ELF,
		MainExeDir: binDir,
		SearchDirs: []string{binDir},
		Toolkit:    toolkit.Paths{},
		Parse:      func(string) NodeInfo { return NodeInfo{} },
	}

	subject := NodeInfo{Imports: []string{"libc.so.6"}}
	result, err := Walk(filepath.Join(binDir, "app"), subject, opts)
	if err != nil {
		t.Fatalf("unresolved non-toolkit dependency should not be fatal: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected no resolved libraries, got %v", result)
	}
}

func TestWalkExcludesSubjectItself(t *testing.T) {
	binDir := t.TempDir()
	exe := filepath.Join(binDir, "app")
	touch(t, exe)

	opts := Options{
		Format:     detect.ELF,
		MainExeDir: binDir,
		SearchDirs: []string{binDir},
		Toolkit:    toolkit.Paths{},
		Parse:      func(string) NodeInfo { return NodeInfo{} },
	}

	// A self-referential import (unusual, but should not loop forever
	// or include the subject in the result).
	subject := NodeInfo{Imports: []string{"app"}}
	result, err := Walk(exe, subject, opts)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	for _, r := range result {
		if r == exe {
			t.Fatalf("subject should never appear in its own result: %v", result)
		}
	}
}
