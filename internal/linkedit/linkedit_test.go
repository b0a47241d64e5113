package linkedit

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFrameworkVersionedName(t *testing.T) {
	bundleRoot := "/out/App.app"
	binPath := filepath.Join(bundleRoot, "Contents", "Frameworks", "QtCore.framework", "Versions", "A", "QtCore")
	got := FrameworkVersionedName(binPath, bundleRoot)
	want := "@rpath/QtCore.framework/Versions/A/QtCore"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFrameworkVersionedNameDefaultsToA(t *testing.T) {
	bundleRoot := "/out/App.app"
	binPath := filepath.Join(bundleRoot, "Contents", "Frameworks", "QtCore.framework", "QtCore")
	got := FrameworkVersionedName(binPath, bundleRoot)
	if got != "@rpath/QtCore.framework/Versions/A/QtCore" {
		t.Fatalf("got %q", got)
	}
}

func TestFindFrameworkBinaryViaCurrent(t *testing.T) {
	root := t.TempDir()
	fw := filepath.Join(root, "QtCore.framework")
	current := filepath.Join(fw, "Versions", "Current")
	if err := os.MkdirAll(current, 0755); err != nil {
		t.Fatal(err)
	}
	binPath := filepath.Join(current, "QtCore")
	if err := os.WriteFile(binPath, []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}

	got, ok := FindFrameworkBinary(fw)
	if !ok || got != binPath {
		t.Fatalf("got (%q, %v), want (%q, true)", got, ok, binPath)
	}
}

func TestFindFrameworkBinaryScansVersionLetters(t *testing.T) {
	root := t.TempDir()
	fw := filepath.Join(root, "QtCore.framework")
	verA := filepath.Join(fw, "Versions", "A")
	if err := os.MkdirAll(verA, 0755); err != nil {
		t.Fatal(err)
	}
	binPath := filepath.Join(verA, "QtCore")
	if err := os.WriteFile(binPath, []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}

	got, ok := FindFrameworkBinary(fw)
	if !ok || got != binPath {
		t.Fatalf("got (%q, %v)", got, ok)
	}
}

func TestInFrameworksDir(t *testing.T) {
	bundleRoot := "/out/App.app"
	if !InFrameworksDir(filepath.Join(bundleRoot, "Contents", "Frameworks", "QtCore.framework", "QtCore"), bundleRoot) {
		t.Fatal("expected path inside Frameworks to match")
	}
	if InFrameworksDir(filepath.Join(bundleRoot, "Contents", "MacOS", "app"), bundleRoot) {
		t.Fatal("expected MacOS path not to match")
	}
}

func TestSetRunpathMissingTool(t *testing.T) {
	err := SetRunpath("/does/not/matter", MainExeRunpath)
	if err == nil {
		t.Fatal("expected warning when patchelf is not on PATH")
	}
}

func TestEnumerateBundleBinaries(t *testing.T) {
	root := t.TempDir()
	macOS := filepath.Join(root, "Contents", "MacOS")
	plugins := filepath.Join(root, "Contents", "PlugIns")
	if err := os.MkdirAll(macOS, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(plugins, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(macOS, "app"), []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(plugins, "libqcocoa.dylib"), []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}

	bins := EnumerateBundleBinaries(root)
	if len(bins) != 2 {
		t.Fatalf("got %d binaries, want 2: %v", len(bins), bins)
	}
}
