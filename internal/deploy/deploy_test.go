package deploy

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/cdqt/internal/depparse"
	"github.com/blackwell-systems/cdqt/internal/detect"
	"github.com/blackwell-systems/cdqt/internal/report"
)

func TestNormalizedOutPerFormat(t *testing.T) {
	cases := []struct {
		format detect.Format
		want   string
	}{
		{detect.PE, filepath.Join("/out")},
		{detect.ELF, filepath.Join("/out", "myapp.AppDir")},
		{detect.MachO, filepath.Join("/out", "myapp.app")},
	}
	for _, c := range cases {
		got := NormalizedOut(c.format, "/out", "/build/myapp")
		if got != c.want {
			t.Errorf("NormalizedOut(%v) = %q, want %q", c.format, got, c.want)
		}
	}
}

func TestPluginDestDirPerFormat(t *testing.T) {
	if got := pluginDestDir(detect.ELF, "/out", "platforms"); got != filepath.Join("/out", "usr", "plugins", "platforms") {
		t.Errorf("got %q", got)
	}
	if got := pluginDestDir(detect.MachO, "/out", "imageformats"); got != filepath.Join("/out", "Contents", "PlugIns", "imageformats") {
		t.Errorf("got %q", got)
	}
}

func TestIsToolkitCoreDLL(t *testing.T) {
	if !isToolkitCoreDLL("/out/Qt6Core.dll") {
		t.Fatal("expected Qt6Core.dll to match")
	}
	if isToolkitCoreDLL("/out/Qt6Widgets.dll") {
		t.Fatal("did not expect Qt6Widgets.dll to match")
	}
}

func TestApplyOverlaysLaterWins(t *testing.T) {
	out := t.TempDir()
	overlay1 := t.TempDir()
	overlay2 := t.TempDir()

	if err := os.WriteFile(filepath.Join(overlay1, "config.ini"), []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(overlay2, "config.ini"), []byte("second"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := ApplyOverlays([]string{overlay1, overlay2}, out); err != nil {
		t.Fatalf("ApplyOverlays: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "config.ini"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Fatalf("got %q, want %q", data, "second")
	}
}

func TestStagePlatformPluginsFallsBackToSecondRoot(t *testing.T) {
	out := t.TempDir()
	emptyRoot := t.TempDir()
	goodRoot := t.TempDir()

	if err := os.MkdirAll(filepath.Join(goodRoot, "platforms"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(goodRoot, "platforms", "qwindows.dll"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(goodRoot, "imageformats"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(goodRoot, "imageformats", "qjpeg.dll"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	staged, err := StagePlatformPlugins(detect.PE, out, []string{emptyRoot, goodRoot})
	if err != nil {
		t.Fatalf("StagePlatformPlugins: %v", err)
	}
	if len(staged) != 2 {
		t.Fatalf("expected 2 staged files from the fallback root, got %v", staged)
	}
	if _, err := os.Stat(filepath.Join(out, "plugins", "platforms", "qwindows.dll")); err != nil {
		t.Fatalf("expected qwindows.dll staged: %v", err)
	}
}

func TestStagePlatformPluginsStopsAtFirstMatch(t *testing.T) {
	out := t.TempDir()
	firstRoot := t.TempDir()
	secondRoot := t.TempDir()

	for _, root := range []string{firstRoot, secondRoot} {
		if err := os.MkdirAll(filepath.Join(root, "platforms"), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(firstRoot, "platforms", "qwindows.dll"), []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(secondRoot, "platforms", "qwindows.dll"), []byte("second"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := StagePlatformPlugins(detect.PE, out, []string{firstRoot, secondRoot}); err != nil {
		t.Fatalf("StagePlatformPlugins: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "plugins", "platforms", "qwindows.dll"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Fatalf("expected the first matching root to win, got %q", data)
	}
}

func TestQt6CorePluginRootsDerivesSiblingPluginsDir(t *testing.T) {
	mingwRoot := t.TempDir()
	binDir := filepath.Join(mingwRoot, "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(mingwRoot, "plugins"), 0755); err != nil {
		t.Fatal(err)
	}
	lib := filepath.Join(binDir, "Qt6Core.dll")
	if err := os.WriteFile(lib, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	roots := qt6CorePluginRoots([]string{lib, filepath.Join(binDir, "Qt6Widgets.dll")})
	if len(roots) != 1 || roots[0] != filepath.Join(mingwRoot, "plugins") {
		t.Fatalf("got %v", roots)
	}
}

func TestStageLibrariesSkipsUnreadableSourceAndContinues(t *testing.T) {
	out := t.TempDir()
	goodSrc := filepath.Join(t.TempDir(), "libgood.so")
	if err := os.WriteFile(goodSrc, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	missingSrc := filepath.Join(t.TempDir(), "libmissing.so")

	var buf bytes.Buffer
	p := report.New(&buf, false)
	summary := report.NewSummary()

	staged, err := stageLibraries(detect.PE, []string{missingSrc, goodSrc}, out, depparse.NewCache(), p, summary)
	if err != nil {
		t.Fatalf("stageLibraries: %v", err)
	}
	if len(staged) != 1 {
		t.Fatalf("expected the readable library to stage despite the missing one, got %v", staged)
	}
	if summary.Warnings != 1 {
		t.Fatalf("expected exactly one warning, got %d", summary.Warnings)
	}
}

func TestStageLibrariesEscalatesWhenEveryLibraryFails(t *testing.T) {
	out := t.TempDir()
	missingSrc := filepath.Join(t.TempDir(), "libmissing.so")

	var buf bytes.Buffer
	p := report.New(&buf, false)
	summary := report.NewSummary()

	_, err := stageLibraries(detect.PE, []string{missingSrc}, out, depparse.NewCache(), p, summary)
	if err == nil {
		t.Fatal("expected a fatal error when every resolved library fails to stage")
	}
}

func TestTotalBytes(t *testing.T) {
	out := t.TempDir()
	if err := os.WriteFile(filepath.Join(out, "a.bin"), make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(out, "b.bin"), make([]byte, 50), 0644); err != nil {
		t.Fatal(err)
	}
	if got := totalBytes(out); got != 150 {
		t.Fatalf("got %d, want 150", got)
	}
}
