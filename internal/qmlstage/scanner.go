// Package qmlstage discovers and stages UI-module (QML) trees: it
// locates module roots, invokes an external structured-output scanner,
// copies each module's source files into the output tree, relocates
// Mach-O native plugin libraries into the bundle's PlugIns directory,
// and seeds the transitive walker from every staged plugin library.
package qmlstage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/executil"
)

// DefaultScannerBin is the helper binary invoked when
// UI-MODULE-SCANNER-BIN is unset.
const DefaultScannerBin = "ui-module-scanner"

// Module is one UI-module entry: an absolute source directory and its
// install-relative subpath under the output tree's UI-module root.
type Module struct {
	SourceDir string
	RelPath   string
}

func scannerBin() string {
	if v := os.Getenv("UI-MODULE-SCANNER-BIN"); v != "" {
		return v
	}
	return DefaultScannerBin
}

// DiscoverRoots implements spec §4.9 step 1: CLI-supplied roots and the
// UI-MODULE-ROOT environment entries take precedence over any
// heuristic; only when both are empty does it fall back to scanning
// cwd and the main executable's directory for UI-module source files.
func DiscoverRoots(cliRoots []string, mainExeDir string, hasModuleSource func(dir string) bool) []string {
	var roots []string
	roots = append(roots, cliRoots...)
	if env := os.Getenv("UI-MODULE-ROOT"); env != "" {
		roots = append(roots, strings.Split(env, string(filepath.ListSeparator))...)
	}

	if len(roots) == 0 {
		if cwd, err := os.Getwd(); err == nil && hasModuleSource(cwd) {
			roots = append(roots, cwd)
		}
		if mainExeDir != "" && hasModuleSource(mainExeDir) {
			roots = append(roots, mainExeDir)
		}
	}

	return dedupSorted(roots)
}

// HasModuleSource walks dir recursively looking for a *.qml file,
// the UI-module source marker spec §4.9 tests roots against.
func HasModuleSource(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	found := false
	_ = filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil || found {
			return nil
		}
		if !fi.IsDir() && strings.EqualFold(filepath.Ext(path), ".qml") {
			found = true
		}
		return nil
	})
	return found
}

// Scan invokes the external UI-module scanner once per root with the
// assembled import-path list, and returns the deduplicated union of
// every module it reports across all roots. qmlInstallRoot is the
// toolkit's install-UI-modules path (toolkit.Paths.QML); when a
// reported module omits relativePath, its RelPath is recomputed by
// stripping that prefix from the source path (or, outside it, taken as
// the base name); a relativePath the scanner emitted is kept as is.
func Scan(roots []string, importPaths []string, qmlInstallRoot string) []Module {
	var all []Module
	seen := map[string]bool{}

	var args []string
	for _, p := range importPaths {
		args = append(args, "-importPath", p)
	}

	for _, root := range roots {
		out, ok := executil.RunOK(nil, scannerBin(), append([]string{"-rootPath", root}, args...)...)
		if !ok || out == "" {
			continue
		}
		for _, m := range parseScannerOutput(out, qmlInstallRoot) {
			if seen[m.SourceDir] {
				continue
			}
			seen[m.SourceDir] = true
			all = append(all, m)
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].SourceDir < all[j].SourceDir })
	return all
}

// parseScannerOutput extracts "path" and "relativePath" string fields
// from each JSON-object-shaped record in the scanner's structured
// output, in the spirit of qmlimportscanner's JSON array of objects.
// It deliberately avoids a full JSON decode: scanner output sometimes
// includes fields this engine does not model, and a permissive
// line-oriented extraction degrades gracefully when that happens.
//
// When a record omits relativePath, it is recomputed by stripping
// qmlInstallRoot from the source path when that's a prefix, and only
// falls back to the basename when it is not.
func parseScannerOutput(out, qmlInstallRoot string) []Module {
	var modules []Module
	var current Module
	inObject := false

	for _, line := range executil.Lines(out) {
		if strings.Contains(line, "{") {
			inObject = true
			current = Module{}
		}
		if inObject {
			if v, ok := extractJSONString(line, "path"); ok {
				current.SourceDir = v
			}
			if v, ok := extractJSONString(line, "relativePath"); ok {
				current.RelPath = v
			}
		}
		if strings.Contains(line, "}") && inObject {
			inObject = false
			if current.SourceDir != "" {
				if current.RelPath == "" {
					current.RelPath = relPathFromInstallRoot(current.SourceDir, qmlInstallRoot)
				}
				modules = append(modules, current)
			}
		}
	}
	return modules
}

// relPathFromInstallRoot strips qmlInstallRoot from sourceDir when
// it's a prefix, and falls back to sourceDir's basename otherwise.
func relPathFromInstallRoot(sourceDir, qmlInstallRoot string) string {
	if qmlInstallRoot != "" && strings.HasPrefix(sourceDir, qmlInstallRoot) {
		rel := strings.TrimPrefix(sourceDir, qmlInstallRoot)
		rel = strings.TrimLeft(rel, `/\`)
		if rel != "" {
			return rel
		}
	}
	return filepath.Base(sourceDir)
}

// extractJSONString pulls the quoted value of a "key": "value" pair
// out of one line of scanner output.
func extractJSONString(line, key string) (string, bool) {
	marker := `"` + key + `"`
	idx := strings.Index(line, marker)
	if idx < 0 {
		return "", false
	}
	rest := line[idx+len(marker):]
	q1 := strings.Index(rest, `"`)
	if q1 < 0 {
		return "", false
	}
	rest = rest[q1+1:]
	q2 := strings.Index(rest, `"`)
	if q2 < 0 {
		return "", false
	}
	return rest[:q2], true
}

func dedupSorted(items []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}
