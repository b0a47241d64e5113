// Package policy implements the deploy policy of spec §4.7: a pure
// function of (resolved path, basename, target format, toolkit paths,
// binary directory) deciding whether a resolved library belongs in
// the distribution or should be skipped as a host/system artifact.
package policy

import (
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/detect"
	"github.com/blackwell-systems/cdqt/internal/toolkit"
)

// peExcludedDLLs is the fixed set of well-known Windows system DLLs
// excluded regardless of location.
var peExcludedDLLs = map[string]bool{
	"kernel32.dll": true,
	"user32.dll":   true,
	"gdi32.dll":    true,
	"shell32.dll":  true,
	"ole32.dll":    true,
	"advapi32.dll": true,
	"ws2_32.dll":   true,
	"ntdll.dll":    true,
	"sechost.dll":  true,
	"shlwapi.dll":  true,
	"comdlg32.dll": true,
	"imm32.dll":    true,
	"version.dll":  true,
	"winmm.dll":    true,
	"cfgmgr32.dll": true,
}

// ToolkitNamed reports whether basename matches the toolkit's naming
// convention: case-insensitively contains "qt6" or begins with "qt".
func ToolkitNamed(basename string) bool {
	lower := strings.ToLower(basename)
	return strings.Contains(lower, "qt6") || strings.HasPrefix(lower, "qt")
}

// InPrefix reports whether path starts with any of the toolkit's three
// install roots (libs, bins, prefix).
func InPrefix(path string, tk toolkit.Paths) bool {
	for _, root := range tk.Roots() {
		if hasPathPrefix(path, root) {
			return true
		}
	}
	return false
}

// CoLocated reports whether path's directory is the main executable's
// own directory.
func CoLocated(path, binDir string) bool {
	return filepath.Dir(path) == binDir
}

// Include decides whether resolvedPath should be staged, per the
// per-format rules of spec §4.7. It depends only on its arguments —
// reordering any search-path list that produced resolvedPath does not
// change the outcome.
func Include(format detect.Format, resolvedPath string, tk toolkit.Paths, binDir string) bool {
	basename := filepath.Base(resolvedPath)
	toolkitNamed := ToolkitNamed(basename)
	inPrefix := InPrefix(resolvedPath, tk)
	coLocated := CoLocated(resolvedPath, binDir)

	switch format {
	case detect.ELF:
		if strings.HasPrefix(resolvedPath, "/lib") || strings.HasPrefix(resolvedPath, "/usr/lib") {
			return toolkitNamed || inPrefix
		}
		return toolkitNamed || inPrefix || coLocated

	case detect.PE:
		lower := strings.ToLower(basename)
		if strings.HasPrefix(lower, "api-ms-win-") || strings.HasPrefix(lower, "ext-ms-win-") {
			return false
		}
		if peExcludedDLLs[lower] {
			return false
		}
		if hasPathPrefix(resolvedPath, "/nix/store/") {
			return true
		}
		return toolkitNamed || inPrefix || coLocated

	case detect.MachO:
		if hasPathPrefix(resolvedPath, "/System/Library/Frameworks/") || hasPathPrefix(resolvedPath, "/usr/lib/") {
			return false
		}
		return toolkitNamed || inPrefix || coLocated

	default:
		return false
	}
}

// hasPathPrefix checks a directory-style prefix match: "/lib" is a
// prefix of "/lib" and "/lib/foo.so" but not of "/lib64/foo.so" or
// "/libfoo/bar.so" — the path must lie under that directory tree.
func hasPathPrefix(path, prefix string) bool {
	cleanPrefix := strings.TrimSuffix(prefix, "/")
	if cleanPrefix == "" {
		return false
	}
	if path == cleanPrefix {
		return true
	}
	return strings.HasPrefix(path, cleanPrefix+"/")
}
