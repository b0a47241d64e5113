package depparse

import (
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/executil"
	"github.com/blackwell-systems/cdqt/internal/pathutil"
)

// ParseMachO invokes `otool -L` on path. The first non-header line is
// the subject's own install-id (empty for a main executable); every
// subsequent line's leading token, up to the first "(", is an import
// reference. Cached by canonical path.
func ParseMachO(path string, cache *Cache) ParseResult {
	key := pathutil.Canonical(path)
	if cached, ok := cache.GetResult(key); ok {
		return cached
	}

	out, ok := executil.RunOK(nil, "otool", "-L", path)
	result := ParseResult{}
	if ok {
		result = parseOtoolL(out)
	}

	cache.PutResult(key, result)
	return result
}

// parseOtoolL parses `otool -L` output. The conventional first line
// echoes the queried path itself (a header, not a dependency entry);
// line two onward are "\t<path> (compatibility version ...)" entries.
// For a dylib the first of those is its own install-name, recognised
// by sharing the header path's base name; every other entry is an
// import.
func parseOtoolL(output string) ParseResult {
	lines := executil.Lines(output)
	if len(lines) <= 1 {
		return ParseResult{}
	}

	header := strings.TrimSuffix(strings.TrimSpace(lines[0]), ":")
	if idx := strings.Index(header, " (architecture"); idx >= 0 {
		header = header[:idx]
	}

	var result ParseResult
	depLines := lines[1:]
	for i, line := range depLines {
		ref := otoolDepPath(line)
		if ref == "" {
			continue
		}
		if i == 0 && filepath.Base(ref) == filepath.Base(header) {
			result.DylibID = ref
			continue
		}
		result.Imports = append(result.Imports, ref)
	}
	return result
}

// otoolDepPath extracts the path portion of an otool -L dependency
// line ("\t<path> (compatibility version X.Y.Z, current version ...)"),
// taking the first whitespace-delimited token and stopping at "(".
func otoolDepPath(line string) string {
	trimmed := strings.TrimSpace(line)
	if idx := strings.Index(trimmed, "("); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ParseMachoRpaths invokes `otool -l` on path and extracts every
// LC_RPATH load command's "path " value, up to " (offset ...)".
// Cached separately from ParseResult since it requires its own helper
// invocation.
func ParseMachoRpaths(path string, cache *Cache) MachoRpaths {
	key := pathutil.Canonical(path)
	if cached, ok := cache.GetMachoRpaths(key); ok {
		return cached
	}

	out, ok := executil.RunOK(nil, "otool", "-l", path)
	result := MachoRpaths{}
	if ok {
		result = parseOtoolLRpaths(out)
	}

	cache.PutMachoRpaths(key, result)
	return result
}

func parseOtoolLRpaths(output string) MachoRpaths {
	lines := executil.Lines(output)
	var result MachoRpaths
	inRpathCmd := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "cmd ") && strings.Contains(trimmed, "LC_RPATH"):
			inRpathCmd = true
		case strings.HasPrefix(trimmed, "cmd "):
			inRpathCmd = false
		case inRpathCmd && strings.HasPrefix(trimmed, "path "):
			value := strings.TrimPrefix(trimmed, "path ")
			if idx := strings.Index(value, " ("); idx >= 0 {
				value = value[:idx]
			}
			result.Rpaths = append(result.Rpaths, strings.TrimSpace(value))
			inRpathCmd = false
		}
	}
	return result
}
