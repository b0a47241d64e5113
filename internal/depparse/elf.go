package depparse

import (
	"strings"

	"github.com/blackwell-systems/cdqt/internal/executil"
	"github.com/blackwell-systems/cdqt/internal/pathutil"
)

// ParseELF invokes `objdump -p` on path and extracts NEEDED imports
// and RPATH/RUNPATH entries in one pass, caching the result by
// canonical path. A nonzero exit from objdump yields an empty
// ParseResult — the subject is treated as a leaf node, per spec §4.3's
// ParserEmpty behavior — not an error.
func ParseELF(path string, cache *Cache) ParseResult {
	key := pathutil.Canonical(path)
	if cached, ok := cache.GetResult(key); ok {
		return cached
	}

	out, ok := executil.RunOK(nil, "objdump", "-p", path)
	result := ParseResult{}
	if ok {
		result = parseELFOutput(out)
	}

	cache.PutResult(key, result)
	return result
}

func parseELFOutput(output string) ParseResult {
	var result ParseResult
	for _, line := range executil.Lines(output) {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.Contains(trimmed, "NEEDED"):
			fields := strings.Fields(trimmed)
			if len(fields) > 0 {
				result.Imports = append(result.Imports, fields[len(fields)-1])
			}
		case strings.Contains(trimmed, "RPATH"), strings.Contains(trimmed, "RUNPATH"):
			fields := strings.Fields(trimmed)
			if len(fields) == 0 {
				continue
			}
			last := fields[len(fields)-1]
			for _, entry := range strings.Split(last, ":") {
				if entry != "" {
					result.Rpaths = append(result.Rpaths, entry)
				}
			}
		case strings.Contains(trimmed, "SONAME"):
			fields := strings.Fields(trimmed)
			if len(fields) > 0 {
				result.SOName = fields[len(fields)-1]
			}
		}
	}
	return result
}
