package depparse

import (
	"strings"

	"github.com/blackwell-systems/cdqt/internal/executil"
	"github.com/blackwell-systems/cdqt/internal/pathutil"
)

// ParsePE invokes a PE-aware `objdump -p` on path and extracts the
// imported DLL names. There is no rpath concept on PE, so Rpaths is
// always empty. Cached by canonical path; a nonzero exit yields an
// empty ParseResult.
func ParsePE(path string, cache *Cache) ParseResult {
	key := pathutil.Canonical(path)
	if cached, ok := cache.GetResult(key); ok {
		return cached
	}

	out, ok := executil.RunOK(nil, "objdump", "-p", path)
	result := ParseResult{}
	if ok {
		result = parsePEOutput(out)
	}

	cache.PutResult(key, result)
	return result
}

func parsePEOutput(output string) ParseResult {
	var result ParseResult
	for _, line := range executil.Lines(output) {
		trimmed := strings.TrimSpace(line)
		if !strings.Contains(trimmed, "DLL Name:") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) > 0 {
			result.Imports = append(result.Imports, fields[len(fields)-1])
		}
	}
	return result
}
