package depparse

import (
	"github.com/blackwell-systems/cdqt/internal/detect"
	"github.com/blackwell-systems/cdqt/internal/walk"
)

// WalkParser builds a walk.ParseFunc backed by this package's
// format-dispatching, cache-memoized parsers — the adapter the
// orchestrator uses to wire internal/walk to real external tools.
func WalkParser(format detect.Format, cache *Cache) walk.ParseFunc {
	return func(path string) walk.NodeInfo {
		switch format {
		case detect.ELF:
			r := ParseELF(path, cache)
			return walk.NodeInfo{Imports: r.Imports, Rpaths: r.Rpaths}
		case detect.PE:
			r := ParsePE(path, cache)
			return walk.NodeInfo{Imports: r.Imports}
		case detect.MachO:
			r := ParseMachO(path, cache)
			rp := ParseMachoRpaths(path, cache)
			return walk.NodeInfo{Imports: r.Imports, Rpaths: rp.Rpaths}
		default:
			return walk.NodeInfo{}
		}
	}
}
