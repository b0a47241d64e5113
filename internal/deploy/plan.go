// Package deploy implements the orchestrator of spec §4.13: it
// sequences every other internal package through the ten stages that
// turn one main executable into a self-contained, relocatable
// distribution tree.
package deploy

import (
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/detect"
)

// Plan is the run's configuration: the DeployPlan of spec §3.
type Plan struct {
	BinPath   string
	OutRoot   string
	QMLRoots  []string
	Languages []string
	Overlays  []string
	Verbose   bool
	DryRun    bool
	// Quiet suppresses the human-readable summary line Run would
	// otherwise print — set by callers that render the JSON form of
	// the report themselves instead.
	Quiet bool
}

// NormalizedOut derives the per-format output root from Plan.OutRoot
// and the binary's basename: for ELF, <out>/<name>.AppDir; for Mach-O,
// <out>/<name>.app; for PE, <out> unchanged.
func NormalizedOut(format detect.Format, out, binPath string) string {
	name := strings.TrimSuffix(filepath.Base(binPath), filepath.Ext(binPath))
	switch format {
	case detect.ELF:
		return filepath.Join(out, name+".AppDir")
	case detect.MachO:
		return filepath.Join(out, name+".app")
	default:
		return out
	}
}
