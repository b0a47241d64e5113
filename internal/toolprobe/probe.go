// Package toolprobe checks that the external helper tools a given
// target format requires are present on PATH before the engine begins
// staging — spec §6's "missing any aborts with exit 2" rule.
package toolprobe

import (
	"github.com/blackwell-systems/cdqt/internal/deployerr"
	"github.com/blackwell-systems/cdqt/internal/detect"
	"github.com/blackwell-systems/cdqt/internal/executil"
	"github.com/blackwell-systems/cdqt/internal/i18n"
	"github.com/blackwell-systems/cdqt/internal/linkedit"
	"github.com/blackwell-systems/cdqt/internal/qmlstage"
	"github.com/blackwell-systems/cdqt/internal/toolkit"
)

// Required returns the set of external helper binary names the given
// target format needs, honoring every CDQT override environment
// variable each package exposes for its own helper.
func Required(format detect.Format) []string {
	always := []string{
		executil.BinOverride("TOOLKIT-PATHS-BIN", toolkit.DefaultOracleBin),
		executil.BinOverride("UI-MODULE-SCANNER-BIN", qmlstage.DefaultScannerBin),
		executil.BinOverride("LCONVERT-BIN", i18n.DefaultMergerBin),
	}

	switch format {
	case detect.ELF:
		return append(always, "objdump", executil.BinOverride("PATCHELF-BIN", linkedit.DefaultPatchelfBin))
	case detect.PE:
		return append(always, "objdump")
	case detect.MachO:
		return append(always, "otool", executil.BinOverride("INSTALL-NAME-TOOL-BIN", linkedit.DefaultInstallNameToolBin))
	default:
		return always
	}
}

// Check verifies every tool Required for format is on PATH, returning
// the first missing one as a fatal MissingTool error. corepatch is
// deliberately not probed here: it operates on raw bytes and needs no
// external helper.
func Check(format detect.Format) error {
	for _, name := range Required(format) {
		if !executil.OnPath(name) {
			return deployerr.Wrap(deployerr.KindMissingTool, executil.ErrNotFound(name), "required external tool missing for %s target", format)
		}
	}
	return nil
}
