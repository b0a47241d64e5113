package layout

import (
	"os"
	"path/filepath"

	"github.com/blackwell-systems/cdqt/internal/deployerr"
	"github.com/blackwell-systems/cdqt/internal/detect"
)

// WriteConf writes the INI-format sibling-discovery file next to the
// main executable on PE and ELF, so the toolkit resolves plugin,
// UI-module, and translation directories relative to the executable's
// own directory rather than a build-time install prefix. Mach-O relies
// on bundle conventions instead and never calls this.
//
// The Plugins/Qml2Imports/Translations values are relative to binDir,
// which is layout.BinDir(format, out). On PE that directory is out
// itself, so "plugins"/"qml"/"translations" point straight at the
// skeleton's top-level dirs. On ELF binDir is <out>/usr/bin, one level
// below where plugins/qml/translations actually land, so those values
// need a leading "../" to reach them.
func WriteConf(format detect.Format, binDir string) error {
	prefix := ""
	if format == detect.ELF {
		prefix = "../"
	}

	content := "[Paths]\n" +
		"Prefix = .\n" +
		"Plugins = " + prefix + "plugins\n" +
		"Qml2Imports = " + prefix + "qml\n" +
		"Translations = " + prefix + "translations\n"

	path := filepath.Join(binDir, "qt.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return deployerr.Wrap(deployerr.KindStagingIO, err, "write %s", path)
	}
	return nil
}

// ConfPath is exposed for callers that need to report the path written
// without re-deriving filepath.Join logic themselves.
func ConfPath(binDir string) string {
	return filepath.Join(binDir, "qt.conf")
}
