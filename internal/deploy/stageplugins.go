package deploy

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/detect"
	"github.com/blackwell-systems/cdqt/internal/layout"
)

// pluginCategories is the fixed pair of plugin categories spec §4.8's
// layout table carries for every format.
var pluginCategories = []string{"platforms", "imageformats"}

// pluginDestDir returns the destination directory for one plugin
// category, under the format's plugin root.
func pluginDestDir(format detect.Format, out, category string) string {
	switch format {
	case detect.PE:
		return filepath.Join(out, "plugins", category)
	case detect.ELF:
		return filepath.Join(out, "usr", "plugins", category)
	case detect.MachO:
		return filepath.Join(out, "Contents", "PlugIns", category)
	default:
		return filepath.Join(out, category)
	}
}

// StagePlatformPlugins copies the platforms/imageformats plugin
// categories from the first root in pluginRoots that actually has a
// non-empty "platforms" subdirectory, then stops — it does not merge
// partial results across multiple roots. This mirrors a MinGW
// cross-deploy's plugin discovery: the toolkit oracle is tried first,
// then MINGW-PLUGINS and PATH-derived fallback roots, so a PE target
// the oracle can't resolve plugins for still finds qwindows.dll and
// the image-format DLLs from wherever the cross-toolchain actually put
// them.
func StagePlatformPlugins(format detect.Format, out string, pluginRoots []string) ([]string, error) {
	var staged []string
	for _, root := range pluginRoots {
		if root == "" {
			continue
		}
		platformEntries, err := os.ReadDir(filepath.Join(root, "platforms"))
		if err != nil || len(platformEntries) == 0 {
			continue
		}

		for _, category := range pluginCategories {
			srcDir := filepath.Join(root, category)
			entries, err := os.ReadDir(srcDir)
			if err != nil {
				continue
			}
			dstDir := pluginDestDir(format, out, category)
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				src := filepath.Join(srcDir, e.Name())
				dst := filepath.Join(dstDir, e.Name())
				if err := layout.CopyFile(src, dst); err != nil {
					return staged, err
				}
				staged = append(staged, dst)
			}
		}
		break
	}
	return staged, nil
}

// qt6CorePluginRoots derives extra PE plugin-root candidates from the
// location of a resolved Qt6Core.dll: a MinGW install typically keeps
// "plugins" (or "lib/qt-6/plugins") as a sibling of "bin", one
// directory up from the DLL itself.
func qt6CorePluginRoots(resolvedLibs []string) []string {
	var roots []string
	for _, lib := range resolvedLibs {
		if !strings.EqualFold(filepath.Base(lib), "Qt6Core.dll") {
			continue
		}
		binDir := filepath.Dir(lib)
		base := filepath.Dir(binDir)
		for _, candidate := range []string{
			filepath.Join(base, "plugins"),
			filepath.Join(base, "lib", "qt-6", "plugins"),
		} {
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				roots = append(roots, candidate)
			}
		}
	}
	return roots
}
