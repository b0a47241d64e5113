package qmlstage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/deployerr"
	"github.com/blackwell-systems/cdqt/internal/detect"
	"github.com/blackwell-systems/cdqt/internal/pathutil"
)

// DestBase returns the UI-module root inside the output tree for the
// given target format.
func DestBase(format detect.Format, out string) string {
	switch format {
	case detect.MachO:
		return filepath.Join(out, "Contents", "Resources", "qml")
	case detect.ELF:
		return filepath.Join(out, "usr", "qml")
	default:
		return filepath.Join(out, "qml")
	}
}

// nativeExt is the native plugin library extension for a target
// format, used to decide which files inside a UI-module tree are
// relocated on Mach-O rather than copied in place.
func nativeExt(format detect.Format) string {
	switch format {
	case detect.PE:
		return ".dll"
	case detect.ELF:
		return ".so"
	case detect.MachO:
		return ".dylib"
	default:
		return ""
	}
}

// Stage copies one module's files recursively into destBase/RelPath.
// On ELF and PE, symlinks inside the module tree are not followed. On
// Mach-O, any file resolving to a .dylib is relocated into
// out/Contents/PlugIns/quick and replaced in the module tree by a
// relative symlink pointing at the relocated copy, falling back to a
// plain copy if symlink creation fails.
func Stage(m Module, format detect.Format, out, destBase string) error {
	dst := filepath.Join(destBase, m.RelPath)
	if err := os.MkdirAll(dst, 0755); err != nil {
		return deployerr.Wrap(deployerr.KindStagingIO, err, "create UI-module destination %s", dst)
	}

	return filepath.Walk(m.SourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return deployerr.Wrap(deployerr.KindStagingIO, err, "walk UI-module source %s", path)
		}
		rel, err := filepath.Rel(m.SourceDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		isLink := info.Mode()&os.ModeSymlink != 0
		resolved := path
		if isLink {
			if linkTarget, err := os.Readlink(path); err == nil {
				resolved = filepath.Join(filepath.Dir(path), linkTarget)
			}
		}

		if format == detect.MachO && strings.EqualFold(filepath.Ext(resolved), nativeExt(format)) {
			return relocateMachODylib(resolved, target, out)
		}

		if isLink {
			return nil
		}

		return copyPlain(path, target)
	})
}

func relocateMachODylib(resolvedSrc, inTreeTarget, out string) error {
	quickDir := filepath.Join(out, "Contents", "PlugIns", "quick")
	if err := os.MkdirAll(quickDir, 0755); err != nil {
		return deployerr.Wrap(deployerr.KindStagingIO, err, "create %s", quickDir)
	}
	moved := filepath.Join(quickDir, filepath.Base(resolvedSrc))
	if err := copyPlain(resolvedSrc, moved); err != nil {
		return deployerr.Wrap(deployerr.KindStagingIO, err, "relocate QML plugin dylib %s", resolvedSrc)
	}

	if err := os.MkdirAll(filepath.Dir(inTreeTarget), 0755); err != nil {
		return err
	}
	_ = os.Remove(inTreeTarget)

	rel, err := filepath.Rel(filepath.Dir(inTreeTarget), moved)
	if err != nil {
		return copyPlain(moved, inTreeTarget)
	}
	if err := os.Symlink(rel, inTreeTarget); err != nil {
		return copyPlain(moved, inTreeTarget)
	}
	return nil
}

func copyPlain(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// PluginLibraries collects every native plugin library under the
// staged UI-module tree (and, on Mach-O, also under PlugIns/quick),
// deduplicated by canonical path — the seed set spec §4.9 step 4 feeds
// into the transitive walker.
func PluginLibraries(format detect.Format, out string) []string {
	ext := nativeExt(format)
	if ext == "" {
		return nil
	}

	seen := map[string]bool{}
	var libs []string
	collect := func(dir string) {
		_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), ext) {
				return nil
			}
			abs := pathutil.Canonical(path)
			if !seen[abs] {
				seen[abs] = true
				libs = append(libs, abs)
			}
			return nil
		})
	}

	collect(DestBase(format, out))
	if format == detect.MachO {
		collect(filepath.Join(out, "Contents", "PlugIns", "quick"))
	}
	return libs
}
