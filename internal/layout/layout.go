// Package layout builds the per-format output directory skeleton and
// implements the idempotent staging-copy primitive every later stage
// (qmlstage, i18n, linkedit) copies into place through.
package layout

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/deployerr"
	"github.com/blackwell-systems/cdqt/internal/detect"
)

// Skeleton is the set of directories a format's output tree needs
// before anything is copied into it.
func Skeleton(format detect.Format, out string) []string {
	switch format {
	case detect.PE:
		return []string{
			filepath.Join(out, "plugins", "platforms"),
			filepath.Join(out, "plugins", "imageformats"),
			filepath.Join(out, "qml"),
			filepath.Join(out, "translations"),
		}
	case detect.ELF:
		return []string{
			filepath.Join(out, "usr", "bin"),
			filepath.Join(out, "usr", "lib"),
			filepath.Join(out, "usr", "plugins", "platforms"),
			filepath.Join(out, "usr", "plugins", "imageformats"),
			filepath.Join(out, "usr", "qml"),
			filepath.Join(out, "usr", "translations"),
		}
	case detect.MachO:
		return []string{
			filepath.Join(out, "Contents", "MacOS"),
			filepath.Join(out, "Contents", "Frameworks"),
			filepath.Join(out, "Contents", "Resources", "qml"),
			filepath.Join(out, "Contents", "Resources", "translations"),
			filepath.Join(out, "Contents", "PlugIns", "quick"),
			filepath.Join(out, "Contents", "PlugIns", "platforms"),
			filepath.Join(out, "Contents", "PlugIns", "imageformats"),
		}
	default:
		return nil
	}
}

// Build creates every directory in a format's skeleton. A directory
// that cannot be created is reported as a warning, not a reason to
// stop: per spec §7, StagingIoError skips the offending path and the
// run continues. Build only returns a fatal error when every
// directory in the skeleton failed to create.
func Build(format detect.Format, out string) ([]error, error) {
	dirs := Skeleton(format, out)
	var warnings []error
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			warnings = append(warnings, deployerr.Wrap(deployerr.KindStagingIO, err, "create layout directory %s", dir))
		}
	}
	if len(dirs) > 0 && len(warnings) == len(dirs) {
		return warnings, deployerr.New(deployerr.KindStagingIO, "failed to create any layout directory under %s", out)
	}
	return warnings, nil
}

// LibDir and BinDir report the staging destination directory for,
// respectively, shared libraries and the main executable — per spec
// §4.8's per-format destination table.
func LibDir(format detect.Format, out string) string {
	switch format {
	case detect.PE:
		return out
	case detect.ELF:
		return filepath.Join(out, "usr", "lib")
	case detect.MachO:
		return filepath.Join(out, "Contents", "Frameworks")
	default:
		return out
	}
}

func BinDir(format detect.Format, out string) string {
	switch format {
	case detect.PE:
		return out
	case detect.ELF:
		return filepath.Join(out, "usr", "bin")
	case detect.MachO:
		return filepath.Join(out, "Contents", "MacOS")
	default:
		return out
	}
}

// CopyFile copies src to dst idempotently: if dst exists, is a regular
// file, has the same size as src, and its modification time is not
// older than src's, the copy is skipped. Otherwise dst is (re)written
// with src's POSIX mode bits, setuid/setgid stripped, and owner-write
// always set so a later link-editing pass can rewrite the staged copy
// even when the source file was read-only.
func CopyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return deployerr.Wrap(deployerr.KindStagingIO, err, "stat source %s", src)
	}

	if dstInfo, err := os.Stat(dst); err == nil {
		if dstInfo.Mode().IsRegular() && dstInfo.Size() == srcInfo.Size() && !dstInfo.ModTime().Before(srcInfo.ModTime()) {
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return deployerr.Wrap(deployerr.KindStagingIO, err, "create destination directory for %s", dst)
	}

	mode := srcInfo.Mode().Perm() &^ (os.ModeSetuid | os.ModeSetgid)
	mode |= 0200

	if err := copyContents(src, dst, mode); err != nil {
		return deployerr.Wrap(deployerr.KindStagingIO, err, "copy %s to %s", src, dst)
	}

	return os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
}

func copyContents(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Chmod(mode)
}

// CopyTree recursively copies every regular file under src into dst,
// preserving the relative directory structure and following the same
// idempotent CopyFile semantics per file. Symlinks are recreated as
// symlinks rather than followed, matching platform deploy convention
// for framework bundles and UI-module trees.
func CopyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return deployerr.Wrap(deployerr.KindStagingIO, err, "walk %s", path)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.Mode()&os.ModeSymlink != 0 {
			linkDst, err := os.Readlink(path)
			if err != nil {
				return deployerr.Wrap(deployerr.KindStagingIO, err, "readlink %s", path)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			_ = os.Remove(target)
			return os.Symlink(linkDst, target)
		}
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return CopyFile(path, target)
	})
}

// FrameworkRoot walks up from a resolved Mach-O dylib path and reports
// the enclosing *.framework directory, if any ancestor has that
// extension.
func FrameworkRoot(resolvedPath string) (string, bool) {
	dir := filepath.Dir(resolvedPath)
	for dir != "/" && dir != "." {
		if strings.HasSuffix(dir, ".framework") {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// LinkOrCopySONAME creates a symlink at linkPath pointing to
// targetBasename (a sibling file in the same directory). If symlink
// creation fails — e.g. the target filesystem does not support them —
// it falls back to copying targetPath under linkPath instead, per
// spec §4.8's SONAME fallback rule.
func LinkOrCopySONAME(linkPath, targetBasename, targetPath string) error {
	_ = os.Remove(linkPath)
	if err := os.Symlink(targetBasename, linkPath); err == nil {
		return nil
	}
	return CopyFile(targetPath, linkPath)
}
