// Package resolve implements the single reference-resolution entry
// point of spec §4.5: turning one import reference into an on-disk
// path using the platform rules appropriate to the target format.
package resolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/detect"
)

// Subject carries the per-binary context resolveRef needs: the
// binary's own directory (for $ORIGIN / @loader_path) and its rpath
// list (ELF RPATH/RUNPATH, or Mach-O LC_RPATH entries).
type Subject struct {
	Dir    string
	Rpaths []string
}

// Resolve implements resolveRef from spec §4.5 for one reference of
// subject, in the given target format. mainExeDir is the main executable's own
// directory, used for Mach-O's @executable_path. searchDirs is the
// global search list from internal/searchpath. Returns ("", false)
// when ref cannot be found anywhere.
func Resolve(format detect.Format, ref string, subject Subject, mainExeDir string, searchDirs []string) (string, bool) {
	switch format {
	case detect.ELF:
		return resolveELF(ref, subject, searchDirs)
	case detect.PE:
		return resolvePE(ref, searchDirs)
	case detect.MachO:
		return resolveMachO(ref, subject, mainExeDir, searchDirs)
	default:
		return "", false
	}
}

func resolveELF(ref string, subject Subject, searchDirs []string) (string, bool) {
	if filepath.IsAbs(ref) {
		if exists(ref) {
			return ref, true
		}
		return "", false
	}

	for _, rpath := range subject.Rpaths {
		expanded := expandOrigin(rpath, subject.Dir)
		candidate := filepath.Join(expanded, ref)
		if exists(candidate) {
			return candidate, true
		}
	}

	return searchIn(ref, searchDirs)
}

func expandOrigin(rpath, binDir string) string {
	rpath = strings.ReplaceAll(rpath, "${ORIGIN}", binDir)
	rpath = strings.ReplaceAll(rpath, "$ORIGIN", binDir)
	return rpath
}

func resolvePE(ref string, searchDirs []string) (string, bool) {
	if filepath.IsAbs(ref) {
		if exists(ref) {
			return ref, true
		}
		return "", false
	}
	return searchIn(ref, searchDirs)
}

const (
	tokLoaderPath     = "@loader_path/"
	tokExecutablePath = "@executable_path/"
	tokRpath          = "@rpath/"
)

func resolveMachO(ref string, subject Subject, mainExeDir string, searchDirs []string) (string, bool) {
	if filepath.IsAbs(ref) {
		if exists(ref) {
			return ref, true
		}
		return "", false
	}

	switch {
	case strings.HasPrefix(ref, tokLoaderPath):
		candidate := filepath.Join(subject.Dir, strings.TrimPrefix(ref, tokLoaderPath))
		if exists(candidate) {
			return candidate, true
		}
		return "", false

	case strings.HasPrefix(ref, tokExecutablePath):
		candidate := filepath.Join(mainExeDir, strings.TrimPrefix(ref, tokExecutablePath))
		if exists(candidate) {
			return candidate, true
		}
		return "", false

	case strings.HasPrefix(ref, tokRpath):
		tail := strings.TrimPrefix(ref, tokRpath)
		for _, rpath := range subject.Rpaths {
			expanded := expandMachOTokens(rpath, subject.Dir, mainExeDir)
			candidate := filepath.Join(expanded, tail)
			if exists(candidate) {
				return candidate, true
			}
		}
		return "", false
	}

	return searchIn(ref, searchDirs)
}

// expandMachOTokens resolves @loader_path/@executable_path tokens that
// appear inside an LC_RPATH entry itself, before that entry is used to
// expand an @rpath/ reference.
func expandMachOTokens(rpath, subjectDir, mainExeDir string) string {
	switch {
	case strings.HasPrefix(rpath, tokLoaderPath):
		return filepath.Join(subjectDir, strings.TrimPrefix(rpath, tokLoaderPath))
	case strings.HasPrefix(rpath, tokExecutablePath):
		return filepath.Join(mainExeDir, strings.TrimPrefix(rpath, tokExecutablePath))
	default:
		return rpath
	}
}

func searchIn(ref string, dirs []string) (string, bool) {
	base := filepath.Base(ref)
	for _, dir := range dirs {
		candidate := filepath.Join(dir, base)
		if exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
