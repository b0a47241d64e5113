package linkedit

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/deployerr"
	"github.com/blackwell-systems/cdqt/internal/executil"
)

// DefaultInstallNameToolBin is the helper binary used for Mach-O rpath
// and install-name edits when INSTALL-NAME-TOOL-BIN is unset.
const DefaultInstallNameToolBin = "install-name-tool"

func installNameToolBin() string {
	return executil.BinOverride("INSTALL-NAME-TOOL-BIN", DefaultInstallNameToolBin)
}

// MainExeRpath and PluginRpath are the two rpath entries spec §4.11
// adds before the fixup pass: the main executable sits directly under
// Contents/MacOS, a plugin dylib sits in Contents/PlugIns/<category>,
// two directories below Contents.
const (
	MainExeRpath = "@executable_path/../Frameworks"
	PluginRpath  = "@loader_path/../../Frameworks"
)

// AddRpath adds one LC_RPATH entry to path. Non-fatal on failure.
func AddRpath(path, rpath string) error {
	res := executil.Run(nil, installNameToolBin(), "-add_rpath", rpath, path)
	if !res.Ran || res.ExitCode != 0 {
		return deployerr.New(deployerr.KindLinkEditWarning, "install-name-tool -add_rpath %s %s failed", rpath, path)
	}
	return nil
}

// SetID sets a Mach-O binary's own install-name.
func SetID(path, newID string) error {
	res := executil.Run(nil, installNameToolBin(), "-id", newID, path)
	if !res.Ran || res.ExitCode != 0 {
		return deployerr.New(deployerr.KindLinkEditWarning, "install-name-tool -id %s %s failed", newID, path)
	}
	return nil
}

// ChangeDependency rewrites one dependency reference inside path from
// oldRef to newRef.
func ChangeDependency(path, oldRef, newRef string) error {
	res := executil.Run(nil, installNameToolBin(), "-change", oldRef, newRef, path)
	if !res.Ran || res.ExitCode != 0 {
		return deployerr.New(deployerr.KindLinkEditWarning, "install-name-tool -change %s %s %s failed", oldRef, newRef, path)
	}
	return nil
}

// FrameworkVersionedName derives the canonical in-bundle install-name
// @rpath/<Name>.framework/Versions/<V>/<Name> for a binary living
// inside a staged framework, from its path relative to the bundle
// root.
func FrameworkVersionedName(binPath, bundleRoot string) string {
	rel, err := filepath.Rel(bundleRoot, binPath)
	if err != nil {
		return "@rpath/" + filepath.Base(binPath)
	}
	rel = filepath.ToSlash(rel)

	idx := strings.Index(rel, "Frameworks/")
	if idx < 0 {
		return "@rpath/" + filepath.Base(binPath)
	}
	after := rel[idx+len("Frameworks/"):]

	fwIdx := strings.Index(after, ".framework/")
	if fwIdx < 0 {
		return "@rpath/" + filepath.Base(binPath)
	}
	name := after[:fwIdx]
	tail := after[fwIdx+len(".framework/"):]

	version := "A"
	if vIdx := strings.Index(tail, "Versions/"); vIdx >= 0 {
		rest := tail[vIdx+len("Versions/"):]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			version = rest[:slash]
		}
	}

	return "@rpath/" + name + ".framework/Versions/" + version + "/" + name
}

// FindFrameworkBinary locates a framework's main binary: it prefers
// Versions/Current/<Name>, then scans Versions/A..Z, then falls back
// to scanning every subdirectory of Versions/.
func FindFrameworkBinary(frameworkRoot string) (string, bool) {
	name := strings.TrimSuffix(filepath.Base(frameworkRoot), ".framework")
	versions := filepath.Join(frameworkRoot, "Versions")

	if cand := filepath.Join(versions, "Current", name); isRegularFile(cand) {
		return cand, true
	}
	for c := 'A'; c <= 'Z'; c++ {
		if cand := filepath.Join(versions, string(c), name); isRegularFile(cand) {
			return cand, true
		}
	}

	entries, err := os.ReadDir(versions)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if cand := filepath.Join(versions, e.Name(), name); isRegularFile(cand) {
			return cand, true
		}
	}
	return "", false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// EnumerateBundleBinaries returns every file under Contents/MacOS (main
// executable candidates), every framework's main binary plus loose
// dylibs under Contents/Frameworks, and every dylib under
// Contents/PlugIns — the fixup set spec §4.11 iterates.
func EnumerateBundleBinaries(bundleRoot string) []string {
	macOSDir := filepath.Join(bundleRoot, "Contents", "MacOS")
	fwDir := filepath.Join(bundleRoot, "Contents", "Frameworks")
	pluginsDir := filepath.Join(bundleRoot, "Contents", "PlugIns")

	seen := map[string]bool{}
	var bins []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			bins = append(bins, p)
		}
	}

	if entries, err := os.ReadDir(macOSDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				add(filepath.Join(macOSDir, e.Name()))
			}
		}
	}

	if entries, err := os.ReadDir(fwDir); err == nil {
		for _, e := range entries {
			if e.IsDir() && strings.HasSuffix(e.Name(), ".framework") {
				if bin, ok := FindFrameworkBinary(filepath.Join(fwDir, e.Name())); ok {
					add(bin)
				}
			}
		}
	}
	_ = filepath.Walk(fwDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".dylib") {
			add(path)
		}
		return nil
	})

	_ = filepath.Walk(pluginsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".dylib") {
			add(path)
		}
		return nil
	})

	return bins
}

// InFrameworksDir reports whether path lies inside bundleRoot's
// Contents/Frameworks directory.
func InFrameworksDir(path, bundleRoot string) bool {
	fwDir := filepath.Join(bundleRoot, "Contents", "Frameworks")
	rel, err := filepath.Rel(fwDir, path)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(rel, "..")
}
