// Package linkedit drives the external link-editor tools (patchelf,
// install-name-tool) that rewrite a staged binary's search-path
// metadata so it resolves its dependencies relative to its own staged
// location rather than the build host's install prefix.
package linkedit

import (
	"github.com/blackwell-systems/cdqt/internal/deployerr"
	"github.com/blackwell-systems/cdqt/internal/executil"
)

// DefaultPatchelfBin is the helper binary used to rewrite ELF RUNPATH
// entries when PATCHELF-BIN is unset.
const DefaultPatchelfBin = "patchelf"

// MainExeRunpath and PluginRunpath are the two RUNPATH values spec
// §4.11 assigns: the main executable lives in usr/bin, a sibling of
// usr/lib; a plugin lives one level deeper (usr/plugins/<cat>/file.so).
const (
	MainExeRunpath = "$ORIGIN/../lib"
	PluginRunpath  = "$ORIGIN/../../lib"
)

func patchelfBin() string {
	return executil.BinOverride("PATCHELF-BIN", DefaultPatchelfBin)
}

// SetRunpath rewrites path's RUNPATH via patchelf --set-rpath. A
// nonzero exit or missing tool is non-fatal: the staged binary keeps
// whatever RUNPATH it was built with, and the orchestrator logs a
// warning.
func SetRunpath(path, runpath string) error {
	res := executil.Run(nil, patchelfBin(), "--set-rpath", runpath, path)
	if !res.Ran || res.ExitCode != 0 {
		return deployerr.New(deployerr.KindLinkEditWarning, "patchelf --set-rpath %s %s failed", runpath, path)
	}
	return nil
}

// SetMainExeRunpath and SetPluginRunpath apply the two fixed RUNPATH
// values to the main executable and to a plugin library respectively.
func SetMainExeRunpath(path string) error { return SetRunpath(path, MainExeRunpath) }
func SetPluginRunpath(path string) error  { return SetRunpath(path, PluginRunpath) }
