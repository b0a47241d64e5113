// Package searchpath builds the per-format library search list and
// UI-module import-path/root list described in spec §4.4, from the
// binary's directory, environment variables, and toolkit paths.
package searchpath

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/detect"
	"github.com/blackwell-systems/cdqt/internal/pathutil"
	"github.com/blackwell-systems/cdqt/internal/toolkit"
)

// ListSeparator is the platform path-list separator: ';' on Windows
// hosts, ':' elsewhere. It is a function of the *host* running this
// tool, not of the target format being deployed for.
func ListSeparator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}

// List is an ordered, deduplicated-by-canonical-path directory list:
// the SearchDirectoryList of spec §3. Insertion order is resolution
// priority order.
type List struct {
	dirs []string
	seen map[string]bool
}

// NewList returns an empty List.
func NewList() *List {
	return &List{seen: make(map[string]bool)}
}

// Add appends dir to the list if it is not already present under
// canonical-path equality. Returns true if it was added.
func (l *List) Add(dir string) bool {
	if dir == "" {
		return false
	}
	key := pathutil.Canonical(dir)
	if l.seen[key] {
		return false
	}
	l.seen[key] = true
	l.dirs = append(l.dirs, dir)
	return true
}

// AddAll adds every entry of dirs in order.
func (l *List) AddAll(dirs []string) {
	for _, d := range dirs {
		l.Add(d)
	}
}

// Dirs returns the ordered directory list.
func (l *List) Dirs() []string {
	return l.dirs
}

// Env re-exports a variable as a toolkit-path-prepended list for child
// processes: toolkitPath, followed by whatever the current process
// already has in envVar.
func Env(envVar, toolkitPath string) string {
	existing := os.Getenv(envVar)
	if toolkitPath == "" {
		return existing
	}
	if existing == "" {
		return toolkitPath
	}
	return toolkitPath + ListSeparator() + existing
}

// Assembled is everything the search-path assembler produces: the
// global library search list plus the UI-module import-path and root
// lists spec §4.4 describes.
type Assembled struct {
	SearchDirs    *List
	QMLImportDirs *List
	QMLRoots      *List
	// PluginRoots is the ordered list of candidate plugin-tree roots to
	// search for the platforms/imageformats categories. For ELF and
	// Mach-O this holds at most the toolkit oracle's answer; for PE it
	// also carries the MINGW-PLUGINS-derived and PATH-derived fallback
	// roots a MinGW cross-deploy needs when the oracle can't resolve
	// plugins itself.
	PluginRoots *List
	// ChildEnv holds the re-exported environment variables (toolkit
	// paths prepended) that external helper invocations should inherit.
	ChildEnv map[string]string
}

// Assemble builds the Assembled search state for one deploy run.
// binDir is the subject executable's directory. cliQMLRoots are
// CLI-supplied --qml-root values, added after the PE PATH-derived roots
// and before the UI-MODULE-ROOT entries.
func Assemble(format detect.Format, binDir string, tk toolkit.Paths, cliQMLRoots []string) Assembled {
	a := Assembled{
		SearchDirs:    NewList(),
		QMLImportDirs: NewList(),
		QMLRoots:      NewList(),
		PluginRoots:   NewList(),
		ChildEnv:      make(map[string]string),
	}

	a.SearchDirs.Add(binDir)
	a.PluginRoots.Add(tk.Plugins)

	switch format {
	case detect.ELF:
		a.SearchDirs.AddAll(splitEnv("LD_LIBRARY_PATH"))
		a.SearchDirs.Add(tk.Libs)
		a.ChildEnv["LD_LIBRARY_PATH"] = Env("LD_LIBRARY_PATH", tk.Libs)

	case detect.PE:
		pathEntries := splitEnv("PATH")
		a.SearchDirs.AddAll(pathEntries)
		a.SearchDirs.Add(tk.Bins)
		a.ChildEnv["PATH"] = Env("PATH", tk.Bins)

		a.PluginRoots.AddAll(splitEnv("MINGW-PLUGINS"))

		for _, entry := range pathEntries {
			if !strings.HasSuffix(filepath.ToSlash(entry), "/bin") {
				continue
			}
			base := strings.TrimSuffix(filepath.ToSlash(entry), "/bin")
			for _, candidate := range []string{
				filepath.Join(base, "qml"),
				filepath.Join(base, "lib", "qt-6", "qml"),
			} {
				if dirExists(candidate) {
					a.QMLRoots.Add(candidate)
				}
			}
			for _, candidate := range []string{
				filepath.Join(base, "plugins"),
				filepath.Join(base, "lib", "qt-6", "plugins"),
			} {
				if dirExists(candidate) {
					a.PluginRoots.Add(candidate)
				}
			}
		}

	case detect.MachO:
		a.SearchDirs.AddAll(splitEnv("DYLD_LIBRARY_PATH"))
		a.SearchDirs.AddAll(splitEnv("DYLD_FRAMEWORK_PATH"))
		a.SearchDirs.Add(tk.Libs)
		a.ChildEnv["DYLD_LIBRARY_PATH"] = Env("DYLD_LIBRARY_PATH", tk.Libs)
		a.ChildEnv["DYLD_FRAMEWORK_PATH"] = Env("DYLD_FRAMEWORK_PATH", tk.Libs)
	}

	a.QMLImportDirs.Add(tk.QML)
	a.QMLImportDirs.AddAll(splitEnv("UI-MODULE-PATH"))

	a.QMLRoots.AddAll(cliQMLRoots)
	a.QMLRoots.AddAll(splitEnv("UI-MODULE-ROOT"))

	return a
}

func splitEnv(name string) []string {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	var out []string
	for _, e := range strings.Split(v, ListSeparator()) {
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
