// Package toolkit queries the external toolkit-paths helper tool for
// the toolkit install roots needed to deploy against: library,
// binary, prefix, plugin, UI-module, and translation directories.
package toolkit

import (
	"os"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/executil"
)

// DefaultOracleBin is the helper binary name used when TOOLKIT-PATHS-BIN
// is not set.
const DefaultOracleBin = "toolkit-paths"

// query argument names, one per named root.
const (
	queryLibs         = "--libs"
	queryBins         = "--bins"
	queryPrefix       = "--prefix"
	queryPlugins      = "--plugins"
	queryQML          = "--qml"
	queryTranslations = "--translations"
)

// Paths holds the six toolkit install roots. Query clears Plugins, QML
// or Translations to "" when that directory fails to exist on disk (the
// other three are kept as reported), so downstream code falls back to
// environment-derived search paths rather than trusting a stale or
// wrong answer from the oracle.
type Paths struct {
	Libs         string
	Bins         string
	Prefix       string
	Plugins      string
	QML          string
	Translations string
}

// Empty reports whether the oracle produced no usable roots at all —
// the "oracle failed to invoke" case, which spec §4.2 treats as
// non-fatal.
func (p Paths) Empty() bool {
	return p == Paths{}
}

// Roots returns the three prefixes §4.7's "in toolkit prefix" policy
// check tests membership against: install-libs, install-bins,
// install-prefix.
func (p Paths) Roots() []string {
	var roots []string
	for _, r := range []string{p.Libs, p.Bins, p.Prefix} {
		if r != "" {
			roots = append(roots, r)
		}
	}
	return roots
}

// oracleBin resolves the TOOLKIT-PATHS-BIN override.
func oracleBin() string {
	if v := os.Getenv("TOOLKIT-PATHS-BIN"); v != "" {
		return v
	}
	return DefaultOracleBin
}

// Query invokes the toolkit-paths helper six times, once per named
// root, and validates the three directory-valued roots (plugins, qml,
// translations) against the filesystem. A failure to invoke the tool
// at all is not fatal: Query returns a zero Paths (it has no error
// result), and
// callers fall back to search-path-derived discovery.
func Query() Paths {
	bin := oracleBin()

	get := func(arg string) string {
		out, ok := executil.RunOK(nil, bin, arg)
		if !ok {
			return ""
		}
		return strings.TrimSpace(out)
	}

	p := Paths{
		Libs:         get(queryLibs),
		Bins:         get(queryBins),
		Prefix:       get(queryPrefix),
		Plugins:      get(queryPlugins),
		QML:          get(queryQML),
		Translations: get(queryTranslations),
	}

	p.Plugins = clearIfMissing(p.Plugins)
	p.QML = clearIfMissing(p.QML)
	p.Translations = clearIfMissing(p.Translations)

	return p
}

func clearIfMissing(dir string) string {
	if dir == "" {
		return ""
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}
	return dir
}
