// Package i18n selects languages and stages translation catalogs into
// the output tree, aggregating per-language .qm files into a single
// catalog via an external merger tool when one succeeds, and falling
// back to copying the catalogs verbatim when it does not.
package i18n

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blackwell-systems/cdqt/internal/deployerr"
	"github.com/blackwell-systems/cdqt/internal/executil"
)

// DefaultMergerBin is the helper binary invoked when LCONVERT-BIN is
// unset.
const DefaultMergerBin = "lconvert"

func mergerBin() string {
	if v := os.Getenv("LCONVERT-BIN"); v != "" {
		return v
	}
	return DefaultMergerBin
}

// SelectLanguages implements spec §4.10's selection rule: an explicit
// requested list wins outright; otherwise LC_ALL takes complete
// precedence over LANG — only one of the two is ever parsed into a
// code — and "en" is always included as a fallback.
func SelectLanguages(requested []string, lcAll, lang string) []string {
	var langs []string
	if len(requested) > 0 {
		langs = append(langs, requested...)
	} else {
		pick := lcAll
		if pick == "" {
			pick = lang
		}
		if code := parseLocale(pick); code != "" {
			langs = append(langs, code)
		}
	}

	hasEn := false
	seen := map[string]bool{}
	var out []string
	for _, l := range langs {
		l = strings.ToLower(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
		if l == "en" {
			hasEn = true
		}
	}
	if !hasEn {
		out = append(out, "en")
	}
	return out
}

// parseLocale extracts the lowercased language code from a POSIX
// locale string of the form ll[_CC][.codeset][@modifier].
func parseLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" || locale == "C" || locale == "POSIX" {
		return ""
	}
	if i := strings.IndexAny(locale, "_.@"); i >= 0 {
		locale = locale[:i]
	}
	return strings.ToLower(locale)
}

// Catalogs lists every file under translationsDir whose basename ends
// in "_<lang>.qm".
func Catalogs(translationsDir, lang string) []string {
	entries, err := os.ReadDir(translationsDir)
	if err != nil {
		return nil
	}
	suffix := "_" + lang + ".qm"
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), suffix) {
			out = append(out, filepath.Join(translationsDir, e.Name()))
		}
	}
	sort.Strings(out)
	return out
}

// Stage aggregates catalogs for one language into
// destDir/qt_<lang>.qm via the external merger; on any failure
// (merger missing, nonzero exit, or zero catalogs) it copies each
// catalog file verbatim into destDir instead.
func Stage(lang string, catalogs []string, destDir string) error {
	if len(catalogs) == 0 {
		return nil
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return deployerr.Wrap(deployerr.KindStagingIO, err, "create translations directory %s", destDir)
	}

	merged := filepath.Join(destDir, "qt_"+lang+".qm")
	args := append([]string{"-o", merged}, catalogs...)
	if res := executil.Run(nil, mergerBin(), args...); res.Ran && res.ExitCode == 0 {
		if _, err := os.Stat(merged); err == nil {
			return nil
		}
	}

	for _, catalog := range catalogs {
		dst := filepath.Join(destDir, filepath.Base(catalog))
		data, err := os.ReadFile(catalog)
		if err != nil {
			continue
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return deployerr.Wrap(deployerr.KindStagingIO, err, "copy translation catalog %s", catalog)
		}
	}
	return nil
}
