package deploy

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/blackwell-systems/cdqt/internal/corepatch"
	"github.com/blackwell-systems/cdqt/internal/depparse"
	"github.com/blackwell-systems/cdqt/internal/detect"
	"github.com/blackwell-systems/cdqt/internal/i18n"
	"github.com/blackwell-systems/cdqt/internal/layout"
	"github.com/blackwell-systems/cdqt/internal/linkedit"
	"github.com/blackwell-systems/cdqt/internal/qmlstage"
	"github.com/blackwell-systems/cdqt/internal/report"
	"github.com/blackwell-systems/cdqt/internal/searchpath"
	"github.com/blackwell-systems/cdqt/internal/toolkit"
	"github.com/blackwell-systems/cdqt/internal/toolprobe"
	"github.com/blackwell-systems/cdqt/internal/walk"
)

// Run drives one end-to-end deploy, per the ten-stage sequence of
// spec §4.13. It returns the finished Report and any fatal error; a
// fatal error aborts the run at the point of detection, per spec §7's
// propagation policy.
func Run(plan Plan, w io.Writer) (*report.Report, error) {
	start := time.Now()
	p := report.New(w, plan.Verbose)
	summary := report.NewSummary()

	// Stage 1: detect format, compute normalized output root.
	format, err := detect.Detect(plan.BinPath)
	if err != nil {
		return nil, err
	}
	out := NormalizedOut(format, plan.OutRoot, plan.BinPath)
	p.Stage(fmt.Sprintf("detected %s target, output root %s", format, out))

	// Stage 2: verify required external tools.
	if err := toolprobe.Check(format); err != nil {
		return nil, err
	}

	// Stage 3: build layout skeleton.
	skeletonWarnings, err := layout.Build(format, out)
	for _, w := range skeletonWarnings {
		p.Warning("%v", w)
		summary.Warnings++
	}
	if err != nil {
		return nil, err
	}

	tk := toolkit.Query()
	binDir := filepath.Dir(plan.BinPath)
	assembled := searchpath.Assemble(format, binDir, tk, plan.QMLRoots)

	cache := depparse.NewCache()
	parse := depparse.WalkParser(format, cache)
	subjectNode := parse(plan.BinPath)

	mainExeDestDir := layout.BinDir(format, out)
	mainExeDst := filepath.Join(mainExeDestDir, filepath.Base(plan.BinPath))

	// Stage 4: resolve-and-recurse, stage libraries, stage main
	// executable, apply overlays.
	resolved, err := walk.Walk(plan.BinPath, subjectNode, walk.Options{
		Format:     format,
		MainExeDir: binDir,
		SearchDirs: assembled.SearchDirs.Dirs(),
		Toolkit:    tk,
		Parse:      parse,
	})
	if err != nil {
		return nil, err
	}
	p.Verbose("resolved %d libraries for %s", len(resolved), plan.BinPath)
	p.ResolvedList(resolved, fileSize)

	if plan.DryRun {
		summary.Elapsed = time.Since(start)
		return &report.Report{Summary: summary, Resolved: resolved}, nil
	}

	stagedLibs, err := stageLibraries(format, resolved, out, cache, p, summary)
	if err != nil {
		return nil, err
	}
	summary.LibrariesStaged = len(stagedLibs)

	if err := layout.CopyFile(plan.BinPath, mainExeDst); err != nil {
		return nil, err
	}

	if format == detect.PE || format == detect.ELF {
		if err := layout.WriteConf(format, mainExeDestDir); err != nil {
			p.Warning("%v", err)
			summary.Warnings++
		}
	}

	if err := ApplyOverlays(plan.Overlays, out); err != nil {
		p.Warning("overlay merge failed: %v", err)
	}

	if format == detect.ELF {
		if err := linkedit.SetMainExeRunpath(mainExeDst); err != nil {
			p.Warning("%v", err)
			summary.Warnings++
		}
	}
	if format == detect.MachO {
		if err := linkedit.AddRpath(mainExeDst, linkedit.MainExeRpath); err != nil {
			p.Warning("%v", err)
			summary.Warnings++
		}
	}

	// Stage 5 (PE only): patch the toolkit core DLL strings.
	if format == detect.PE {
		for _, lib := range stagedLibs {
			if isToolkitCoreDLL(lib) {
				if _, err := corepatch.Patch(lib); err != nil {
					p.Warning("%v", err)
					summary.Warnings++
				}
			}
		}
	}

	// Stage 6: stage platform/imageformat plugins. On PE, fall back to
	// MINGW-PLUGINS/PATH/Qt6Core-derived roots when the toolkit oracle
	// didn't resolve a plugins directory of its own.
	pluginRoots := assembled.PluginRoots.Dirs()
	if format == detect.PE {
		pluginRoots = append(pluginRoots, qt6CorePluginRoots(resolved)...)
	}
	stagedPlugins, err := StagePlatformPlugins(format, out, pluginRoots)
	if err != nil {
		p.Warning("%v", err)
		summary.Warnings++
	}
	summary.PluginsStaged = len(stagedPlugins)
	for _, plugin := range stagedPlugins {
		p.Verbose("staged plugin %s", plugin)
		applyPluginRunpath(format, plugin, p, summary)
	}

	// Stage 7: stage UI-modules.
	qmlRoots := qmlstage.DiscoverRoots(assembled.QMLRoots.Dirs(), binDir, qmlstage.HasModuleSource)
	destBase := qmlstage.DestBase(format, out)
	scanSpinner := report.NewSpinner(w, "scanning UI-module imports")
	scanSpinner.Start()
	modules := qmlstage.Scan(qmlRoots, assembled.QMLImportDirs.Dirs(), tk.QML)
	scanSpinner.Stop()
	for _, m := range modules {
		if err := qmlstage.Stage(m, format, out, destBase); err != nil {
			p.Warning("%v", err)
			summary.Warnings++
			continue
		}
		p.Verbose("copied UI-module %s -> %s", m.SourceDir, filepath.Join(destBase, m.RelPath))
		summary.UIModulesStaged++
	}

	// Stage 8: stage translations.
	languages := i18n.SelectLanguages(plan.Languages, os.Getenv("LC_ALL"), os.Getenv("LANG"))
	translationsOut := translationsDestDir(format, out)
	if len(languages) > 0 {
		i18nSpinner := report.NewSpinner(w, "aggregating translation catalogs")
		i18nSpinner.Start()
		for _, lang := range languages {
			catalogs := i18n.Catalogs(tk.Translations, lang)
			if len(catalogs) == 0 {
				continue
			}
			if err := i18n.Stage(lang, catalogs, translationsOut); err != nil {
				p.Warning("%v", err)
				summary.Warnings++
				continue
			}
			summary.TranslationsStaged++
		}
		i18nSpinner.Stop()
	}

	// Stage 9: walk UI-module plugin dependencies and stage them.
	pluginLibs := qmlstage.PluginLibraries(format, out)
	for _, plib := range pluginLibs {
		node := parse(plib)
		extra, err := walk.Walk(plib, node, walk.Options{
			Format:     format,
			MainExeDir: binDir,
			SearchDirs: assembled.SearchDirs.Dirs(),
			Toolkit:    tk,
			Parse:      parse,
		})
		if err != nil {
			return nil, err
		}
		p.Verbose("resolved %d libraries for UI-module plugin %s", len(extra), plib)
		staged, err := stageLibraries(format, extra, out, cache, p, summary)
		if err != nil {
			p.Warning("%v", err)
			summary.Warnings++
			continue
		}
		summary.LibrariesStaged += len(staged)
		applyPluginRunpath(format, plib, p, summary)
	}

	// Stage 10 (Mach-O only): full install-name/rpath fixup pass.
	if format == detect.MachO {
		for _, w := range linkedit.FixupMachO(out, cache) {
			p.Warning("%v", w)
			summary.Warnings++
		}
	}

	summary.Elapsed = time.Since(start)
	summary.BytesWritten = totalBytes(out)
	if !plan.Quiet {
		p.Print(summary)
	}

	return &report.Report{Summary: summary, Resolved: resolved}, nil
}

func applyPluginRunpath(format detect.Format, path string, p *report.Printer, summary *report.Summary) {
	switch format {
	case detect.ELF:
		if err := linkedit.SetPluginRunpath(path); err != nil {
			p.Warning("%v", err)
			summary.Warnings++
		}
	case detect.MachO:
		if err := linkedit.AddRpath(path, linkedit.PluginRpath); err != nil {
			p.Warning("%v", err)
			summary.Warnings++
		}
	}
}

// isToolkitCoreDLL reports whether path looks like the toolkit's core
// DLL on PE — the one binary corepatch.Patch is meant to touch.
func isToolkitCoreDLL(path string) bool {
	base := filepath.Base(path)
	return len(base) >= 7 && base[:7] == "Qt6Core"
}

func translationsDestDir(format detect.Format, out string) string {
	switch format {
	case detect.MachO:
		return filepath.Join(out, "Contents", "Resources", "translations")
	case detect.ELF:
		return filepath.Join(out, "usr", "translations")
	default:
		return filepath.Join(out, "translations")
	}
}

func fileSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

func totalBytes(root string) int64 {
	var total int64
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}
