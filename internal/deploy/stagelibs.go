package deploy

import (
	"path/filepath"

	"github.com/blackwell-systems/cdqt/internal/depparse"
	"github.com/blackwell-systems/cdqt/internal/detect"
	"github.com/blackwell-systems/cdqt/internal/deployerr"
	"github.com/blackwell-systems/cdqt/internal/layout"
	"github.com/blackwell-systems/cdqt/internal/report"
)

// stageLibraries copies every resolved library into the format's
// library destination, applying the ELF SONAME-symlink rule and the
// Mach-O framework-bundle-aware destination rule of spec §4.8. It
// returns the staged destination path of each input that staged
// successfully, in input order; failed inputs have no entry.
//
// A copy failure for one library is a warning, not a reason to stop:
// per spec §7, StagingIoError skips the offending file and the run
// continues. stageLibraries only returns a fatal error when every
// library in resolved failed to stage — the "nothing could possibly
// have gone right" case.
func stageLibraries(format detect.Format, resolved []string, out string, cache *depparse.Cache, p *report.Printer, summary *report.Summary) ([]string, error) {
	libDir := layout.LibDir(format, out)
	var staged []string
	stagedFrameworks := map[string]bool{}
	failed := 0

	for _, path := range resolved {
		switch format {
		case detect.ELF:
			dst := filepath.Join(libDir, filepath.Base(path))
			if err := layout.CopyFile(path, dst); err != nil {
				p.Warning("%v", err)
				summary.Warnings++
				failed++
				continue
			}
			staged = append(staged, dst)

			result := depparse.ParseELF(path, cache)
			if result.SOName != "" && result.SOName != filepath.Base(dst) {
				link := filepath.Join(libDir, result.SOName)
				if err := layout.LinkOrCopySONAME(link, filepath.Base(dst), dst); err != nil {
					p.Warning("%v", err)
					summary.Warnings++
				}
			}

		case detect.PE:
			dst := filepath.Join(libDir, filepath.Base(path))
			if err := layout.CopyFile(path, dst); err != nil {
				p.Warning("%v", err)
				summary.Warnings++
				failed++
				continue
			}
			staged = append(staged, dst)

		case detect.MachO:
			if fwRoot, ok := layout.FrameworkRoot(path); ok {
				if !stagedFrameworks[fwRoot] {
					dst := filepath.Join(libDir, filepath.Base(fwRoot))
					if err := layout.CopyTree(fwRoot, dst); err != nil {
						p.Warning("%v", err)
						summary.Warnings++
						failed++
						continue
					}
					stagedFrameworks[fwRoot] = true
				}
				rel, err := filepath.Rel(fwRoot, path)
				if err == nil {
					staged = append(staged, filepath.Join(libDir, filepath.Base(fwRoot), rel))
				}
			} else {
				dst := filepath.Join(libDir, filepath.Base(path))
				if err := layout.CopyFile(path, dst); err != nil {
					p.Warning("%v", err)
					summary.Warnings++
					failed++
					continue
				}
				staged = append(staged, dst)
			}
		}
	}

	if len(resolved) > 0 && failed == len(resolved) {
		return staged, deployerr.New(deployerr.KindStagingIO, "failed to stage any of %d resolved libraries", len(resolved))
	}

	return staged, nil
}
