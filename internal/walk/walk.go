// Package walk implements the transitive dependency walker of spec
// §4.6: a stack-based DFS that visits every reachable library at most
// once, resolving each node's imports against that node's own rpaths
// and filtering through the deploy policy.
package walk

import (
	"path/filepath"

	"github.com/blackwell-systems/cdqt/internal/deployerr"
	"github.com/blackwell-systems/cdqt/internal/detect"
	"github.com/blackwell-systems/cdqt/internal/pathutil"
	"github.com/blackwell-systems/cdqt/internal/policy"
	"github.com/blackwell-systems/cdqt/internal/resolve"
	"github.com/blackwell-systems/cdqt/internal/toolkit"
)

// NodeInfo is the metadata the walker needs about one visited binary:
// its ordered import list and its own rpath list (ELF RPATH/RUNPATH,
// or Mach-O LC_RPATH — already resolved to the right kind by the
// caller, which knows the target format).
type NodeInfo struct {
	Imports []string
	Rpaths  []string
}

// ParseFunc parses one binary's metadata, given its on-disk path. The
// orchestrator wires this to internal/depparse; tests can inject a
// fake to exercise the walker's graph logic without invoking real
// external tools.
type ParseFunc func(path string) NodeInfo

// Options bundles the per-run context the walker needs but does not
// own: it borrows ToolkitPaths from the orchestrator, per spec §3's
// ownership note.
type Options struct {
	Format     detect.Format
	MainExeDir string
	SearchDirs []string
	Toolkit    toolkit.Paths
	Parse      ParseFunc
}

// Walk walks the dependency graph reachable from subjectPath, whose
// already-parsed metadata is subjectNode. It returns the canonical
// paths of every visited library that the deploy policy says belongs
// in the distribution, excluding the subject itself.
//
// A reference whose basename matches the toolkit naming heuristic but
// that cannot be resolved anywhere is fatal: MissingToolkitLibrary.
// Any other unresolved reference is silently treated as a system
// library and skipped. The walker need not visit the graph in
// topological order — correctness requires only that every reachable
// library be visited at most once, under canonical-path equality.
func Walk(subjectPath string, subjectNode NodeInfo, opts Options) ([]string, error) {
	subjectCanon := pathutil.Canonical(subjectPath)
	visited := map[string]bool{subjectCanon: true}

	type frame struct {
		ref        string
		fromDir    string
		fromRpaths []string
	}

	var order []string
	var stack []frame
	for _, ref := range subjectNode.Imports {
		stack = append(stack, frame{ref: ref, fromDir: filepath.Dir(subjectPath), fromRpaths: subjectNode.Rpaths})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		resolved, ok := resolve.Resolve(opts.Format, top.ref, resolve.Subject{
			Dir:    top.fromDir,
			Rpaths: top.fromRpaths,
		}, opts.MainExeDir, opts.SearchDirs)

		if !ok {
			if policy.ToolkitNamed(filepath.Base(top.ref)) {
				return nil, deployerr.New(deployerr.KindMissingToolkitLibrary, "could not resolve toolkit dependency %q", top.ref)
			}
			continue
		}

		canon := pathutil.Canonical(resolved)
		if visited[canon] {
			continue
		}
		visited[canon] = true

		if !policy.Include(opts.Format, resolved, opts.Toolkit, opts.MainExeDir) {
			continue
		}

		order = append(order, canon)

		node := opts.Parse(resolved)
		for _, ref := range node.Imports {
			stack = append(stack, frame{ref: ref, fromDir: filepath.Dir(resolved), fromRpaths: node.Rpaths})
		}
	}

	return order, nil
}
