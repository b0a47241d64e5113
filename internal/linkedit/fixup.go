package linkedit

import (
	"github.com/blackwell-systems/cdqt/internal/depparse"
)

// FixupMachO runs the full post-staging install-name fixup pass of
// spec §4.11: every binary inside Frameworks/ gets its own install-id
// rewritten to the canonical @rpath/<Name>.framework/... form, then
// every binary in the bundle has any dependency reference pointing
// inside Frameworks/ rewritten to the same form computed from that
// dependency's staged location. Failures are collected rather than
// aborting the pass — one bad `install-name-tool` invocation should
// not prevent the rest of the bundle from being fixed up.
func FixupMachO(bundleRoot string, cache *depparse.Cache) []error {
	bins := EnumerateBundleBinaries(bundleRoot)
	var warnings []error

	for _, b := range bins {
		if InFrameworksDir(b, bundleRoot) {
			newID := FrameworkVersionedName(b, bundleRoot)
			if err := SetID(b, newID); err != nil {
				warnings = append(warnings, err)
			}
		}
	}

	for _, b := range bins {
		result := depparse.ParseMachO(b, cache)
		for _, dep := range result.Imports {
			if !InFrameworksDir(dep, bundleRoot) {
				continue
			}
			newRef := FrameworkVersionedName(dep, bundleRoot)
			if err := ChangeDependency(b, dep, newRef); err != nil {
				warnings = append(warnings, err)
			}
		}
	}

	return warnings
}
