// Package depparse extracts dependency metadata — import references,
// rpaths, SONAME, dylib install-id — from the textual output of
// external binary-inspection tools (objdump, otool). Every parse is
// memoized by canonical subject path in a bounded LRU Cache, so
// repeated requests for the same binary re-invoke the helper tool only
// after its entry has been evicted.
package depparse

// ParseResult is the import table (and, for ELF, the rpath/runpath
// list, SONAME) or (for Mach-O, the dylib's own install-id) of one
// binary, as spec §3 describes it.
type ParseResult struct {
	// Imports is the ordered list of dependency references exactly as
	// they appear in the import table.
	Imports []string
	// Rpaths is the ELF RPATH/RUNPATH entry list, already split on ':'.
	// Empty for PE and unused for Mach-O (see MachoRpaths).
	Rpaths []string
	// SOName is the ELF SONAME, empty if the binary has none or is not
	// a shared library.
	SOName string
	// DylibID is the Mach-O dylib's own install-name, extracted from
	// the first non-header line of `otool -L`. Empty for a main
	// executable (which has no install-id) or on parse failure.
	DylibID string
}

// MachoRpaths is the LC_RPATH entry list of one Mach-O binary, cached
// separately from ParseResult because extracting it requires a second
// `otool -l` invocation distinct from the `otool -L` import listing.
type MachoRpaths struct {
	Rpaths []string
}
