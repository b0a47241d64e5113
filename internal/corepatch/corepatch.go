// Package corepatch rewrites the three embedded build-host prefix
// strings inside a staged PE toolkit core DLL so the deployed binary
// never leaks the build machine's install path. It operates on the
// file as a raw byte buffer and never changes the file's length.
package corepatch

import (
	"bytes"
	"os"
	"unicode/utf16"

	"github.com/blackwell-systems/cdqt/internal/deployerr"
)

// keys is the fixed set of key-with-equals prefixes this patch looks
// for, in both ASCII and UTF-16LE encodings.
var keys = []string{"qt_prfxpath=", "qt_epfxpath=", "qt_hpfxpath="}

// replacement is the value every matched key's value region is
// overwritten with; it is always shorter than or equal to any
// embedded value, so the region never grows.
const replacement = "."

// Patch rewrites path in place, returning whether any byte changed. A
// path that does not exist or cannot be opened is reported as an
// error; a file with none of the three keys present is not an error —
// it simply reports changed=false.
func Patch(path string) (changed bool, err error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return false, deployerr.Wrap(deployerr.KindStagingIO, err, "read %s", path)
	}
	if len(buf) == 0 {
		return false, nil
	}

	any := false
	for _, key := range keys {
		if patchASCIIKey(buf, key, replacement) {
			any = true
		}
		if patchUTF16Key(buf, key, replacement) {
			any = true
		}
	}

	if !any {
		return false, nil
	}

	if err := os.WriteFile(path, buf, 0644); err != nil {
		return false, deployerr.Wrap(deployerr.KindStagingIO, err, "write %s", path)
	}
	return true, nil
}

// patchASCIIKey scans buf for every ASCII occurrence of keyWithEq,
// locates the null-terminated value that follows it, and overwrites
// that value region with replacement followed by zero padding, in
// place, if the value differs and is long enough to hold it.
func patchASCIIKey(buf []byte, keyWithEq, replacement string) bool {
	key := []byte(keyWithEq)
	rep := []byte(replacement)
	changed := false
	pos := 0

	for {
		idx := bytes.Index(buf[pos:], key)
		if idx < 0 {
			break
		}
		matchAt := pos + idx
		valStart := matchAt + len(key)

		scan := valStart
		for scan < len(buf) && buf[scan] != 0 {
			scan++
		}
		if scan <= valStart {
			pos = matchAt + len(key)
			continue
		}

		if applyReplacement(buf[valStart:scan], rep) {
			changed = true
		}
		pos = scan
	}
	return changed
}

// patchUTF16Key is patchASCIIKey's UTF-16LE counterpart: the key and
// value are both stored as two-byte little-endian code units, and the
// value is terminated by a double-null rather than a single null.
func patchUTF16Key(buf []byte, keyWithEq, replacement string) bool {
	key := toUTF16LE(keyWithEq)
	rep := toUTF16LE(replacement)
	changed := false
	pos := 0

	for {
		idx := bytes.Index(buf[pos:], key)
		if idx < 0 {
			break
		}
		matchAt := pos + idx
		valStart := matchAt + len(key)

		scan := valStart
		for scan+1 < len(buf) && !(buf[scan] == 0 && buf[scan+1] == 0) {
			scan += 2
		}
		if scan <= valStart {
			pos = matchAt + len(key)
			continue
		}

		if applyReplacement(buf[valStart:scan], rep) {
			changed = true
		}
		pos = scan
	}
	return changed
}

// applyReplacement overwrites region with rep followed by zero padding
// to region's original length, if region is long enough to hold rep
// and does not already hold exactly that value. It reports whether it
// made a change.
func applyReplacement(region, rep []byte) bool {
	if len(region) < len(rep) {
		return false
	}
	if bytes.Equal(region[:len(rep)], rep) && isZero(region[len(rep):]) {
		return false
	}
	copy(region, rep)
	for i := len(rep); i < len(region); i++ {
		region[i] = 0
	}
	return true
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func toUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = append(out, byte(u&0xFF), byte(u>>8))
	}
	return out
}
