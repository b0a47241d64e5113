package toolprobe

import (
	"testing"

	"github.com/blackwell-systems/cdqt/internal/detect"
)

func TestRequiredIncludesFormatSpecificTools(t *testing.T) {
	elf := Required(detect.ELF)
	if !contains(elf, "objdump") || !contains(elf, "patchelf") {
		t.Fatalf("ELF tool set missing expected entries: %v", elf)
	}

	macho := Required(detect.MachO)
	if !contains(macho, "otool") || !contains(macho, "install-name-tool") {
		t.Fatalf("Mach-O tool set missing expected entries: %v", macho)
	}

	pe := Required(detect.PE)
	if !contains(pe, "objdump") {
		t.Fatalf("PE tool set missing objdump: %v", pe)
	}
}

func TestCheckFailsWhenToolMissing(t *testing.T) {
	// None of the required helper binaries exist in the test
	// environment, so Check must report them missing rather than
	// silently succeeding.
	if err := Check(detect.ELF); err == nil {
		t.Fatal("expected missing-tool error")
	}
}

func contains(items []string, want string) bool {
	for _, it := range items {
		if it == want {
			return true
		}
	}
	return false
}
