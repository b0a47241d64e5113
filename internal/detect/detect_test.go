package detect

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestDetectELF(t *testing.T) {
	data := make([]byte, 64)
	copy(data, []byte{0x7F, 'E', 'L', 'F'})
	path := writeTemp(t, "app.elf", data)

	got, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got != ELF {
		t.Fatalf("got %v, want ELF", got)
	}
}

func TestDetectPE(t *testing.T) {
	data := make([]byte, 256)
	binary.LittleEndian.PutUint16(data[0:2], peMagicMZ)
	lfanew := uint32(128)
	binary.LittleEndian.PutUint32(data[peLfanewOffset:peLfanewOffset+4], lfanew)
	copy(data[lfanew:lfanew+4], []byte{'P', 'E', 0, 0})
	path := writeTemp(t, "app.exe", data)

	got, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got != PE {
		t.Fatalf("got %v, want PE", got)
	}
}

// TestDetectMZWithoutPESignature exercises the totality property from
// spec §8.1: a file starting with "MZ" that lacks a valid PE signature
// at e_lfanew must return BadFormat, never be misclassified as PE.
func TestDetectMZWithoutPESignature(t *testing.T) {
	data := make([]byte, 256)
	binary.LittleEndian.PutUint16(data[0:2], peMagicMZ)
	lfanew := uint32(128)
	binary.LittleEndian.PutUint32(data[peLfanewOffset:peLfanewOffset+4], lfanew)
	copy(data[lfanew:lfanew+4], []byte{'N', 'O', 'P', 'E'})
	path := writeTemp(t, "notpe.bin", data)

	_, err := Detect(path)
	if err == nil {
		t.Fatal("expected BadFormat error, got nil")
	}
}

func TestDetectThinMachO(t *testing.T) {
	data := make([]byte, 64)
	binary.BigEndian.PutUint32(data[0:4], machoMagic64)
	path := writeTemp(t, "app.dylib", data)

	got, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got != MachO {
		t.Fatalf("got %v, want Mach-O", got)
	}
}

// TestDetectFatMachOFalsePositive is scenario S4 from spec §8: a file
// of size 40 bytes whose first 8 bytes declare nfat_arch=5 (header size
// 8+5*20=108) must be rejected as BadFormat since 108 > 40.
func TestDetectFatMachOFalsePositive(t *testing.T) {
	data := make([]byte, 40)
	binary.BigEndian.PutUint32(data[0:4], machoFatMagic)
	binary.BigEndian.PutUint32(data[4:8], 5)
	path := writeTemp(t, "fake.bin", data)

	_, err := Detect(path)
	if err == nil {
		t.Fatal("expected BadFormat error, got nil")
	}
}

func TestDetectFatMachOValid(t *testing.T) {
	headerSize := 8 + 2*fatArchHeaderSize32
	data := make([]byte, headerSize+16)
	binary.BigEndian.PutUint32(data[0:4], machoFatMagic)
	binary.BigEndian.PutUint32(data[4:8], 2)
	path := writeTemp(t, "fat.bin", data)

	got, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got != MachO {
		t.Fatalf("got %v, want Mach-O", got)
	}
}

func TestDetectTooSmall(t *testing.T) {
	path := writeTemp(t, "tiny.bin", []byte{1, 2, 3})
	if _, err := Detect(path); err == nil {
		t.Fatal("expected BadFormat for too-small file")
	}
}

func TestDetectImplausibleFatArchCount(t *testing.T) {
	data := make([]byte, 200)
	binary.BigEndian.PutUint32(data[0:4], machoFatMagic)
	binary.BigEndian.PutUint32(data[4:8], 0)
	path := writeTemp(t, "zeroarch.bin", data)

	if _, err := Detect(path); err == nil {
		t.Fatal("expected BadFormat for nfat_arch=0")
	}
}
