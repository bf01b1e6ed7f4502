package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/lookbusy1344/lc3emu/vm"
)

func image(origin uint16, words ...uint16) []byte {
	buf := new(bytes.Buffer)
	writeBE := func(w uint16) {
		buf.WriteByte(byte(w >> 8))
		buf.WriteByte(byte(w))
	}
	writeBE(origin)
	for _, w := range words {
		writeBE(w)
	}
	return buf.Bytes()
}

// Round-trip: the loader followed by reading back a word at origin+k
// yields the k-th value originally written, per spec §8.
func TestLoadRoundTrip(t *testing.T) {
	mem := vm.NewMemory(nil)
	data := image(0x3000, 0x1061, 0xF025, 0xABCD)

	if err := Load(mem, bytes.NewReader(data)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []uint16{0x1061, 0xF025, 0xABCD}
	for k, w := range want {
		if got := mem.Peek(0x3000 + uint16(k)); got != w {
			t.Errorf("mem[0x%04X] = 0x%04X, want 0x%04X", 0x3000+k, got, w)
		}
	}
}

func TestLoadOddTrailingByteDiscarded(t *testing.T) {
	mem := vm.NewMemory(nil)
	data := image(0x3000, 0x1111)
	data = append(data, 0xFF) // incomplete trailing word

	if err := Load(mem, bytes.NewReader(data)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := mem.Peek(0x3000); got != 0x1111 {
		t.Errorf("mem[0x3000] = 0x%04X, want 0x1111", got)
	}
	if got := mem.Peek(0x3001); got != 0 {
		t.Errorf("mem[0x3001] = 0x%04X, want 0 (discarded partial word)", got)
	}
}

func TestLoadTruncatesPastAddressSpace(t *testing.T) {
	mem := vm.NewMemory(nil)
	data := image(0xFFFE, 0x1111, 0x2222, 0x3333)

	if err := Load(mem, bytes.NewReader(data)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := mem.Peek(0xFFFE); got != 0x1111 {
		t.Errorf("mem[0xFFFE] = 0x%04X, want 0x1111", got)
	}
	if got := mem.Peek(0xFFFF); got != 0x2222 {
		t.Errorf("mem[0xFFFF] = 0x%04X, want 0x2222", got)
	}
	if got := mem.Peek(0x0000); got != 0 {
		t.Errorf("mem[0x0000] = 0x%04X, want 0 (truncated, not wrapped)", got)
	}
}

func TestLoadFileMissing(t *testing.T) {
	mem := vm.NewMemory(nil)
	err := LoadFile(mem, "/nonexistent/path/to/image.obj")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var loadErr *LoadError
	if !errorsAsLoadError(err, &loadErr) {
		t.Fatalf("error = %v, want *LoadError", err)
	}
}

func TestLoadFileSequentialOverwrite(t *testing.T) {
	mem := vm.NewMemory(nil)
	dir := t.TempDir()

	p1 := filepath.Join(dir, "a.obj")
	p2 := filepath.Join(dir, "b.obj")
	if err := os.WriteFile(p1, image(0x3000, 0x1111, 0x2222), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p2, image(0x3001, 0x9999), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadFile(mem, p1); err != nil {
		t.Fatalf("load a: %v", err)
	}
	if err := LoadFile(mem, p2); err != nil {
		t.Fatalf("load b: %v", err)
	}

	if got := mem.Peek(0x3000); got != 0x1111 {
		t.Errorf("mem[0x3000] = 0x%04X, want 0x1111 (not overwritten)", got)
	}
	if got := mem.Peek(0x3001); got != 0x9999 {
		t.Errorf("mem[0x3001] = 0x%04X, want 0x9999 (overwritten by second image)", got)
	}
}

func errorsAsLoadError(err error, target **LoadError) bool {
	le, ok := err.(*LoadError)
	if ok {
		*target = le
	}
	return ok
}
