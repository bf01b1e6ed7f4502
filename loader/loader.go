// Package loader reads LC-3 program images: a big-endian origin word
// followed by the program's payload words, also big-endian. Adapted from
// the teacher's loader/loader.go error-handling idiom (fmt.Errorf-wrapped,
// small single-purpose functions); the image format itself is pure LC-3,
// grounded on original_source/lc3.c's read_image_file.
package loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/lookbusy1344/lc3emu/vm"
)

// LoadError wraps a bootstrap-time image load failure, reported to stdout
// and turned into a nonzero exit by main (spec §7 kind 1).
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Failed to load image: %s", e.Path)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadFile opens path and loads its image into mem. Multiple images may be
// loaded sequentially; later loads overwrite prior contents at overlapping
// ranges, since Load just writes words into mem in order.
func LoadFile(mem *vm.Memory, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	if err := Load(mem, f); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	return nil
}

// Load reads a big-endian origin word followed by payload words from r,
// writing them into mem starting at the origin. Procedure mirrors spec
// §4.4: read the origin, then read words until EOF or the address space is
// exhausted (65536 - origin words), byte-swapping each into host order. A
// trailing odd byte (an incomplete final word) is discarded, and words past
// the end of the 65536-word address space are silently truncated.
func Load(mem *vm.Memory, r io.Reader) error {
	var originBuf [2]byte
	if _, err := io.ReadFull(r, originBuf[:]); err != nil {
		return fmt.Errorf("loader: reading origin: %w", err)
	}
	origin := binary.BigEndian.Uint16(originBuf[:])

	addr := origin
	var wordBuf [2]byte
	for {
		_, err := io.ReadFull(r, wordBuf[:])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return fmt.Errorf("loader: reading payload: %w", err)
		}

		mem.Write(addr, binary.BigEndian.Uint16(wordBuf[:]))
		addr++

		if addr == 0 {
			// Wrapped past 0xFFFF: the address space is exhausted: per
			// spec §6 extra bytes past the boundary are silently
			// truncated.
			break
		}
	}
	return nil
}
