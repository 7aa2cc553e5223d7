package bitarray

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedVersion = errors.New("bitarray: unsupported palette version")
	ErrIndexOutOfRange    = errors.New("bitarray: index out of range")
	ErrInvalidValue       = errors.New("bitarray: value out of bounds")
	ErrWordCount          = errors.New("bitarray: invalid word count")
)

// Version describes one supported bit width of a paletted storage.
// Versions are compared by pointer; only the values declared below exist.
type Version struct {
	bits           uint8
	entriesPerWord uint8
	maxEntryValue  uint32
	next           *Version
}

var (
	V16 = &Version{bits: 16, entriesPerWord: 2, maxEntryValue: 1<<16 - 1}
	V8  = &Version{bits: 8, entriesPerWord: 4, maxEntryValue: 1<<8 - 1, next: V16}
	V6  = &Version{bits: 6, entriesPerWord: 5, maxEntryValue: 1<<6 - 1, next: V8}
	V5  = &Version{bits: 5, entriesPerWord: 6, maxEntryValue: 1<<5 - 1, next: V6}
	V4  = &Version{bits: 4, entriesPerWord: 8, maxEntryValue: 1<<4 - 1, next: V5}
	V3  = &Version{bits: 3, entriesPerWord: 10, maxEntryValue: 1<<3 - 1, next: V4}
	V2  = &Version{bits: 2, entriesPerWord: 16, maxEntryValue: 1<<2 - 1, next: V3}
	V1  = &Version{bits: 1, entriesPerWord: 32, maxEntryValue: 1<<1 - 1, next: V2}
	V0  = &Version{bits: 0, entriesPerWord: 0, maxEntryValue: 0, next: V1}
)

// versions is ordered from the largest width to the smallest.
var versions = [...]*Version{V16, V8, V6, V5, V4, V3, V2, V1, V0}

func (v *Version) Bits() uint8           { return v.bits }
func (v *Version) EntriesPerWord() uint8 { return v.entriesPerWord }
func (v *Version) MaxEntryValue() uint32 { return v.maxEntryValue }

// Next returns the version with the next larger width, or nil for V16.
func (v *Version) Next() *Version { return v.next }

func (v *Version) String() string {
	return fmt.Sprintf("V%d", v.bits)
}

// Get selects a version from a raw value.
//
// With read set, raw is the bit width decoded from a storage header and the
// version of exactly that width is returned. Otherwise raw is a per-word
// capacity and the narrowest non-zero version packing at most raw entries
// into a word is returned.
func Get(raw int, read bool) (*Version, error) {
	if read {
		for _, v := range versions {
			if int(v.bits) == raw {
				return v, nil
			}
		}
	} else {
		for i := len(versions) - 1; i >= 0; i-- {
			v := versions[i]
			if v.bits != 0 && int(v.entriesPerWord) <= raw {
				return v, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, raw)
}

// ForBitsCeil returns the narrowest version that is at least bits wide.
// ok is false when bits exceeds the widest supported version.
func ForBitsCeil(bits int) (v *Version, ok bool) {
	for i := len(versions) - 1; i >= 0; i-- {
		if int(versions[i].bits) >= bits {
			return versions[i], true
		}
	}
	return nil, false
}

// WordsForSize returns how many uint32 words hold size entries.
func (v *Version) WordsForSize(size int) int {
	if v.entriesPerWord == 0 {
		return 0
	}
	epw := int(v.entriesPerWord)
	return (size + epw - 1) / epw
}

// PaletteHeader is the first byte of a block storage on the wire.
func (v *Version) PaletteHeader(runtime bool) byte {
	h := v.bits << 1
	if runtime {
		h |= 1
	}
	return h
}

// FromHeader decodes a palette header byte.
func FromHeader(header byte) (v *Version, runtime bool, err error) {
	v, err = Get(int(header>>1), true)
	return v, header&1 == 1, err
}

// CreateArray allocates a zeroed array of size entries. Widths that do not
// tile a 32-bit word (3, 5 and 6) get the padded layout.
func (v *Version) CreateArray(size int) BitArray {
	switch v {
	case V0:
		return &Singleton{size: size}
	case V3, V5, V6:
		return &Padded{version: v, size: size, words: make([]uint32, v.WordsForSize(size))}
	default:
		return &Pow2{version: v, size: size, words: make([]uint32, v.WordsForSize(size))}
	}
}

// CreateArrayWithWords wraps existing words. The slice is owned by the
// returned array afterwards.
func (v *Version) CreateArrayWithWords(size int, words []uint32) (BitArray, error) {
	if want := v.WordsForSize(size); len(words) != want {
		return nil, fmt.Errorf("%w: got %d, want %d for %v", ErrWordCount, len(words), want, v)
	}
	switch v {
	case V0:
		return &Singleton{size: size}, nil
	case V3, V5, V6:
		return &Padded{version: v, size: size, words: words}, nil
	default:
		return &Pow2{version: v, size: size, words: words}, nil
	}
}
