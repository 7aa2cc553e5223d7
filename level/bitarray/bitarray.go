// Package bitarray implements the fixed-width packed index arrays backing a
// Bedrock block storage.
//
// Entries are packed little-end first into uint32 words and never span a word
// boundary. For more info, see the Bedrock sub chunk format on wiki.vg.
package bitarray

import "fmt"

// BitArray is a []uintN whose N is given by Version().Bits().
// Implementations are not safe for concurrent use.
type BitArray interface {
	Get(index int) (uint32, error)
	Set(index int, value uint32) error
	Size() int
	// Words returns the backing words. The slice must not be modified.
	Words() []uint32
	Version() *Version
	Copy() BitArray
}

// MustGet is Get for callers that already checked index against Size.
func MustGet(a BitArray, index int) uint32 {
	v, err := a.Get(index)
	if err != nil {
		panic(err)
	}
	return v
}

func checkIndex(index, size int) error {
	if index < 0 || index >= size {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, size)
	}
	return nil
}

func checkValue(v *Version, value uint32) error {
	if value > v.maxEntryValue {
		return fmt.Errorf("%w: %d exceeds %d for %v", ErrInvalidValue, value, v.maxEntryValue, v)
	}
	return nil
}

// Pow2 is the layout for widths that divide 32: an entry's bit index maps
// straight onto a word and an offset.
type Pow2 struct {
	version *Version
	size    int
	words   []uint32
}

func (a *Pow2) calcIndex(index int) (word int, offset uint) {
	bitIndex := index * int(a.version.bits)
	return bitIndex >> 5, uint(bitIndex & 31)
}

func (a *Pow2) Get(index int) (uint32, error) {
	if err := checkIndex(index, a.size); err != nil {
		return 0, err
	}
	w, offset := a.calcIndex(index)
	return a.words[w] >> offset & a.version.maxEntryValue, nil
}

func (a *Pow2) Set(index int, value uint32) error {
	if err := checkIndex(index, a.size); err != nil {
		return err
	}
	if err := checkValue(a.version, value); err != nil {
		return err
	}
	w, offset := a.calcIndex(index)
	mask := a.version.maxEntryValue
	a.words[w] = a.words[w]&^(mask<<offset) | (value&mask)<<offset
	return nil
}

func (a *Pow2) Size() int         { return a.size }
func (a *Pow2) Words() []uint32   { return a.words }
func (a *Pow2) Version() *Version { return a.version }

func (a *Pow2) Copy() BitArray {
	return &Pow2{version: a.version, size: a.size, words: append([]uint32(nil), a.words...)}
}

// Padded is the layout for 3, 5 and 6 bit widths. The high 2 bits of every
// word are unused.
type Padded struct {
	version *Version
	size    int
	words   []uint32
}

func (a *Padded) calcIndex(index int) (word int, offset uint) {
	epw := int(a.version.entriesPerWord)
	return index / epw, uint(index%epw) * uint(a.version.bits)
}

func (a *Padded) Get(index int) (uint32, error) {
	if err := checkIndex(index, a.size); err != nil {
		return 0, err
	}
	w, offset := a.calcIndex(index)
	return a.words[w] >> offset & a.version.maxEntryValue, nil
}

func (a *Padded) Set(index int, value uint32) error {
	if err := checkIndex(index, a.size); err != nil {
		return err
	}
	if err := checkValue(a.version, value); err != nil {
		return err
	}
	w, offset := a.calcIndex(index)
	mask := a.version.maxEntryValue
	a.words[w] = a.words[w]&^(mask<<offset) | (value&mask)<<offset
	return nil
}

func (a *Padded) Size() int         { return a.size }
func (a *Padded) Words() []uint32   { return a.words }
func (a *Padded) Version() *Version { return a.version }

func (a *Padded) Copy() BitArray {
	return &Padded{version: a.version, size: a.size, words: append([]uint32(nil), a.words...)}
}

// Singleton is the zero-width layout used when a palette has one entry.
// Every index reads 0 and there is no backing storage.
type Singleton struct {
	size int
}

func (a *Singleton) Get(index int) (uint32, error) {
	if err := checkIndex(index, a.size); err != nil {
		return 0, err
	}
	return 0, nil
}

func (a *Singleton) Set(index int, value uint32) error {
	if err := checkIndex(index, a.size); err != nil {
		return err
	}
	return checkValue(V0, value)
}

func (a *Singleton) Size() int         { return a.size }
func (a *Singleton) Words() []uint32   { return nil }
func (a *Singleton) Version() *Version { return V0 }
func (a *Singleton) Copy() BitArray    { return &Singleton{size: a.size} }
