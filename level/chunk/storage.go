package chunk

import (
	"errors"
	"fmt"

	"craftbridge/level/bitarray"
)

// SectionSize is the number of blocks in one 16x16x16 section.
const SectionSize = 16 * 16 * 16

// DefaultVersion is the width a fresh BlockStorage starts at.
var DefaultVersion = bitarray.V2

var (
	ErrPaletteOverflow = errors.New("chunk: palette exceeds the widest bit array version")
	ErrPalette         = errors.New("chunk: invalid palette")
)

// BlockStorage is one layer of a section: a palette of runtime ids plus a
// bit array of palette indices, one per block.
//
// Index 0 of the palette is always air, so an all-zero bit array is an
// all-air storage.
//
// BlockStorage has no lock of its own. Get, set and the resize a set may
// trigger replace internal state, so callers that share a storage between
// goroutines must hold one lock around all of them and around Copy. The lock
// must not be held across network I/O. Column does this for cached chunks.
type BlockStorage struct {
	palette []uint32
	data    bitarray.BitArray
}

// NewBlockStorage returns an all-air storage using DefaultVersion.
func NewBlockStorage(air uint32) *BlockStorage {
	return NewBlockStorageWithVersion(air, DefaultVersion)
}

func NewBlockStorageWithVersion(air uint32, v *bitarray.Version) *BlockStorage {
	palette := make([]uint32, 1, min(int(v.MaxEntryValue())+1, SectionSize))
	palette[0] = air
	return &BlockStorage{palette: palette, data: v.CreateArray(SectionSize)}
}

// NewBlockStorageFrom wraps an existing bit array and palette. The palette
// must start with air, hold no duplicates and fit the array's version.
func NewBlockStorageFrom(data bitarray.BitArray, palette []uint32) (*BlockStorage, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrPalette)
	}
	if data.Size() != SectionSize {
		return nil, fmt.Errorf("%w: bit array holds %d entries", ErrPalette, data.Size())
	}
	if uint32(len(palette)-1) > data.Version().MaxEntryValue() {
		return nil, fmt.Errorf("%w: %d entries do not fit %v", ErrPalette, len(palette), data.Version())
	}
	seen := make(map[uint32]struct{}, len(palette))
	for _, id := range palette {
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: duplicate runtime id %d", ErrPalette, id)
		}
		seen[id] = struct{}{}
	}
	return &BlockStorage{palette: palette, data: data}, nil
}

// FullBlock returns the runtime id stored at index.
func (s *BlockStorage) FullBlock(index int) (uint32, error) {
	i, err := s.data.Get(index)
	if err != nil {
		return 0, err
	}
	if int(i) >= len(s.palette) {
		panic(fmt.Sprintf("chunk: palette index %d out of %d entries", i, len(s.palette)))
	}
	return s.palette[i], nil
}

// SetFullBlock stores runtimeID at index, growing the palette and resizing
// the bit array if needed. A resize is O(SectionSize).
func (s *BlockStorage) SetFullBlock(index int, runtimeID uint32) error {
	if index < 0 || index >= SectionSize {
		return fmt.Errorf("%w: %d not in [0,%d)", bitarray.ErrIndexOutOfRange, index, SectionSize)
	}
	i, err := s.idFor(runtimeID)
	if err != nil {
		return err
	}
	return s.data.Set(index, i)
}

func (s *BlockStorage) idFor(runtimeID uint32) (uint32, error) {
	for i, id := range s.palette {
		if id == runtimeID {
			return uint32(i), nil
		}
	}
	i := uint32(len(s.palette))
	if i > s.data.Version().MaxEntryValue() {
		// Grow before appending so a failed resize leaves the palette intact.
		if err := s.grow(s.data.Version().Next()); err != nil {
			return 0, err
		}
	}
	s.palette = append(s.palette, runtimeID)
	return i, nil
}

func (s *BlockStorage) grow(next *bitarray.Version) error {
	if next == nil {
		return fmt.Errorf("%w: %d entries", ErrPaletteOverflow, len(s.palette)+1)
	}
	data := next.CreateArray(s.data.Size())
	for i := 0; i < s.data.Size(); i++ {
		if err := data.Set(i, bitarray.MustGet(s.data, i)); err != nil {
			return err
		}
	}
	s.data = data
	return nil
}

// WriteTo serializes the storage in runtime id mode.
func (s *BlockStorage) WriteTo(w Writer) error {
	if err := w.WriteByte(s.data.Version().PaletteHeader(true)); err != nil {
		return err
	}
	for _, word := range s.data.Words() {
		if err := w.WriteWordLE(word); err != nil {
			return err
		}
	}
	// Palette length and ids are unsigned varints. Clients that expect
	// zig-zag varints decode every id doubled, so this encoding is a
	// compatibility constant.
	if err := w.WriteVarUint(uint32(len(s.palette))); err != nil {
		return err
	}
	for _, id := range s.palette {
		if err := w.WriteVarUint(id); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether every block is air. Air is palette index 0, so
// all-zero words are all air even when stale palette entries remain.
func (s *BlockStorage) IsEmpty() bool {
	if len(s.palette) == 1 {
		return true
	}
	for _, word := range s.data.Words() {
		if word != 0 {
			return false
		}
	}
	return true
}

func (s *BlockStorage) Copy() *BlockStorage {
	palette := make([]uint32, len(s.palette))
	copy(palette, s.palette)
	return &BlockStorage{palette: palette, data: s.data.Copy()}
}

// Palette returns a copy of the palette in insertion order.
func (s *BlockStorage) Palette() []uint32 {
	return append([]uint32(nil), s.palette...)
}

func (s *BlockStorage) Version() *bitarray.Version {
	return s.data.Version()
}

// EstimateNetworkSize is an upper bound of the bytes WriteTo produces.
func (s *BlockStorage) EstimateNetworkSize() int {
	return 1 + len(s.data.Words())*4 + 5 + len(s.palette)*5
}
