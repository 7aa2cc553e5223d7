// Package chunk implements Bedrock sub chunk storage and its network
// encoding.
package chunk

import (
	"errors"
	"fmt"
)

// SectionVersion is the sub chunk format written by Section.WriteTo.
const SectionVersion = 8

const (
	LayerBlocks = iota
	LayerLiquid

	DefaultLayers
)

var ErrOutOfBounds = errors.New("chunk: position out of bounds")

// BlockPosition returns the XZY index of a block within a section. Y varies
// fastest, then Z, then X. The Bedrock client reads sections in this order.
func BlockPosition(x, y, z int) int {
	return x<<8 | z<<4 | y
}

// IndexYZXtoXZY converts a Java section index into a Bedrock one.
func IndexYZXtoXZY(yzx int) int {
	return yzx>>8 | yzx&0x0F0 | (yzx&0x00F)<<8
}

// Section is a 16x16x16 volume made of parallel block storage layers.
// A section is owned by a single column and is not safe for concurrent use.
type Section struct {
	layers []*BlockStorage
}

// NewSection returns an all-air section with a block and a liquid layer.
func NewSection(air uint32) *Section {
	return NewSectionLayers(air, DefaultLayers)
}

func NewSectionLayers(air uint32, layers int) *Section {
	if layers < 1 {
		layers = 1
	}
	s := &Section{layers: make([]*BlockStorage, layers)}
	for i := range s.layers {
		s.layers[i] = NewBlockStorage(air)
	}
	return s
}

// NewSectionFrom wraps existing layers. The slice is owned by the section
// afterwards.
func NewSectionFrom(layers ...*BlockStorage) *Section {
	return &Section{layers: layers}
}

func (s *Section) check(x, y, z, layer int) error {
	if x < 0 || x > 15 || y < 0 || y > 15 || z < 0 || z > 15 {
		return fmt.Errorf("%w: (%d, %d, %d)", ErrOutOfBounds, x, y, z)
	}
	if layer < 0 || layer >= len(s.layers) {
		return fmt.Errorf("%w: layer %d of %d", ErrOutOfBounds, layer, len(s.layers))
	}
	return nil
}

func (s *Section) FullBlock(x, y, z, layer int) (uint32, error) {
	if err := s.check(x, y, z, layer); err != nil {
		return 0, err
	}
	return s.layers[layer].FullBlock(BlockPosition(x, y, z))
}

func (s *Section) SetFullBlock(x, y, z, layer int, runtimeID uint32) error {
	if err := s.check(x, y, z, layer); err != nil {
		return err
	}
	return s.layers[layer].SetFullBlock(BlockPosition(x, y, z), runtimeID)
}

// Layers returns the section's storages. Modifying them modifies the section.
func (s *Section) Layers() []*BlockStorage {
	return s.layers
}

// EnsureLayers appends all-air layers until the section has at least n.
func (s *Section) EnsureLayers(air uint32, n int) {
	for len(s.layers) < n {
		s.layers = append(s.layers, NewBlockStorage(air))
	}
}

// Layer returns the storage at i, or nil if the section has no such layer.
func (s *Section) Layer(i int) *BlockStorage {
	if i < 0 || i >= len(s.layers) {
		return nil
	}
	return s.layers[i]
}

// WriteTo writes the version byte, the layer count and every layer.
func (s *Section) WriteTo(w Writer) error {
	if err := w.WriteByte(SectionVersion); err != nil {
		return err
	}
	if err := w.WriteByte(byte(len(s.layers))); err != nil {
		return err
	}
	for i, l := range s.layers {
		if err := l.WriteTo(w); err != nil {
			return fmt.Errorf("chunk: writing layer %d: %w", i, err)
		}
	}
	return nil
}

// Bytes serializes the section into a new byte slice.
func (s *Section) Bytes() ([]byte, error) {
	buf := NewBuffer(s.EstimateNetworkSize())
	if err := s.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Section) IsEmpty() bool {
	for _, l := range s.layers {
		if !l.IsEmpty() {
			return false
		}
	}
	return true
}

func (s *Section) Copy() *Section {
	layers := make([]*BlockStorage, len(s.layers))
	for i, l := range s.layers {
		layers[i] = l.Copy()
	}
	return &Section{layers: layers}
}

func (s *Section) EstimateNetworkSize() int {
	size := 2
	for _, l := range s.layers {
		size += l.EstimateNetworkSize()
	}
	return size
}
