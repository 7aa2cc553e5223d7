package chunk

import (
	"fmt"
	"io"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// ColumnPadding is the size of the zeroed biome, border and extra data block
// that follows the sections of a column: 256 biome ids, the border block
// count and the extra data count.
const ColumnPadding = 256 + 1 + 1

// EmptyChunkProvider caches an all-air section and the serialized forms used
// for void sections and columns. It is immutable once built.
type EmptyChunkProvider struct {
	air          uint32
	section      *Section
	sectionBytes []byte
	columnBytes  []byte
}

// DefaultEmptyChunks is the provider for air runtime id 0.
var DefaultEmptyChunks = MustEmptyChunkProvider(0)

func NewEmptyChunkProvider(air uint32) (*EmptyChunkProvider, error) {
	section := NewSectionLayers(air, 1)
	sectionBytes, err := section.Bytes()
	if err != nil {
		return nil, fmt.Errorf("chunk: serializing empty section: %w", err)
	}
	tag, err := nbt.MarshalEncoding(map[string]any{}, nbt.NetworkLittleEndian)
	if err != nil {
		return nil, fmt.Errorf("chunk: encoding empty compound: %w", err)
	}
	columnBytes := make([]byte, ColumnPadding, ColumnPadding+len(tag))
	columnBytes = append(columnBytes, tag...)

	return &EmptyChunkProvider{
		air:          air,
		section:      section,
		sectionBytes: sectionBytes,
		columnBytes:  columnBytes,
	}, nil
}

// MustEmptyChunkProvider is NewEmptyChunkProvider for package initialisation.
func MustEmptyChunkProvider(air uint32) *EmptyChunkProvider {
	p, err := NewEmptyChunkProvider(air)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *EmptyChunkProvider) Air() uint32 { return p.air }

// Section returns a fresh copy of the empty section that callers may modify.
func (p *EmptyChunkProvider) Section() *Section {
	return p.section.Copy()
}

// SectionBytes returns the wire form of the empty section.
func (p *EmptyChunkProvider) SectionBytes() []byte {
	return append([]byte(nil), p.sectionBytes...)
}

// WriteSectionTo writes the empty section's wire form to w.
func (p *EmptyChunkProvider) WriteSectionTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.sectionBytes)
	return int64(n), err
}

// ColumnBytes returns the payload of a column with no sections.
func (p *EmptyChunkProvider) ColumnBytes() []byte {
	return append([]byte(nil), p.columnBytes...)
}

// WriteColumnTo writes the empty column payload to w.
func (p *EmptyChunkProvider) WriteColumnTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.columnBytes)
	return int64(n), err
}

func (p *EmptyChunkProvider) SectionSize() int { return len(p.sectionBytes) }
