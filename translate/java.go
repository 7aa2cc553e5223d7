// Package translate turns Java edition chunk columns into Bedrock level
// chunk payloads.
package translate

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/Tnze/go-mc/level"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"

	"craftbridge/level/bitarray"
	"craftbridge/level/chunk"
)

const (
	// MinimumAcceptedHeight is the lowest block the Bedrock client accepts
	// outside the overworld.
	MinimumAcceptedHeight          = 0
	MinimumAcceptedHeightOverworld = -64
	// MaximumAcceptedHeight is measured from the lowest accepted block.
	MaximumAcceptedHeight          = 256
	MaximumAcceptedHeightOverworld = 384
)

var ErrSection = errors.New("translate: cannot translate section")

// Bounds maps Java section indices onto Bedrock ones.
type Bounds struct {
	// JavaMinY is the world's minimum block height, a multiple of 16.
	JavaMinY int
	// ExtendedHeight is set in the overworld, where Bedrock accepts -64..320.
	ExtendedHeight bool
}

// MinY is the lowest block height the Bedrock client accepts.
func (b Bounds) MinY() int {
	if b.ExtendedHeight {
		return MinimumAcceptedHeightOverworld
	}
	return MinimumAcceptedHeight
}

// MaxSections is the number of Bedrock sections a column may hold.
func (b Bounds) MaxSections() int {
	if b.ExtendedHeight {
		return MaximumAcceptedHeightOverworld >> 4
	}
	return MaximumAcceptedHeight >> 4
}

// BedrockSection returns the Bedrock section index for a Java section index.
// ok is false when the section falls outside what the client accepts.
func (b Bounds) BedrockSection(javaSection int) (index int, ok bool) {
	index = javaSection + (b.JavaMinY>>4 - b.MinY()>>4)
	return index, index >= 0 && index < b.MaxSections()
}

// Result is a translated column. Sections is indexed by Bedrock section and
// nil entries are void.
type Result struct {
	Position protocol.ChunkPos
	Sections []*chunk.Section

	empty *chunk.EmptyChunkProvider
}

// NewResult wraps already built sections, for example a cached column.
func NewResult(pos protocol.ChunkPos, sections []*chunk.Section, empty *chunk.EmptyChunkProvider) *Result {
	return &Result{Position: pos, Sections: sections, empty: empty}
}

// Translator converts Java columns using one set of mappings.
type Translator struct {
	Mappings *Mappings
	Bounds   Bounds
	Empty    *chunk.EmptyChunkProvider
}

func NewTranslator(m *Mappings, b Bounds) (*Translator, error) {
	empty, err := chunk.NewEmptyChunkProvider(m.Air)
	if err != nil {
		return nil, err
	}
	return &Translator{Mappings: m, Bounds: b, Empty: empty}, nil
}

// Column translates every populated section of c.
func (t *Translator) Column(pos protocol.ChunkPos, c *level.Chunk) (*Result, error) {
	res := &Result{
		Position: pos,
		Sections: make([]*chunk.Section, t.Bounds.MaxSections()),
		empty:    t.Empty,
	}
	for i := range c.Sections {
		java := &c.Sections[i]
		index, ok := t.Bounds.BedrockSection(i)
		if !ok || java.BlockCount == 0 || java.States == nil {
			continue
		}
		section, err := t.Section(java)
		if err != nil {
			return nil, fmt.Errorf("%w %d of column %v: %v", ErrSection, i, pos, err)
		}
		res.Sections[index] = section
	}
	return res, nil
}

// Section translates one Java section. Java sections are indexed YZX and
// Bedrock sections XZY. Waterlogged blocks add a liquid layer holding water.
func (t *Translator) Section(java *level.Section) (*chunk.Section, error) {
	m := t.Mappings

	var ids [chunk.SectionSize]uint32
	translated := make(map[level.BlocksState]uint32)
	distinct := make(map[uint32]struct{})
	waterlogged := false
	for yzx := range ids {
		state := java.States.Get(yzx)
		id, ok := translated[state]
		if !ok {
			id = m.BedrockID(int(state))
			translated[state] = id
			if id != m.Air {
				distinct[id] = struct{}{}
			}
		}
		ids[chunk.IndexYZXtoXZY(yzx)] = id
		waterlogged = waterlogged || m.IsWaterlogged(int(state))
	}

	// Air takes palette index 0, so the highest index is len(distinct).
	version := chunk.DefaultVersion
	if v, ok := bitarray.ForBitsCeil(bits.Len(uint(len(distinct)))); ok && len(distinct) > 0 {
		version = v
	}
	blocks := chunk.NewBlockStorageWithVersion(m.Air, version)
	for xzy, id := range ids[:] {
		if id == m.Air {
			continue
		}
		if err := blocks.SetFullBlock(xzy, id); err != nil {
			return nil, err
		}
	}
	if !waterlogged {
		return chunk.NewSectionFrom(blocks), nil
	}

	liquid := chunk.NewBlockStorageWithVersion(m.Air, bitarray.V1)
	for yzx := 0; yzx < chunk.SectionSize; yzx++ {
		if !m.IsWaterlogged(int(java.States.Get(yzx))) {
			continue
		}
		if err := liquid.SetFullBlock(chunk.IndexYZXtoXZY(yzx), m.Water); err != nil {
			return nil, err
		}
	}
	return chunk.NewSectionFrom(blocks, liquid), nil
}

// SubChunkCount is one past the highest non-void section. All-air sections
// count but are written as the empty section.
func (r *Result) SubChunkCount() int {
	n := len(r.Sections)
	for n > 0 && r.Sections[n-1] == nil {
		n--
	}
	return n
}

// Payload encodes the sections followed by the empty biome, border, extra
// data and block entity regions.
func (r *Result) Payload() ([]byte, error) {
	count := r.SubChunkCount()
	size := chunk.ColumnPadding + 3
	for _, s := range r.Sections[:count] {
		if s == nil || s.IsEmpty() {
			size += r.empty.SectionSize()
		} else {
			size += s.EstimateNetworkSize()
		}
	}

	buf := chunk.NewBuffer(size)
	for i, s := range r.Sections[:count] {
		if s == nil || s.IsEmpty() {
			if _, err := r.empty.WriteSectionTo(buf); err != nil {
				return nil, err
			}
			continue
		}
		if err := s.WriteTo(buf); err != nil {
			return nil, fmt.Errorf("translate: writing section %d: %w", i, err)
		}
	}
	if _, err := r.empty.WriteColumnTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Packet builds the level chunk packet for the column.
func (r *Result) Packet() (*packet.LevelChunk, error) {
	payload, err := r.Payload()
	if err != nil {
		return nil, err
	}
	return &packet.LevelChunk{
		Position:      r.Position,
		SubChunkCount: uint32(r.SubChunkCount()),
		CacheEnabled:  false,
		RawPayload:    payload,
	}, nil
}

// EmptyColumnPacket is a column with no sections, used to clear chunks on
// the client.
func EmptyColumnPacket(pos protocol.ChunkPos, empty *chunk.EmptyChunkProvider) *packet.LevelChunk {
	return &packet.LevelChunk{
		Position:      pos,
		SubChunkCount: 0,
		CacheEnabled:  false,
		RawPayload:    empty.ColumnBytes(),
	}
}
