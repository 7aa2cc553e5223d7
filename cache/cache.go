// Package cache keeps the Bedrock columns sent to one session so that block
// updates can be applied and columns resent without translating again.
package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"craftbridge/level/chunk"
	"craftbridge/logger"
	"craftbridge/translate"
)

var (
	ErrNoColumn   = errors.New("cache: column not loaded")
	ErrNoProvider = errors.New("cache: empty chunk provider required")
)

// Column is one cached column. The embedded mutex guards Sections and every
// BlockStorage inside them; hold it for any read or write.
type Column struct {
	sync.Mutex
	Position protocol.ChunkPos
	Sections []*chunk.Section
}

// Cache holds columns in insertion order and evicts the oldest once more than
// MaxColumns are stored. A MaxColumns of zero or less disables eviction.
type Cache struct {
	Owner      uuid.UUID
	MaxColumns int

	mu      sync.RWMutex
	columns *orderedmap.OrderedMap[protocol.ChunkPos, *Column]
	bounds  translate.Bounds
	empty   *chunk.EmptyChunkProvider
	log     *logger.Logger
}

// New returns an empty cache. New sections are filled with empty's air id, so
// it must be the provider the cached columns were translated with.
func New(owner uuid.UUID, maxColumns int, bounds translate.Bounds, empty *chunk.EmptyChunkProvider, log *logger.Logger) (*Cache, error) {
	if empty == nil {
		return nil, ErrNoProvider
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{
		Owner:      owner,
		MaxColumns: maxColumns,
		columns:    orderedmap.New[protocol.ChunkPos, *Column](),
		bounds:     bounds,
		empty:      empty,
		log:        log.With(owner.String()),
	}, nil
}

// Store caches a translated column, replacing any column at the same
// position. The cache takes ownership of the result's sections.
func (c *Cache) Store(res *translate.Result) {
	sections := make([]*chunk.Section, c.bounds.MaxSections())
	copy(sections, res.Sections)
	col := &Column{Position: res.Position, Sections: sections}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, replaced := c.columns.Set(res.Position, col); replaced {
		_ = c.columns.MoveToBack(res.Position)
	}
	for c.MaxColumns > 0 && c.columns.Len() > c.MaxColumns {
		oldest := c.columns.Oldest()
		c.columns.Delete(oldest.Key)
		c.log.Debug("Evicted column %v", oldest.Key)
	}
}

func (c *Cache) Column(pos protocol.ChunkPos) (*Column, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.columns.Get(pos)
}

func (c *Cache) Remove(pos protocol.ChunkPos) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.columns.Delete(pos)
	return ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.columns.Len()
}

// Positions lists cached columns from oldest to newest.
func (c *Cache) Positions() []protocol.ChunkPos {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]protocol.ChunkPos, 0, c.columns.Len())
	for pair := c.columns.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// UpdateBlock sets the block at world coordinates x, y, z on the given layer.
// A void section is allocated as an empty section first.
func (c *Cache) UpdateBlock(x, y, z, layer int, runtimeID uint32) error {
	pos := protocol.ChunkPos{int32(x >> 4), int32(z >> 4)}
	col, ok := c.Column(pos)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoColumn, pos)
	}
	index := (y - c.bounds.MinY()) >> 4
	if y < c.bounds.MinY() || index >= len(col.Sections) {
		return fmt.Errorf("%w: height %d", chunk.ErrOutOfBounds, y)
	}

	col.Lock()
	defer col.Unlock()
	section := col.Sections[index]
	if section == nil {
		section = chunk.NewSectionLayers(c.empty.Air(), chunk.DefaultLayers)
		col.Sections[index] = section
	}
	if layer < chunk.DefaultLayers {
		section.EnsureLayers(c.empty.Air(), layer+1)
	}
	return section.SetFullBlock(x&15, (y-c.bounds.MinY())&15, z&15, layer, runtimeID)
}

// Snapshot returns deep copies of a column's sections.
func (c *Cache) Snapshot(pos protocol.ChunkPos) ([]*chunk.Section, bool) {
	col, ok := c.Column(pos)
	if !ok {
		return nil, false
	}
	col.Lock()
	defer col.Unlock()
	out := make([]*chunk.Section, len(col.Sections))
	for i, s := range col.Sections {
		if s != nil {
			out[i] = s.Copy()
		}
	}
	return out, true
}

// Packet encodes the current state of a cached column.
func (c *Cache) Packet(pos protocol.ChunkPos) (*packet.LevelChunk, error) {
	sections, ok := c.Snapshot(pos)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoColumn, pos)
	}
	return translate.NewResult(pos, sections, c.empty).Packet()
}
