package cache

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftbridge/level/chunk"
	"craftbridge/translate"
)

var overworld = translate.Bounds{JavaMinY: -64, ExtendedHeight: true}

func column(pos protocol.ChunkPos, sections ...*chunk.Section) *translate.Result {
	return translate.NewResult(pos, sections, chunk.DefaultEmptyChunks)
}

func newCache(t *testing.T, maxColumns int, empty *chunk.EmptyChunkProvider) *Cache {
	t.Helper()
	c, err := New(uuid.New(), maxColumns, overworld, empty, nil)
	require.NoError(t, err)
	return c
}

func TestCacheEvictsOldest(t *testing.T) {
	c := newCache(t, 2, chunk.DefaultEmptyChunks)
	a, b, d := protocol.ChunkPos{0, 0}, protocol.ChunkPos{1, 0}, protocol.ChunkPos{2, 0}

	c.Store(column(a))
	c.Store(column(b))
	c.Store(column(a))
	c.Store(column(d))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []protocol.ChunkPos{a, d}, c.Positions())
	_, ok := c.Column(b)
	assert.False(t, ok)

	assert.True(t, c.Remove(a))
	assert.False(t, c.Remove(a))
	assert.Equal(t, 1, c.Len())
}

func TestCacheUpdateBlock(t *testing.T) {
	c := newCache(t, 0, chunk.DefaultEmptyChunks)
	pos := protocol.ChunkPos{-1, 2}
	c.Store(column(pos))

	// x -3 is local 13 of chunk -1, y -60 is section 0, z 37 is local 5.
	require.NoError(t, c.UpdateBlock(-3, -60, 37, chunk.LayerBlocks, 42))
	require.NoError(t, c.UpdateBlock(-3, -60, 37, chunk.LayerLiquid, 9))

	sections, ok := c.Snapshot(pos)
	require.True(t, ok)
	require.Len(t, sections, overworld.MaxSections())
	require.NotNil(t, sections[0])
	for _, s := range sections[1:] {
		assert.Nil(t, s)
	}
	id, err := sections[0].FullBlock(13, 4, 5, chunk.LayerBlocks)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), id)
	id, err = sections[0].FullBlock(13, 4, 5, chunk.LayerLiquid)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), id)

	// The snapshot is detached from the cache.
	require.NoError(t, sections[0].SetFullBlock(0, 0, 0, 0, 7))
	again, _ := c.Snapshot(pos)
	id, err = again[0].FullBlock(0, 0, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestCacheUpdateBlockErrors(t *testing.T) {
	c := newCache(t, 0, chunk.DefaultEmptyChunks)
	assert.ErrorIs(t, c.UpdateBlock(0, 0, 0, 0, 1), ErrNoColumn)

	c.Store(column(protocol.ChunkPos{}))
	assert.ErrorIs(t, c.UpdateBlock(0, -65, 0, 0, 1), chunk.ErrOutOfBounds)
	assert.ErrorIs(t, c.UpdateBlock(0, 320, 0, 0, 1), chunk.ErrOutOfBounds)
	assert.ErrorIs(t, c.UpdateBlock(0, 0, 0, chunk.DefaultLayers, 1), chunk.ErrOutOfBounds)
	assert.NoError(t, c.UpdateBlock(0, 319, 0, 0, 1))
}

func TestCachePacket(t *testing.T) {
	c := newCache(t, 0, chunk.DefaultEmptyChunks)
	pos := protocol.ChunkPos{4, 4}
	_, err := c.Packet(pos)
	assert.ErrorIs(t, err, ErrNoColumn)

	c.Store(column(pos))
	pk, err := c.Packet(pos)
	require.NoError(t, err)
	assert.Zero(t, pk.SubChunkCount)
	assert.Equal(t, chunk.DefaultEmptyChunks.ColumnBytes(), pk.RawPayload)

	require.NoError(t, c.UpdateBlock(64, 0, 64, 0, 5))
	pk, err = c.Packet(pos)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), pk.SubChunkCount)
}

func TestCacheConcurrentUpdates(t *testing.T) {
	c := newCache(t, 0, chunk.DefaultEmptyChunks)
	pos := protocol.ChunkPos{}
	c.Store(column(pos))

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 256; i++ {
				assert.NoError(t, c.UpdateBlock(i&15, worker, i>>4, 0, uint32(worker*256+i+1)))
			}
		}(worker)
	}
	wg.Wait()

	sections, _ := c.Snapshot(pos)
	for worker := 0; worker < 8; worker++ {
		for i := 0; i < 256; i++ {
			id, err := sections[4].FullBlock(i&15, worker, i>>4, 0)
			require.NoError(t, err)
			require.Equal(t, uint32(worker*256+i+1), id)
		}
	}
}

func TestCacheRequiresProvider(t *testing.T) {
	_, err := New(uuid.New(), 0, overworld, nil, nil)
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestCacheAllocatesWithProviderAir(t *testing.T) {
	empty := chunk.MustEmptyChunkProvider(134)
	c := newCache(t, 0, empty)
	pos := protocol.ChunkPos{}
	c.Store(translate.NewResult(pos, nil, empty))
	require.NoError(t, c.UpdateBlock(0, 0, 0, chunk.LayerBlocks, 5))

	sections, ok := c.Snapshot(pos)
	require.True(t, ok)
	id, err := sections[4].FullBlock(1, 0, 0, chunk.LayerBlocks)
	require.NoError(t, err)
	assert.Equal(t, uint32(134), id)
	id, err = sections[4].FullBlock(0, 0, 0, chunk.LayerLiquid)
	require.NoError(t, err)
	assert.Equal(t, uint32(134), id)
}
