package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockPosition(t *testing.T) {
	assert.Equal(t, 306, BlockPosition(1, 2, 3))

	seen := make(map[int]bool, SectionSize)
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			for z := 0; z < 16; z++ {
				p := BlockPosition(x, y, z)
				require.False(t, seen[p], "(%d, %d, %d) collides", x, y, z)
				require.GreaterOrEqual(t, p, 0)
				require.Less(t, p, SectionSize)
				seen[p] = true
			}
		}
	}
	assert.Len(t, seen, SectionSize)
}

func TestIndexYZXtoXZY(t *testing.T) {
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			for z := 0; z < 16; z++ {
				yzx := y<<8 | z<<4 | x
				require.Equal(t, BlockPosition(x, y, z), IndexYZXtoXZY(yzx))
			}
		}
	}
}

func TestSectionSetGet(t *testing.T) {
	s := NewSection(0)
	require.Len(t, s.Layers(), DefaultLayers)
	assert.True(t, s.IsEmpty())

	require.NoError(t, s.SetFullBlock(1, 2, 3, LayerBlocks, 42))
	require.NoError(t, s.SetFullBlock(1, 2, 3, LayerLiquid, 9))

	v, err := s.FullBlock(1, 2, 3, LayerBlocks)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)
	v, err = s.Layer(LayerBlocks).FullBlock(306)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)
	v, err = s.FullBlock(1, 2, 3, LayerLiquid)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), v)
	v, err = s.FullBlock(3, 2, 1, LayerBlocks)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)
	assert.False(t, s.IsEmpty())
}

func TestSectionBounds(t *testing.T) {
	s := NewSection(0)
	tests := []struct {
		name           string
		x, y, z, layer int
	}{
		{"x high", 16, 0, 0, 0},
		{"y high", 0, 16, 0, 0},
		{"z high", 0, 0, 16, 0},
		{"x negative", -1, 0, 0, 0},
		{"layer high", 0, 0, 0, DefaultLayers},
		{"layer negative", 0, 0, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.SetFullBlock(tt.x, tt.y, tt.z, tt.layer, 1), ErrOutOfBounds)
			_, err := s.FullBlock(tt.x, tt.y, tt.z, tt.layer)
			assert.ErrorIs(t, err, ErrOutOfBounds)
		})
	}
	assert.True(t, s.IsEmpty())
	assert.Nil(t, s.Layer(5))
}

func TestSectionWriteTo(t *testing.T) {
	s := NewSection(0)
	require.NoError(t, s.SetFullBlock(0, 0, 0, LayerBlocks, 5))

	b, err := s.Bytes()
	require.NoError(t, err)

	l0 := NewBuffer(0)
	require.NoError(t, s.Layer(LayerBlocks).WriteTo(l0))
	l1 := NewBuffer(0)
	require.NoError(t, s.Layer(LayerLiquid).WriteTo(l1))

	want := append([]byte{SectionVersion, DefaultLayers}, l0.Bytes()...)
	want = append(want, l1.Bytes()...)
	assert.Equal(t, want, b)
	assert.LessOrEqual(t, len(b), s.EstimateNetworkSize())
}

func TestSectionCopyIsIndependent(t *testing.T) {
	s := NewSection(0)
	require.NoError(t, s.SetFullBlock(4, 4, 4, LayerBlocks, 1))
	c := s.Copy()
	require.NoError(t, c.SetFullBlock(4, 4, 4, LayerBlocks, 2))
	require.NoError(t, c.SetFullBlock(4, 4, 4, LayerLiquid, 3))

	v, err := s.FullBlock(4, 4, 4, LayerBlocks)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)
	assert.True(t, s.Layer(LayerLiquid).IsEmpty())

	v, err = c.FullBlock(4, 4, 4, LayerBlocks)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), v)
}

func TestSectionLayerCount(t *testing.T) {
	assert.Len(t, NewSectionLayers(0, 1).Layers(), 1)
	assert.Len(t, NewSectionLayers(0, 0).Layers(), 1)
	assert.Len(t, NewSectionFrom(NewBlockStorage(0)).Layers(), 1)
}

func TestSectionEnsureLayers(t *testing.T) {
	s := NewSectionLayers(3, 1)
	s.EnsureLayers(3, DefaultLayers)
	require.Len(t, s.Layers(), DefaultLayers)
	assert.Equal(t, []uint32{3}, s.Layer(LayerLiquid).Palette())

	s.EnsureLayers(3, 1)
	assert.Len(t, s.Layers(), DefaultLayers)
}

func TestSectionEmptyAfterOverwrite(t *testing.T) {
	s := NewSection(0)
	require.NoError(t, s.SetFullBlock(1, 2, 3, LayerBlocks, 5))
	require.NoError(t, s.SetFullBlock(4, 4, 4, LayerLiquid, 9))
	assert.False(t, s.IsEmpty())

	require.NoError(t, s.SetFullBlock(1, 2, 3, LayerBlocks, 0))
	assert.False(t, s.IsEmpty())
	require.NoError(t, s.SetFullBlock(4, 4, 4, LayerLiquid, 0))
	assert.True(t, s.IsEmpty())
}
