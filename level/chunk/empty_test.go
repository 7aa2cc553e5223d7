package chunk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyChunkProvider(t *testing.T) {
	p, err := NewEmptyChunkProvider(134)
	require.NoError(t, err)
	assert.Equal(t, uint32(134), p.Air())

	s := p.Section()
	require.Len(t, s.Layers(), 1)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, []uint32{134}, s.Layer(0).Palette())

	want, err := NewSectionLayers(134, 1).Bytes()
	require.NoError(t, err)
	assert.Equal(t, want, p.SectionBytes())
	assert.Equal(t, len(want), p.SectionSize())
	var out bytes.Buffer
	_, err = p.WriteSectionTo(&out)
	require.NoError(t, err)
	_, err = p.WriteColumnTo(&out)
	require.NoError(t, err)
	assert.Equal(t, append(want, p.ColumnBytes()...), out.Bytes())

	col := p.ColumnBytes()
	require.Len(t, col, ColumnPadding+3)
	for _, b := range col[:ColumnPadding] {
		require.Zero(t, b)
	}
	// TAG_Compound, empty name, TAG_End.
	assert.Equal(t, []byte{0x0a, 0x00, 0x00}, col[ColumnPadding:])
}

func TestEmptyChunkProviderIsImmutable(t *testing.T) {
	p := MustEmptyChunkProvider(0)
	before := p.SectionBytes()

	s := p.Section()
	require.NoError(t, s.SetFullBlock(0, 0, 0, 0, 1))
	b := p.SectionBytes()
	b[0] = 0xff
	c := p.ColumnBytes()
	c[0] = 0xff

	assert.Equal(t, before, p.SectionBytes())
	assert.True(t, p.Section().IsEmpty())
	assert.Zero(t, p.ColumnBytes()[0])
}

func TestDefaultEmptyChunks(t *testing.T) {
	b := DefaultEmptyChunks.SectionBytes()
	assert.Equal(t, []byte{SectionVersion, 1, 0x05}, b[:3])
	assert.Equal(t, []byte{0x01, 0x00}, b[len(b)-2:])
}
