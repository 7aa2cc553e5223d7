package dump

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftbridge/level/chunk"
	"craftbridge/translate"
)

func TestDump(t *testing.T) {
	s := chunk.NewSection(0)
	require.NoError(t, s.SetFullBlock(1, 2, 3, 0, 44))
	pk, err := translate.NewResult(protocol.ChunkPos{-7, 12}, []*chunk.Section{nil, s}, chunk.DefaultEmptyChunks).Packet()
	require.NoError(t, err)
	empty := translate.EmptyColumnPacket(protocol.ChunkPos{3, 3}, chunk.DefaultEmptyChunks)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, flate.BestCompression)
	require.NoError(t, err)
	require.NoError(t, w.Write(pk))
	require.NoError(t, w.Write(empty))
	assert.Equal(t, 2, w.Records())

	r := NewReader(&buf)
	for _, want := range []*packet.LevelChunk{pk, empty} {
		got, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, want.Position, got.Position)
		assert.Equal(t, want.SubChunkCount, got.SubChunkCount)
		assert.Equal(t, want.RawPayload, got.RawPayload)
	}
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDumpCorrupt(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	require.NoError(t, w.Write(translate.EmptyColumnPacket(protocol.ChunkPos{}, chunk.DefaultEmptyChunks)))
	data := buf.Bytes()

	_, err = NewReader(bytes.NewReader(data[:10])).Next()
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = NewReader(bytes.NewReader(data[:len(data)-1])).Next()
	assert.ErrorIs(t, err, ErrCorrupt)

	huge := append([]byte(nil), data[:16]...)
	huge[12], huge[13], huge[14], huge[15] = 0xff, 0xff, 0xff, 0x7f
	_, err = NewReader(bytes.NewReader(huge)).Next()
	assert.ErrorIs(t, err, ErrRecordTooLarge)
}
