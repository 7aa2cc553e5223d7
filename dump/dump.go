// Package dump stores encoded level chunk packets in a flat file. Each record
// is a little endian header followed by the raw deflate compressed payload.
package dump

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// MaxRecordSize bounds the compressed length accepted by Reader.
const MaxRecordSize = 16 << 20

var (
	ErrCorrupt        = errors.New("dump: corrupt record")
	ErrRecordTooLarge = errors.New("dump: record too large")
)

type header struct {
	X             int32
	Z             int32
	SubChunkCount uint32
	Length        uint32
}

type Writer struct {
	out   io.Writer
	buf   bytes.Buffer
	flate *flate.Writer
	n     int
}

// NewWriter returns a Writer compressing with the given flate level.
func NewWriter(w io.Writer, level int) (*Writer, error) {
	fw, err := flate.NewWriter(nil, level)
	if err != nil {
		return nil, err
	}
	return &Writer{out: w, flate: fw}, nil
}

func (w *Writer) Write(pk *packet.LevelChunk) error {
	w.buf.Reset()
	w.flate.Reset(&w.buf)
	if _, err := w.flate.Write(pk.RawPayload); err != nil {
		return err
	}
	if err := w.flate.Close(); err != nil {
		return err
	}

	h := header{
		X:             pk.Position.X(),
		Z:             pk.Position.Z(),
		SubChunkCount: pk.SubChunkCount,
		Length:        uint32(w.buf.Len()),
	}
	if err := binary.Write(w.out, binary.LittleEndian, h); err != nil {
		return err
	}
	if _, err := w.buf.WriteTo(w.out); err != nil {
		return err
	}
	w.n++
	return nil
}

// Records is the number of records written so far.
func (w *Writer) Records() int { return w.n }

type Reader struct {
	in io.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{in: r}
}

// Next reads the following record. It returns io.EOF once the input ends on a
// record boundary.
func (r *Reader) Next() (*packet.LevelChunk, error) {
	var h header
	if err := binary.Read(r.in, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
		}
		return nil, err
	}
	if h.Length > MaxRecordSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, h.Length)
	}

	compressed := make([]byte, h.Length)
	if _, err := io.ReadFull(r.in, compressed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	fr := flate.NewReader(bytes.NewReader(compressed))
	defer fr.Close()
	payload, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &packet.LevelChunk{
		Position:      protocol.ChunkPos{h.X, h.Z},
		SubChunkCount: h.SubChunkCount,
		RawPayload:    payload,
	}, nil
}
