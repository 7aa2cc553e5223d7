package chunk

import (
	"bytes"
	"encoding/binary"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Writer is the byte sink storages and sections serialize into.
type Writer interface {
	WriteByte(b byte) error
	WriteWordLE(w uint32) error
	WriteVarUint(v uint32) error
}

// Buffer is a Writer over an in-memory buffer.
type Buffer struct {
	bytes.Buffer
	word [4]byte
}

// NewBuffer returns a Buffer with room for size bytes.
func NewBuffer(size int) *Buffer {
	b := &Buffer{}
	b.Grow(size)
	return b
}

func (b *Buffer) WriteWordLE(w uint32) error {
	binary.LittleEndian.PutUint32(b.word[:], w)
	_, err := b.Write(b.word[:])
	return err
}

func (b *Buffer) WriteVarUint(v uint32) error {
	return protocol.WriteVaruint32(&b.Buffer, v)
}
