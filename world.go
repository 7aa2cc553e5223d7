package main

import (
	"fmt"
	"path/filepath"

	"github.com/Tnze/go-mc/level"
	"github.com/Tnze/go-mc/save"
	"github.com/Tnze/go-mc/save/region"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// JavaChunk is one decoded column of a region file.
type JavaChunk struct {
	Position protocol.ChunkPos
	MinY     int
	Chunk    *level.Chunk
}

// RegionPosition parses the region coordinates out of an r.X.Z.mca name.
func RegionPosition(path string) (rx, rz int, err error) {
	if _, err := fmt.Sscanf(filepath.Base(path), "r.%d.%d.mca", &rx, &rz); err != nil {
		return 0, 0, fmt.Errorf("%s is not a region file name: %w", path, err)
	}
	return rx, rz, nil
}

// ReadRegion decodes every stored chunk of a region file and hands it to fn.
// Chunks that fail to decode are reported to bad and skipped.
func ReadRegion(path string, fn func(JavaChunk) error, bad func(x, z int, err error)) error {
	r, err := region.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for z := 0; z < 32; z++ {
		for x := 0; x < 32; x++ {
			if !r.ExistSector(x, z) {
				continue
			}
			data, err := r.ReadSector(x, z)
			if err != nil {
				bad(x, z, err)
				continue
			}
			var c save.Chunk
			if err := c.Load(data); err != nil {
				bad(x, z, err)
				continue
			}
			chunk, err := level.ChunkFromSave(&c)
			if err != nil {
				bad(x, z, err)
				continue
			}
			err = fn(JavaChunk{
				Position: protocol.ChunkPos{c.XPos, c.ZPos},
				MinY:     int(c.YPos) << 4,
				Chunk:    chunk,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
