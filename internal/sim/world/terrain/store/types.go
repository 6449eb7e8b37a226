package store

import (
	"crypto/sha256"
	"encoding/binary"
)

type ChunkKey struct {
	CX int
	CZ int
}

type Chunk struct {
	CX, CZ int
	Height int
	Blocks []uint16 // len = 16*16*Height, x fastest, then z, then y

	dirty bool
	hash  [32]byte
}

func (c *Chunk) index(x, y, z int) int {
	return x + z*16 + y*16*16
}

func (c *Chunk) Get(x, y, z int) uint16 {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b uint16) {
	i := c.index(x, y, z)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.dirty = true
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

type WorldGen struct {
	Seed      int64
	Height    int
	BoundaryR int // blocks, 0 = unbounded

	FloorDepth        int // solid stone layers at the bottom
	SurfaceVariation  int // extra terrain layers above the floor
	BasinGridSize     int
	BasinRadius       int
	BasinProbPermille int
	PlantPermille     int

	Air   uint16
	Stone uint16
	Dirt  uint16
	Grass uint16
	Sand  uint16
	Water uint16
	Reed  uint16
}

type ChunkStore struct {
	Gen    WorldGen
	Chunks map[ChunkKey]*Chunk
}

func NewChunkStore(gen WorldGen) *ChunkStore {
	if gen.Height <= 0 {
		gen.Height = 64
	}
	if gen.FloorDepth <= 0 {
		gen.FloorDepth = 4
	}
	return &ChunkStore{
		Gen:    gen,
		Chunks: map[ChunkKey]*Chunk{},
	}
}
