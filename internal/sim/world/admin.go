package world

import (
	"context"
	"encoding/hex"
	"errors"

	"hydrovox/internal/sim/encoding"
)

// ChunkVoxels is a terrain column dump for tooling: the full block array
// of one chunk as base64 RLE over palette ids, bottom-up per layer.
type ChunkVoxels struct {
	CX     int    `json:"cx"`
	CZ     int    `json:"cz"`
	Height int    `json:"height"`
	Data   string `json:"data"`
	Digest string `json:"digest"`
}

type adminChunkReq struct {
	CX, CZ int
	Resp   chan adminChunkResp
}

type adminChunkResp struct {
	Voxels ChunkVoxels
	Err    string
}

type adminSnapshotReq struct {
	Resp chan adminSnapshotResp
}

type adminSnapshotResp struct {
	Tick uint64
	Err  string
}

// RequestChunk asks the world loop for a chunk's voxel data. Safe from any
// goroutine while Run is active.
func (w *World) RequestChunk(ctx context.Context, cx, cz int) (ChunkVoxels, error) {
	resp := make(chan adminChunkResp, 1)
	select {
	case w.adminChunk <- adminChunkReq{CX: cx, CZ: cz, Resp: resp}:
	case <-ctx.Done():
		return ChunkVoxels{}, ctx.Err()
	}
	select {
	case r := <-resp:
		if r.Err != "" {
			return ChunkVoxels{}, errors.New(r.Err)
		}
		return r.Voxels, nil
	case <-ctx.Done():
		return ChunkVoxels{}, ctx.Err()
	}
}

// RequestSnapshot asks the world loop to export a snapshot to the
// configured sink immediately. Safe from any goroutine while Run is active.
func (w *World) RequestSnapshot(ctx context.Context) (uint64, error) {
	resp := make(chan adminSnapshotResp, 1)
	select {
	case w.adminSnap <- adminSnapshotReq{Resp: resp}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case r := <-resp:
		if r.Err != "" {
			return r.Tick, errors.New(r.Err)
		}
		return r.Tick, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (w *World) handleAdminChunk(req adminChunkReq) {
	if !w.chunks.InBounds(req.CX*16, 0, req.CZ*16) {
		req.Resp <- adminChunkResp{Err: "chunk out of bounds"}
		return
	}
	ch := w.chunks.GetOrGenChunk(req.CX, req.CZ)
	digest := ch.Digest()
	req.Resp <- adminChunkResp{Voxels: ChunkVoxels{
		CX:     ch.CX,
		CZ:     ch.CZ,
		Height: ch.Height,
		Data:   encoding.EncodeRLE(ch.Blocks),
		Digest: hex.EncodeToString(digest[:]),
	}}
}

func (w *World) handleAdminSnapshot(req adminSnapshotReq) {
	tick := w.tick.Load()
	if w.snapshotSink == nil {
		req.Resp <- adminSnapshotResp{Tick: tick, Err: "no snapshot sink configured"}
		return
	}
	select {
	case w.snapshotSink <- w.ExportSnapshot(tick):
		req.Resp <- adminSnapshotResp{Tick: tick}
	default:
		req.Resp <- adminSnapshotResp{Tick: tick, Err: "snapshot writer busy"}
	}
}
