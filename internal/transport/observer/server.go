// Package observer serves the loopback-only operational HTTP surface:
// a bootstrap document describing the world and a live status endpoint.
// Real-time state streaming lives in the websocket transport.
package observer

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hydrovox/internal/protocol"
	"hydrovox/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{world: w, log: logger}
}

type BootstrapResponse struct {
	ProtocolVersion string               `json:"protocol_version"`
	WorldID         string               `json:"world_id"`
	Tick            uint64               `json:"tick"`
	WorldParams     protocol.WorldParams `json:"world_params"`
	BoundaryR       int                  `json:"boundary_r"`
	SnapshotEvery   int                  `json:"snapshot_every_ticks"`
}

type StatusResponse struct {
	WorldID string             `json:"world_id"`
	Metrics world.WorldMetrics `json:"metrics"`
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		cfg := s.world.Config()
		resp := BootstrapResponse{
			ProtocolVersion: protocol.Version,
			WorldID:         cfg.ID,
			Tick:            s.world.Tick(),
			WorldParams: protocol.WorldParams{
				TickRateHz: cfg.TickRateHz,
				ChunkSize:  cfg.ChunkSize,
				Height:     cfg.Height,
				Seed:       cfg.Seed,
			},
			BoundaryR:     cfg.BoundaryR,
			SnapshotEvery: cfg.SnapshotEveryTicks,
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) StatusHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		resp := StatusResponse{
			WorldID: s.world.ID(),
			Metrics: s.world.Metrics(),
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// ChunkHandler serves one chunk's voxel data as base64 RLE, fetched
// through the world loop so it is consistent with the running tick.
func (s *Server) ChunkHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		cx, errX := strconv.Atoi(r.URL.Query().Get("cx"))
		cz, errZ := strconv.Atoi(r.URL.Query().Get("cz"))
		if errX != nil || errZ != nil {
			http.Error(rw, "bad cx/cz", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		vox, err := s.world.RequestChunk(ctx, cx, cz)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(vox)
	}
}

// SnapshotHandler triggers an immediate snapshot export.
func (s *Server) SnapshotHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		tick, err := s.world.RequestSnapshot(ctx)
		rw.Header().Set("Content-Type", "application/json")
		if err != nil {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "tick": tick, "error": err.Error()})
			return
		}
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "tick": tick})
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
