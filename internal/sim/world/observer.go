package world

import (
	"encoding/json"
	"fmt"

	"hydrovox/internal/protocol"
	"hydrovox/internal/sim/fluid"
)

// ObserverJoinRequest registers a read-only observer session that receives
// one FRAME per tick. All observer state is maintained by the world loop
// goroutine.
type ObserverJoinRequest struct {
	Out      chan []byte
	MaxCells int
	Resp     chan protocol.WelcomeMsg
}

type observerClient struct {
	id       string
	out      chan []byte
	maxCells int
}

const defaultObserverMaxCells = 4096

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	id := fmt.Sprintf("O%04d", w.nextObserverNum.Add(1))
	maxCells := req.MaxCells
	if maxCells <= 0 {
		maxCells = defaultObserverMaxCells
	}
	w.observers[id] = &observerClient{id: id, out: req.Out, maxCells: maxCells}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       id,
		WorldID:         w.cfg.ID,
		Tick:            w.tick.Load(),
		WorldParams: protocol.WorldParams{
			TickRateHz: w.cfg.TickRateHz,
			ChunkSize:  w.cfg.ChunkSize,
			Height:     w.cfg.Height,
			Seed:       w.cfg.Seed,
		},
		Catalogs: protocol.CatalogDigests{
			BlockPalette: protocol.DigestRef{
				Digest: w.cats.Blocks.PaletteDigest,
				Count:  len(w.cats.Blocks.Palette),
			},
			DefsDigest: w.cats.Blocks.DefsDigest,
		},
	}
	if req.Resp != nil {
		req.Resp <- welcome
	}
}

func (w *World) handleObserverLeave(id string) {
	delete(w.observers, id)
}

func (w *World) stepObservers(stats fluid.Stats) {
	if len(w.observers) == 0 {
		return
	}

	_, cells, _ := w.sim.Export()
	drops := w.DropList()

	for _, obs := range w.observers {
		frame := protocol.FrameMsg{
			Type:            protocol.TypeFrame,
			ProtocolVersion: protocol.Version,
			Tick:            stats.Tick,
			Steps:           stats.Steps,
			Processed:       stats.Processed,
			Discarded:       stats.Discarded,
			Tracked:         stats.Tracked,
			Pending:         stats.Pending,
		}
		if len(cells) <= obs.maxCells {
			frame.Cells = cellsToWire(cells)
		} else {
			frame.CellsOmitted = true
		}
		for _, d := range drops {
			frame.Drops = append(frame.Drops, protocol.DropWire{
				ID:   d.EntityID,
				Pos:  [3]int{d.Pos.X, d.Pos.Y, d.Pos.Z},
				Item: d.Item,
			})
		}
		b, err := json.Marshal(frame)
		if err != nil {
			continue
		}
		sendLatest(obs.out, b)
	}
}

func cellsToWire(cells []fluid.CellState) []protocol.CellWire {
	out := make([]protocol.CellWire, 0, len(cells))
	for _, c := range cells {
		out = append(out, protocol.CellWire{
			Pos:     [3]int{c.Pos.X, c.Pos.Y, c.Pos.Z},
			Level:   c.Level,
			Falling: c.Falling,
			Source:  c.Source,
		})
	}
	return out
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
