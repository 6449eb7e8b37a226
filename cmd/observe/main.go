// Command observe is a terminal observer client. It connects to a running
// server over websocket, prints frame summaries and can place a block once
// on startup, which is handy when poking at water behaviour by hand.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"hydrovox/internal/protocol"
)

func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "observe", "observer name")
		every    = flag.Int("every", 20, "print a frame summary every N ticks")
		cells    = flag.Bool("cells", false, "print individual water cells")
		maxCells = flag.Int("max_cells", 0, "per-frame cell cap to request (0 = server default)")
		setBlock = flag.String("set", "", "place a block on connect, as x,y,z:NAME")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[observe] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ObserverName:    *name,
		Capabilities: protocol.HelloCapabilities{
			MaxCells: *maxCells,
		},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME session=%s world=%s tick=%d tick_rate=%d seed=%d palette=%d",
				w.SessionID, w.WorldID, w.Tick, w.WorldParams.TickRateHz, w.WorldParams.Seed, w.Catalogs.BlockPalette.Count)
			if *setBlock != "" {
				if err := sendSetBlock(conn, *setBlock); err != nil {
					logger.Fatalf("set block: %v", err)
				}
			}

		case protocol.TypeFrame:
			var f protocol.FrameMsg
			if err := json.Unmarshal(msg, &f); err != nil {
				continue
			}
			if *every > 0 && f.Tick%uint64(*every) != 0 {
				continue
			}
			logger.Printf("FRAME tick=%d steps=%d processed=%d discarded=%d tracked=%d pending=%d cells=%d omitted=%v",
				f.Tick, f.Steps, f.Processed, f.Discarded, f.Tracked, f.Pending, len(f.Cells), f.CellsOmitted)
			if *cells {
				for _, c := range f.Cells {
					logger.Printf("  cell pos=%v level=%d falling=%v source=%v", c.Pos, c.Level, c.Falling, c.Source)
				}
			}
			for _, d := range f.Drops {
				logger.Printf("  drop id=%s item=%s pos=%v", d.ID, d.Item, d.Pos)
			}

		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				continue
			}
			logger.Printf("ERROR code=%s message=%s", e.Code, e.Message)
		}
	}
}

// sendSetBlock parses "x,y,z:NAME" and sends one ACT.
func sendSetBlock(conn *websocket.Conn, spec string) error {
	posPart, block, ok := strings.Cut(spec, ":")
	if !ok || strings.TrimSpace(block) == "" {
		return fmt.Errorf("want x,y,z:NAME, got %q", spec)
	}
	parts := strings.Split(posPart, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want x,y,z:NAME, got %q", spec)
	}
	var pos [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("bad coordinate %q: %w", p, err)
		}
		pos[i] = n
	}
	return conn.WriteJSON(protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Action:          protocol.ActSetBlock,
		Pos:             pos,
		Block:           strings.ToUpper(strings.TrimSpace(block)),
	})
}
