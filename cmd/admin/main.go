// Command admin is the operator's toolbox: it lists world data, inspects
// snapshots, queries the sqlite index and pokes the server's loopback
// admin endpoints.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"hydrovox/internal/persistence/snapshot"
	"hydrovox/internal/sim/encoding"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "state":
			stateCmd(os.Args[2:])
			return
		case "snapshot":
			snapshotCmd(os.Args[2:])
			return
		case "chunk":
			chunkCmd(os.Args[2:])
			return
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "worlds")
	if *worldID != "" {
		base = filepath.Join(base, *worldID)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	httpGet(*baseURL, "/admin/v1/state")
}

func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + "/admin/v1/snapshot"
	req, _ := http.NewRequest(http.MethodPost, u, nil)
	cl := &http.Client{Timeout: 10 * time.Second}
	resp, err := cl.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(string(b))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}

func chunkCmd(args []string) {
	fs := flag.NewFlagSet("chunk", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	cx := fs.Int("cx", 0, "chunk x")
	cz := fs.Int("cz", 0, "chunk z")
	raw := fs.Bool("raw", false, "print the raw JSON instead of a summary")
	_ = fs.Parse(args)

	u := fmt.Sprintf("%s/admin/v1/chunk?cx=%d&cz=%d", strings.TrimRight(strings.TrimSpace(*baseURL), "/"), *cx, *cz)
	cl := &http.Client{Timeout: 10 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		fmt.Fprintln(os.Stderr, strings.TrimSpace(string(b)))
		os.Exit(1)
	}
	if *raw {
		fmt.Println(string(b))
		return
	}

	var vox struct {
		CX     int    `json:"cx"`
		CZ     int    `json:"cz"`
		Height int    `json:"height"`
		Data   string `json:"data"`
		Digest string `json:"digest"`
	}
	if err := json.Unmarshal(b, &vox); err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		os.Exit(1)
	}
	ids, err := encoding.DecodeRLE(vox.Data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "decode rle:", err)
		os.Exit(1)
	}
	counts := map[uint16]int{}
	for _, id := range ids {
		counts[id]++
	}
	fmt.Printf("chunk cx=%d cz=%d height=%d blocks=%d digest=%s\n", vox.CX, vox.CZ, vox.Height, len(ids), vox.Digest)
	for id, n := range counts {
		fmt.Printf("  block_id=%d count=%d\n", id, n)
	}
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: admin inspect <path.snap.zst>")
		os.Exit(2)
	}
	snap, err := snapshot.ReadSnapshot(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}

	printJSON(map[string]any{
		"version":       snap.Header.Version,
		"world_id":      snap.Header.WorldID,
		"tick":          snap.Header.Tick,
		"seed":          snap.Seed,
		"tick_rate_hz":  snap.TickRate,
		"height":        snap.Height,
		"chunks":        len(snap.Chunks),
		"fluid_cells":   len(snap.FluidCells),
		"fluid_pending": len(snap.FluidPending),
		"drops":         len(snap.Drops),
	})
}

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "snapshots"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index.db")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if *limit <= 0 {
		*limit = 20
	}

	switch q {
	case "snapshots":
		rows, err := db.Query(`SELECT tick,path,seed,height,chunks,cells,pending,drops FROM snapshots ORDER BY tick DESC LIMIT ?`, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick    int64  `json:"tick"`
				Path    string `json:"path"`
				Seed    int64  `json:"seed"`
				Height  int    `json:"height"`
				Chunks  int    `json:"chunks"`
				Cells   int    `json:"cells"`
				Pending int    `json:"pending"`
				Drops   int    `json:"drops"`
			}
			if err := rows.Scan(&r.Tick, &r.Path, &r.Seed, &r.Height, &r.Chunks, &r.Cells, &r.Pending, &r.Drops); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		if err := rows.Err(); err != nil {
			fmt.Fprintln(os.Stderr, "rows:", err)
			os.Exit(1)
		}

	case "ticks":
		rows, err := db.Query(`SELECT tick,steps,processed,discarded,tracked,pending,actions FROM ticks ORDER BY tick DESC LIMIT ?`, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick      int64 `json:"tick"`
				Steps     int   `json:"steps"`
				Processed int   `json:"processed"`
				Discarded int   `json:"discarded"`
				Tracked   int   `json:"tracked"`
				Pending   int   `json:"pending"`
				Actions   int   `json:"actions"`
			}
			if err := rows.Scan(&r.Tick, &r.Steps, &r.Processed, &r.Discarded, &r.Tracked, &r.Pending, &r.Actions); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		if err := rows.Err(); err != nil {
			fmt.Fprintln(os.Stderr, "rows:", err)
			os.Exit(1)
		}

	case "actions":
		rows, err := db.Query(`SELECT tick,seq,x,y,z,block FROM actions ORDER BY tick DESC, seq ASC LIMIT ?`, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick  int64  `json:"tick"`
				Seq   int    `json:"seq"`
				X     int    `json:"x"`
				Y     int    `json:"y"`
				Z     int    `json:"z"`
				Block string `json:"block"`
			}
			if err := rows.Scan(&r.Tick, &r.Seq, &r.X, &r.Y, &r.Z, &r.Block); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		if err := rows.Err(); err != nil {
			fmt.Fprintln(os.Stderr, "rows:", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown query %q (want snapshots, ticks or actions)\n", q)
		os.Exit(2)
	}
}

func httpGet(baseURL, path string) {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(string(b))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}

func printJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal:", err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}
