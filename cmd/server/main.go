package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"hydrovox/internal/persistence/archive"
	"hydrovox/internal/persistence/indexdb"
	persistlog "hydrovox/internal/persistence/log"
	"hydrovox/internal/persistence/s3mirror"
	"hydrovox/internal/persistence/snapshot"
	"hydrovox/internal/sim/catalogs"
	"hydrovox/internal/sim/tuning"
	"hydrovox/internal/sim/world"
	"hydrovox/internal/transport/observer"
	"hydrovox/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh world)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index (tick/action/snapshot metadata)")
		loadRadius = flag.Int("load_radius", 3, "chunk radius around the origin to keep loaded")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
		keepSnaps  = flag.Int("keep_snapshots", 8, "periodic snapshots to retain on disk (0 to keep all)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = snapshot.FindLatest(filepath.Join(worldDir, "snapshots"))
	}

	// Tuning is required for a fresh world; snapshots carry their own.
	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if snapshotToLoad == "" {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
		if os.IsNotExist(tuneErr) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
	}

	// Secondary index (does not affect sim determinism).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
	}

	var w *world.World
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.WorldID != "" && snap.Header.WorldID != *worldID {
			logger.Fatalf("snapshot world id mismatch: flag=%s snap=%s", *worldID, snap.Header.WorldID)
		}
		w, err = world.NewFromSnapshot(*worldID, cats, logger, snap)
		if err != nil {
			logger.Fatalf("resume from snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapshotToLoad), w.Tick())
	} else {
		w, err = world.New(world.ConfigFromTuning(*worldID, *seed, tune), cats, logger)
		if err != nil {
			logger.Fatalf("world: %v", err)
		}
	}

	// Pull in the starting area before the loop takes ownership. Loading
	// wakes any generated water that can move.
	for cx := -*loadRadius; cx <= *loadRadius; cx++ {
		for cz := -*loadRadius; cz <= *loadRadius; cz++ {
			w.LoadChunk(cx, cz)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(worldDir)
	defer tickLog.Close()
	if idx != nil {
		w.SetTickLogger(multiTickLogger{a: tickLog, b: idx})
	} else {
		w.SetTickLogger(tickLog)
	}

	// Optional S3-compatible snapshot mirror (enabled by env).
	mirror := buildMirror(*dataDir, logger)
	if mirror != nil {
		defer mirror.Close()
	}

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				path := filepath.Join(worldDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Tick))
				if err := snapshot.WriteSnapshot(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				logger.Printf("snapshot written tick=%d chunks=%d cells=%d", snap.Header.Tick, len(snap.Chunks), len(snap.FluidCells))
				if idx != nil {
					idx.RecordSnapshot(path, snap)
				}
				if mirror != nil {
					mirror.Enqueue(path)
				}
				if removed, err := archive.PruneSnapshots(filepath.Dir(path), *keepSnaps); err != nil {
					logger.Printf("prune snapshots: %v", err)
				} else if len(removed) > 0 {
					logger.Printf("pruned %d old snapshots", len(removed))
				}
			}
		}
	}()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := w.Metrics()
		tick := w.Tick()
		if m.Tick != 0 {
			tick = m.Tick
		}

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP hydrovox_world_tick Current world tick.\n")
		fmt.Fprintf(rw, "# TYPE hydrovox_world_tick gauge\n")
		fmt.Fprintf(rw, "hydrovox_world_tick{world=%q} %d\n", *worldID, tick)

		fmt.Fprintf(rw, "# HELP hydrovox_world_observers Connected observer sessions.\n")
		fmt.Fprintf(rw, "# TYPE hydrovox_world_observers gauge\n")
		fmt.Fprintf(rw, "hydrovox_world_observers{world=%q} %d\n", *worldID, m.Observers)

		fmt.Fprintf(rw, "# HELP hydrovox_world_loaded_chunks Loaded chunk count.\n")
		fmt.Fprintf(rw, "# TYPE hydrovox_world_loaded_chunks gauge\n")
		fmt.Fprintf(rw, "hydrovox_world_loaded_chunks{world=%q} %d\n", *worldID, m.LoadedChunks)

		fmt.Fprintf(rw, "# HELP hydrovox_fluid_tracked_cells Water cells currently tracked.\n")
		fmt.Fprintf(rw, "# TYPE hydrovox_fluid_tracked_cells gauge\n")
		fmt.Fprintf(rw, "hydrovox_fluid_tracked_cells{world=%q} %d\n", *worldID, m.Tracked)

		fmt.Fprintf(rw, "# HELP hydrovox_fluid_pending_updates Scheduled cell evaluations not yet due.\n")
		fmt.Fprintf(rw, "# TYPE hydrovox_fluid_pending_updates gauge\n")
		fmt.Fprintf(rw, "hydrovox_fluid_pending_updates{world=%q} %d\n", *worldID, m.Pending)

		fmt.Fprintf(rw, "# HELP hydrovox_world_drops Live dropped items.\n")
		fmt.Fprintf(rw, "# TYPE hydrovox_world_drops gauge\n")
		fmt.Fprintf(rw, "hydrovox_world_drops{world=%q} %d\n", *worldID, m.Drops)

		fmt.Fprintf(rw, "# HELP hydrovox_world_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE hydrovox_world_queue_depth gauge\n")
		fmt.Fprintf(rw, "hydrovox_world_queue_depth{world=%q,queue=%q} %d\n", *worldID, "inbox", m.QueueDepths.Inbox)
		fmt.Fprintf(rw, "hydrovox_world_queue_depth{world=%q,queue=%q} %d\n", *worldID, "observer_join", m.QueueDepths.ObserverJoin)

		fmt.Fprintf(rw, "# HELP hydrovox_world_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE hydrovox_world_step_ms gauge\n")
		fmt.Fprintf(rw, "hydrovox_world_step_ms{world=%q} %.3f\n", *worldID, m.StepMS)
	})

	enableAdminHTTP := envBool("HV_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	enablePprofHTTP := envBool("HV_ENABLE_PPROF_HTTP", false)
	if enableAdminHTTP {
		obsSrv := observer.NewServer(w, logger)
		mux.HandleFunc("/admin/v1/bootstrap", obsSrv.BootstrapHandler())
		mux.HandleFunc("/admin/v1/state", obsSrv.StatusHandler())
		mux.HandleFunc("/admin/v1/chunk", obsSrv.ChunkHandler())
		mux.HandleFunc("/admin/v1/snapshot", obsSrv.SnapshotHandler())
	} else {
		logger.Printf("admin endpoints disabled (HV_ENABLE_ADMIN_HTTP=false)")
	}
	if enablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(w, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

// buildMirror reads HV_S3_ENDPOINT, HV_S3_BUCKET, HV_S3_ACCESS_KEY_ID and
// HV_S3_SECRET_ACCESS_KEY; returns nil when the mirror is not configured.
func buildMirror(dataDir string, logger *log.Logger) *s3mirror.Mirror {
	endpoint := os.Getenv("HV_S3_ENDPOINT")
	if strings.TrimSpace(endpoint) == "" {
		return nil
	}
	client, err := s3mirror.NewClient(
		endpoint,
		os.Getenv("HV_S3_BUCKET"),
		os.Getenv("HV_S3_ACCESS_KEY_ID"),
		os.Getenv("HV_S3_SECRET_ACCESS_KEY"),
	)
	if err != nil {
		logger.Printf("snapshot mirror disabled: %v", err)
		return nil
	}
	logger.Printf("snapshot mirror enabled endpoint=%s", endpoint)
	return s3mirror.NewMirror(client, dataDir, os.Getenv("HV_S3_PREFIX"), logger)
}

func envBool(name string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch v {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

type multiTickLogger struct {
	a world.TickLogger
	b world.TickLogger
}

func (m multiTickLogger) WriteTick(entry world.TickLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTick(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTick(entry)
	}
	return nil
}
