package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"pitworld.ai/internal/persistence/indexdb"
	persistlog "pitworld.ai/internal/persistence/log"
	"pitworld.ai/internal/persistence/snapshot"
	"pitworld.ai/internal/sim/tuning"
	"pitworld.ai/internal/sim/world"
	"pitworld.ai/internal/transport/ws"
)

var (
	flagAddr       string
	flagSnapshot   string
	flagLoadLatest bool
	flagNoIndex    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the world and serve the websocket API",
	Long: `Run a single world loop and serve clients on /v1/ws.

On start the world resumes from --snapshot, or from the newest snapshot under
<data>/snapshots when --load-latest is set. Autosaves and SAVE requests are
written to <data>/snapshots and recorded in <data>/index/world.sqlite.

Examples:
  pitworld serve
  pitworld serve --addr :9000 --tuning ./configs/tuning.yaml
  pitworld serve --snapshot ./data/snapshots/1700000000000.snap.zst`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "Snapshot to resume from")
	serveCmd.Flags().BoolVar(&flagLoadLatest, "load-latest", true, "Resume from the newest snapshot when --snapshot is empty")
	serveCmd.Flags().BoolVar(&flagNoIndex, "no-index", false, "Disable the SQLite snapshot/audit index")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	tune, err := tuning.Load(flagTuning)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("tuning not found; using defaults", "path", flagTuning)
		tune, err = tuning.Defaults(), nil
	}
	if err != nil {
		return fmt.Errorf("load tuning: %w", err)
	}

	var idx *indexdb.SQLiteIndex
	if !flagNoIndex {
		idx, err = indexdb.OpenSQLite(indexPath())
		if err != nil {
			return fmt.Errorf("open index: %w", err)
		}
		defer idx.Close()
		if err := idx.UpsertTuning(cmd.Context(), tune.WorldID, tune); err != nil {
			logger.Warn("index: upsert tuning", "error", err)
		}
	}

	w, err := buildWorld(cmd.Context(), tune, idx, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	auditLog := persistlog.NewAuditLogger(flagDataDir)
	defer auditLog.Close()
	if idx != nil {
		w.SetAuditLogger(multiAuditLogger{a: auditLog, b: idx})
	} else {
		w.SetAuditLogger(auditLog)
	}

	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	saved := make(chan struct{})
	go func() {
		defer close(saved)
		for {
			select {
			case <-ctx.Done():
				// Drain whatever the loop already handed over.
				for {
					select {
					case snap := <-snapCh:
						saveSnapshot(snap, idx, logger)
					default:
						return
					}
				}
			case snap := <-snapCh:
				saveSnapshot(snap, idx, logger)
			}
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("world stopped", "error", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	wsSrv := ws.NewServer(w, logger)
	wsSrv.RateWindowSize = time.Duration(tune.RateLimitWindowMS) * time.Millisecond
	wsSrv.RateMax = tune.RateLimitMax
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              flagAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Info("listening", "addr", flagAddr, "world", w.ID())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		return fmt.Errorf("listen: %w", err)
	}

	<-loopDone
	<-saved
	// The loop and the saver are gone; take a final snapshot directly.
	snap, err := w.ExportSnapshot(time.Now())
	if err != nil {
		return fmt.Errorf("final snapshot: %w", err)
	}
	saveSnapshot(snap, idx, logger)
	if idx != nil {
		if n := idx.Dropped(); n > 0 {
			logger.Warn("index: writes dropped", "count", n)
		}
	}
	return nil
}

func buildWorld(ctx context.Context, tune tuning.Tuning, idx *indexdb.SQLiteIndex, logger *log.Logger) (*world.World, error) {
	cfg := world.ConfigFromTuning(tune)

	path := strings.TrimSpace(flagSnapshot)
	if path == "" && flagLoadLatest {
		path = resolveLatest(ctx, idx, cfg.ID, snapshotsDir(), logger)
	}
	if path == "" {
		w, err := world.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("world: %w", err)
		}
		logger.Info("fresh world", "world", w.ID(), "seed", cfg.Seed)
		return w, nil
	}

	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if snap.Header.WorldID != "" && snap.Header.WorldID != cfg.ID {
		return nil, fmt.Errorf("snapshot world id mismatch: tuning=%s snap=%s", cfg.ID, snap.Header.WorldID)
	}
	w, err := world.New(world.ConfigFromSnapshot(cfg, snap))
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	rep, err := w.ImportSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}
	for _, c := range rep.Duplicates {
		logger.Warn("snapshot: duplicate cell key, last record kept", "cell", c.Key())
	}
	logger.Info("resumed", "snapshot", filepath.Base(path), "cells", len(w.LoadedCells()), "points", w.Points())
	return w, nil
}

func saveSnapshot(snap snapshot.SnapshotV1, idx *indexdb.SQLiteIndex, logger *log.Logger) {
	ms := time.Now().UnixMilli()
	if t, err := time.Parse(time.RFC3339Nano, snap.Header.SavedAt); err == nil {
		ms = t.UnixMilli()
	}
	path := filepath.Join(snapshotsDir(), fmt.Sprintf("%d.snap.zst", ms))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		logger.Error("snapshot write", "error", err)
		return
	}
	if idx != nil {
		idx.RecordSnapshot(path, snap)
	}
	logger.Debug("snapshot saved", "path", path, "cells", len(snap.Board))
}

// resolveLatest prefers the index's newest row for worldID and falls back to
// scanning dir when the index is off, empty, or points at a missing file.
func resolveLatest(ctx context.Context, idx *indexdb.SQLiteIndex, worldID, dir string, logger *log.Logger) string {
	if idx != nil {
		row, ok, err := idx.LatestSnapshot(ctx, worldID)
		switch {
		case err != nil:
			logger.Warn("index: latest snapshot", "error", err)
		case ok:
			if _, err := os.Stat(row.Path); err == nil {
				return row.Path
			}
			logger.Warn("index: latest snapshot missing on disk", "path", row.Path)
		}
	}
	return latestSnapshot(dir)
}

// latestSnapshot picks the highest <unix_ms>.snap.zst in dir.
func latestSnapshot(dir string) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestMS int64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		ms, err := strconv.ParseInt(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || ms > bestMS {
			bestMS = ms
			best = filepath.Join(dir, name)
		}
	}
	return best
}

type multiAuditLogger struct {
	a world.AuditLogger
	b world.AuditLogger
}

func (m multiAuditLogger) WriteAudit(entry world.AuditEntry) error {
	if m.a != nil {
		_ = m.a.WriteAudit(entry)
	}
	if m.b != nil {
		_ = m.b.WriteAudit(entry)
	}
	return nil
}
