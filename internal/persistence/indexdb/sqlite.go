package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"pitworld.ai/internal/persistence/snapshot"
	"pitworld.ai/internal/sim/tuning"
	"pitworld.ai/internal/sim/world"
)

// SQLiteIndex is a queryable secondary index over snapshot files and audit
// entries. Writes are queued to a single writer goroutine; snapshot files and
// audit JSONL remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
}

type reqKind int

const (
	reqAudit reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	audit    world.AuditEntry
	snapshot SnapshotRow
}

// SnapshotRow describes one snapshot file on disk.
type SnapshotRow struct {
	Path        string
	WorldID     string
	SavedAt     string
	SavedUnixMS int64
	Seed        int64
	Cells       int
	Carried     int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tuning (
			world_id TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			path TEXT PRIMARY KEY,
			world_id TEXT NOT NULL,
			saved_at TEXT NOT NULL,
			saved_unix_ms INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			cells INTEGER NOT NULL,
			carried INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_world_saved ON snapshots(world_id, saved_unix_ms);`,
		`CREATE TABLE IF NOT EXISTS audits (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			time TEXT NOT NULL,
			world_id TEXT NOT NULL,
			action TEXT NOT NULL,
			i INTEGER NOT NULL,
			j INTEGER NOT NULL,
			token TEXT NOT NULL,
			carried INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_token ON audits(token);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_cell ON audits(i, j);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains queued writes and closes the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Dropped counts writes discarded because the queue was full.
func (s *SQLiteIndex) Dropped() uint64 { return s.dropped.Load() }

func (s *SQLiteIndex) enqueue(r req) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		s.dropped.Add(1)
	}
}

func (s *SQLiteIndex) WriteAudit(entry world.AuditEntry) error {
	s.enqueue(req{kind: reqAudit, audit: entry})
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	var ms int64
	if t, err := time.Parse(time.RFC3339Nano, snap.Header.SavedAt); err == nil {
		ms = t.UnixMilli()
	}
	s.enqueue(req{kind: reqSnapshot, snapshot: SnapshotRow{
		Path:        path,
		WorldID:     snap.Header.WorldID,
		SavedAt:     snap.Header.SavedAt,
		SavedUnixMS: ms,
		Seed:        snap.Seed,
		Cells:       len(snap.Board),
		Carried:     len(snap.Carried),
	}})
}

// UpsertTuning stores the tuning values actually applied to worldID.
func (s *SQLiteIndex) UpsertTuning(ctx context.Context, worldID string, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO tuning(world_id,digest,json,updated_at) VALUES(?,?,?,?)`,
		worldID, hex.EncodeToString(sum[:]), string(b), now,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// ListSnapshots returns the newest snapshots for worldID first. An empty
// worldID lists every world; limit <= 0 means no limit.
func (s *SQLiteIndex) ListSnapshots(ctx context.Context, worldID string, limit int) ([]SnapshotRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT path,world_id,saved_at,saved_unix_ms,seed,cells,carried FROM snapshots
		 WHERE (?1 = '' OR world_id = ?1)
		 ORDER BY saved_unix_ms DESC, path DESC LIMIT ?2`,
		worldID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var r SnapshotRow
		if err := rows.Scan(&r.Path, &r.WorldID, &r.SavedAt, &r.SavedUnixMS, &r.Seed, &r.Cells, &r.Carried); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestSnapshot reports the newest snapshot for worldID, if any.
func (s *SQLiteIndex) LatestSnapshot(ctx context.Context, worldID string) (SnapshotRow, bool, error) {
	rows, err := s.ListSnapshots(ctx, worldID, 1)
	if err != nil {
		return SnapshotRow{}, false, err
	}
	if len(rows) == 0 {
		return SnapshotRow{}, false, nil
	}
	return rows[0], true, nil
}

// AuditCount returns how many audit rows touch token.
func (s *SQLiteIndex) AuditCount(ctx context.Context, token string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audits WHERE token = ?`, token).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertAudit, _ := s.db.Prepare(`INSERT INTO audits(time,world_id,action,i,j,token,carried,raw_json) VALUES(?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(path,world_id,saved_at,saved_unix_ms,seed,cells,carried) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		if insertAudit != nil {
			_ = insertAudit.Close()
		}
		if insertSnapshot != nil {
			_ = insertSnapshot.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqAudit:
			a := r.audit
			raw, _ := json.Marshal(a)
			if insertAudit != nil {
				if _, err := tx.Stmt(insertAudit).Exec(a.Time, a.WorldID, a.Action, a.Cell[0], a.Cell[1], a.Token, a.Carried, string(raw)); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		case reqSnapshot:
			sn := r.snapshot
			if insertSnapshot != nil {
				if _, err := tx.Stmt(insertSnapshot).Exec(sn.Path, sn.WorldID, sn.SavedAt, sn.SavedUnixMS, sn.Seed, sn.Cells, sn.Carried); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		// Snapshots are rare and read back by the CLI; commit them promptly.
		if r.kind == reqSnapshot || opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
