package world

import (
	"sync"
	"time"

	"pitworld.ai/internal/persistence/snapshot"
	"pitworld.ai/internal/sim/world/feature/economy/inventory"
	"pitworld.ai/internal/sim/world/kernel/model"
	"pitworld.ai/internal/sim/world/terrain/gen"
	"pitworld.ai/internal/sim/world/terrain/store"
)

// World owns the cell store and the player's carried tokens for one session.
// Its methods are not safe for concurrent use: either call them from a single
// goroutine, or start Run and go through Submit/RequestSnapshot.
type World struct {
	cfg  WorldConfig
	seed gen.Seeded

	cells   *store.CellStore
	carried inventory.Inventory
	player  model.Point

	auditLogger  AuditLogger
	snapshotSink chan<- snapshot.SnapshotV1
	now          func() time.Time

	inbox    chan actReq
	admin    chan adminSnapshotReq
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

func New(cfg WorldConfig) (*World, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg:    cfg,
		seed:   cfg.seeded(),
		player: cfg.PlayerStart,
		now:    time.Now,
		inbox:  make(chan actReq, 64),
		admin:  make(chan adminSnapshotReq, 8),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	w.cells = store.NewCellStore(w.generator())
	return w, nil
}

func (w *World) generator() store.Generator {
	if w.cfg.Generator != nil {
		return w.cfg.Generator
	}
	return w.seed
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) Config() WorldConfig { return w.cfg }

func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }

// SetSnapshotSink receives autosaves and SAVE requests. Sends never block the
// loop; a full sink drops the snapshot and reports it.
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

// Cell returns the canonical record for c, materializing it on first access.
func (w *World) Cell(c model.Coord) *store.Cell { return w.cells.GetOrCreate(c) }

func (w *World) Exists(c model.Coord) bool { return w.cells.Exists(c) }

func (w *World) InsertToken(c model.Coord, t model.Token) { w.cells.InsertToken(c, t) }

func (w *World) RemoveToken(c model.Coord, id string) (model.Token, error) {
	return w.cells.RemoveToken(c, id)
}

func (w *World) RemoveTokenAt(c model.Coord, index int) (model.Token, error) {
	return w.cells.RemoveTokenAt(c, index)
}

// LoadedCells returns materialized coordinates in store order.
func (w *World) LoadedCells() []model.Coord { return w.cells.LoadedCellKeys() }
