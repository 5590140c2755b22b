package world

import (
	"time"

	"pitworld.ai/internal/sim/world/kernel/model"
)

const (
	AuditCollect = "COLLECT"
	AuditDeposit = "DEPOSIT"
)

// AuditEntry records one token move between a cell and the carried set.
type AuditEntry struct {
	Time    string `json:"time"`
	WorldID string `json:"world_id"`
	Action  string `json:"action"`
	Cell    [2]int `json:"cell"`
	Token   string `json:"token"`
	Carried int    `json:"carried"`
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

func (w *World) auditMove(action string, c model.Coord, t model.Token) {
	if w.auditLogger == nil {
		return
	}
	_ = w.auditLogger.WriteAudit(AuditEntry{
		Time:    w.now().UTC().Format(time.RFC3339Nano),
		WorldID: w.cfg.ID,
		Action:  action,
		Cell:    [2]int{c.I, c.J},
		Token:   t.ID(),
		Carried: w.carried.Len(),
	})
}
