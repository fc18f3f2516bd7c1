package database

import (
	"time"

	"chirp/internal/observability"

	"gorm.io/gorm"
)

const queryStartKey = "chirp:query_start"

// RegisterMetrics records the latency of every GORM operation in
// observability.DatabaseQueryLatency, labelled by operation and table.
func RegisterMetrics(db *gorm.DB) error {
	cb := db.Callback()

	type hook struct {
		name   string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}
	hooks := []hook{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
	}

	for _, h := range hooks {
		op := h.name
		if err := h.before("chirp:metrics_before_"+op, startTimer); err != nil {
			return err
		}
		if err := h.after("chirp:metrics_after_"+op, func(tx *gorm.DB) { observe(tx, op) }); err != nil {
			return err
		}
	}
	return nil
}

func startTimer(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func observe(tx *gorm.DB, operation string) {
	v, ok := tx.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}
	observability.ObserveQuery(operation, table, start)
}
