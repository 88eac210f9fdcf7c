package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const gcDiscardRatio = 0.5

// BadgerGCWorker periodically reclaims value log space.
// Only the message and user stores write to the database, so rewrites stay rare.
type BadgerGCWorker struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewBadgerGCWorker(log *slog.Logger, db *badger.DB, interval time.Duration) *BadgerGCWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &BadgerGCWorker{log: log, db: db, interval: interval}
}

func (w *BadgerGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if done := w.collect(); done {
				return nil
			}
		}
	}
}

// collect rewrites value log files until nothing is left to reclaim.
// It returns true when the database can never be collected.
func (w *BadgerGCWorker) collect() bool {
	rewrites := 0
	for {
		err := w.db.RunValueLogGC(gcDiscardRatio)
		switch {
		case err == nil:
			rewrites++
			continue
		case stderrors.Is(err, badger.ErrGCInMemoryMode):
			w.log.Info("Value log GC disabled for in-memory database")
			return true
		case stderrors.Is(err, badger.ErrNoRewrite), stderrors.Is(err, badger.ErrRejected):
		default:
			w.log.Warn("Value log GC failed", "error", err)
		}
		if rewrites > 0 {
			w.log.Debug("Value log GC done", "rewrites", rewrites)
		}
		return false
	}
}
