package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"messenger/contract"
	"messenger/internal"
	"messenger/repositories"

	"github.com/dgraph-io/badger/v4"
)

type stores struct {
	messages contract.IMessageStore
	users    repositories.IUserRepository
	// badger is nil when messages live in PostgreSQL
	badger *badger.DB
	close  func() error
	log    *slog.Logger
}

func openStores(ctx context.Context, config internal.Config, log *slog.Logger) (*stores, error) {
	switch config.StorageDriver {
	case internal.StoragePostgres:
		db, err := repositories.OpenPostgres(ctx, config.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("database opening failed: %w", err)
		}
		return postgresStores(db, log), nil
	default:
		db, err := badger.Open(buildBadgerOpts(ctx, config, log))
		if err != nil {
			return nil, fmt.Errorf("database opening failed: %w", err)
		}
		return &stores{
			messages: repositories.NewMessageRepository(db, log, nil),
			users:    repositories.NewUserRepository(db),
			badger:   db,
			close:    db.Close,
			log:      log,
		}, nil
	}
}

func postgresStores(db *sql.DB, log *slog.Logger) *stores {
	return &stores{
		messages: repositories.NewPostgresMessageRepository(db, log, nil),
		users:    repositories.NewPostgresUserRepository(db),
		close:    db.Close,
		log:      log,
	}
}

// Close releases the database lock and flushes buffers.
func (s *stores) Close() {
	s.log.Info("Closing database...")
	if err := s.close(); err != nil {
		s.log.Warn("Database close failed", "error", err)
	}
}

func buildBadgerOpts(ctx context.Context, config internal.Config, log *slog.Logger) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if log.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}
