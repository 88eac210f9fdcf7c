package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"messenger/domain"
	"messenger/errors"
	"time"

	"github.com/google/uuid"
)

// PostgresMessageRepository stores one row per message, indexed by the
// directed (sender, receiver, created_at) triple and queried in both directions.
type PostgresMessageRepository struct {
	db        DBTX
	log       *slog.Logger
	sequencer *sequencer
}

func NewPostgresMessageRepository(db DBTX, log *slog.Logger, now func() time.Time) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db, log: log, sequencer: newSequencer(now, time.Microsecond)}
}

func (r *PostgresMessageRepository) Append(ctx context.Context, message domain.Message) (domain.Message, error) {
	message.ID = uuid.New()

	query :=
		`INSERT INTO messages (id, sender, receiver, text, created_at)
		 VALUES ($1, $2, $3, $4, $5)`

	at, err := r.sequencer.commit(func(at time.Time) error {
		_, err := r.db.ExecContext(ctx, query,
			message.ID.String(), message.Sender.String(), message.Receiver.String(), message.Text, at)
		return err
	})
	if err != nil {
		r.log.Error("Unable to append message", "sender", message.Sender, "receiver", message.Receiver, "error", err)
		return domain.Message{}, fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
	message.SentAt = at
	return message, nil
}

func (r *PostgresMessageRepository) Query(ctx context.Context, a, b domain.Identity) ([]domain.Message, error) {
	query :=
		`SELECT id, sender, receiver, text, created_at FROM messages
		 WHERE (sender = $1 AND receiver = $2) OR (sender = $2 AND receiver = $1)
		 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, a.String(), b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var (
			message          domain.Message
			sender, receiver string
		)
		if err = rows.Scan(&message.ID, &sender, &receiver, &message.Text, &message.SentAt); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
		}
		message.Sender = domain.Identity(sender)
		message.Receiver = domain.Identity(receiver)
		message.SentAt = message.SentAt.UTC()
		messages = append(messages, message)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
	return messages, nil
}
