package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"messenger/domain"
	"messenger/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const messagePrefix = "msg:"

type MessageRepository struct {
	db        *badger.DB
	log       *slog.Logger
	sequencer *sequencer
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, now func() time.Time) *MessageRepository {
	return &MessageRepository{db: db, log: log, sequencer: newSequencer(now, time.Nanosecond)}
}

// DiskMessage is the value stored under a message key.
type DiskMessage struct {
	ID       string `json:"id"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Text     string `json:"text"`
	At       int64  `json:"at"`
}

// Append persists a message in BadgerDB.
// The key is formatted as "msg:{conversation}:{timestamp_padded}:{uuid}" to:
//  1. Group both directions of a pair under one prefix.
//  2. Sort chronologically using 19-digit zero padding (lexicographical order).
//  3. Keep the UUID as a collision breaker.
func (m *MessageRepository) Append(ctx context.Context, message domain.Message) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	message.ID = uuid.New()

	at, err := m.sequencer.commit(func(at time.Time) error {
		message.SentAt = at
		bytes, err := json.Marshal(fromMessage(message))
		if err != nil {
			return err
		}
		return m.db.Update(func(txn *badger.Txn) error {
			return txn.Set(messageKey(message), bytes)
		})
	})
	if err != nil {
		m.log.Error("Unable to append message", "conversation", message.Conversation().String(), "error", err)
		return domain.Message{}, fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
	message.SentAt = at
	return message, nil
}

// Query returns every message exchanged between a and b, in both directions,
// oldest first. A prefix scan is enough since the key already sorts by time.
func (m *MessageRepository) Query(ctx context.Context, a, b domain.Identity) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := conversationPrefix(domain.NewConversationKey(a, b))

	var diskMessages []DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var dm DiskMessage
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &dm)
			})
			if err != nil {
				return err
			}
			diskMessages = append(diskMessages, dm)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
	return toMessages(diskMessages)
}

// Recent walks the conversation backwards starting after cursor (or from the
// newest message when cursor is nil) and returns at most limit messages,
// newest first, with the cursor to pass for the next page.
func (m *MessageRepository) Recent(a, b domain.Identity, cursor *string, limit int) ([]domain.Message, *string, error) {
	var diskMessages []DiskMessage
	var lastKey string
	prefix := conversationPrefix(domain.NewConversationKey(a, b))
	prefixLen := len(prefix)

	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible timestamp, then walk back
			seekKey = append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		default:
			seekKey = append(append([]byte{}, prefix...), []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(diskMessages) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", limit))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			var dm DiskMessage
			if err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &dm)
			}); err != nil {
				return err
			}
			diskMessages = append(diskMessages, dm)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
	messages, err := toMessages(diskMessages)
	if err != nil {
		return nil, nil, err
	}
	return messages, &lastKey, nil
}

func conversationPrefix(key domain.ConversationKey) []byte {
	return []byte(fmt.Sprintf("%s%s:", messagePrefix, key.String()))
}

func messageKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s",
		messagePrefix,
		message.Conversation().String(),
		message.SentAt.UnixNano(),
		message.ID,
	))
}

func fromMessage(message domain.Message) DiskMessage {
	return DiskMessage{
		ID:       message.ID.String(),
		Sender:   message.Sender.String(),
		Receiver: message.Receiver.String(),
		Text:     message.Text,
		At:       message.SentAt.UnixNano(),
	}
}

func toMessages(diskMessages []DiskMessage) ([]domain.Message, error) {
	messages := make([]domain.Message, 0, len(diskMessages))
	for _, dm := range diskMessages {
		parsedID, err := uuid.Parse(dm.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
		}
		messages = append(messages, domain.Message{
			ID:       parsedID,
			Sender:   domain.Identity(dm.Sender),
			Receiver: domain.Identity(dm.Receiver),
			Text:     dm.Text,
			SentAt:   time.Unix(0, dm.At).UTC(),
		})
	}
	return messages, nil
}
