// Package domain contains core concepts of the messenger.
// This file defines Message and Identity.
// Messages are immutable once persisted.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity is an opaque, globally unique user handle (an email in practice).
type Identity string

func (i Identity) String() string {
	return string(i)
}

func (i Identity) IsZero() bool {
	return strings.TrimSpace(string(i)) == ""
}

// Message represents an immutable pairwise message.
// ID and SentAt are assigned by the store at write time.
type Message struct {
	ID       uuid.UUID
	Sender   Identity
	Receiver Identity
	Text     string
	SentAt   time.Time
}

// Conversation returns the unordered pair the message belongs to.
func (m Message) Conversation() ConversationKey {
	return NewConversationKey(m.Sender, m.Receiver)
}
