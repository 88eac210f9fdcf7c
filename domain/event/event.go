package event

import (
	"messenger/domain"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	Conversation() domain.ConversationKey
}

// MessageReceived is pushed to every live channel of the receiver once the message is persisted.
type MessageReceived struct {
	ID       uuid.UUID
	Sender   domain.Identity
	Receiver domain.Identity
	Text     string
	At       time.Time
}

func (m MessageReceived) Conversation() domain.ConversationKey {
	return domain.NewConversationKey(m.Sender, m.Receiver)
}

func NewMessageReceived(m domain.Message) MessageReceived {
	return MessageReceived{
		ID:       m.ID,
		Sender:   m.Sender,
		Receiver: m.Receiver,
		Text:     m.Text,
		At:       m.SentAt,
	}
}
