package rest

import (
	"encoding/json"
	"messenger/domain"
	"messenger/domain/event"
	"time"
)

// Frame types exchanged on the real-time channel.
const (
	TypeAuthenticate   = "authenticate"
	TypeAuthenticated  = "authenticated"
	TypeAuthError      = "auth_error"
	TypeSendMessage    = "send_message"
	TypeMessageSent    = "message_sent"
	TypeError          = "error"
	TypeReceiveMessage = "receive_message"
)

// Envelope is one JSON frame of the real-time channel.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewEnvelope(frameType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: frameType, Payload: raw}, nil
}

type AuthenticatePayload struct {
	Token string `json:"token"`
}

type AuthenticatedPayload struct {
	Identity string `json:"identity"`
}

type SendMessagePayload struct {
	Receiver string `json:"receiver"`
	Text     string `json:"text"`
	Ref      string `json:"ref,omitempty"`
}

type MessageSentPayload struct {
	Ref       string    `json:"ref,omitempty"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Ref     string `json:"ref,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessagePayload is both the receive_message frame and one history entry.
type MessagePayload struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func fromMessage(m domain.Message) MessagePayload {
	return MessagePayload{
		ID:        m.ID.String(),
		Sender:    m.Sender.String(),
		Receiver:  m.Receiver.String(),
		Text:      m.Text,
		Timestamp: m.SentAt,
	}
}

func fromMessageReceived(e event.MessageReceived) MessagePayload {
	return MessagePayload{
		ID:        e.ID.String(),
		Sender:    e.Sender.String(),
		Receiver:  e.Receiver.String(),
		Text:      e.Text,
		Timestamp: e.At,
	}
}
