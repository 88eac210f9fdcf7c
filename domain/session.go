// Package domain contains core concepts of the messenger.
// This file defines Session, the live binding of an Identity to one open channel.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChannelID identifies one open delivery channel (one connection).
type ChannelID string

func NewChannelID() ChannelID {
	return ChannelID(uuid.NewString())
}

type Session struct {
	Identity Identity
	Channel  ChannelID
	JoinedAt time.Time
}
