package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversationKey_IsOrderIndependent(t *testing.T) {
	req := require.New(t)

	// Given two identities
	alice, bob := Identity("alice@example.com"), Identity("bob@example.com")

	// When building the key in both directions
	ab := NewConversationKey(alice, bob)
	ba := NewConversationKey(bob, alice)

	// Then both keys are equal
	req.Equal(ab, ba)
	req.Equal(ab.String(), ba.String())
	req.True(ab.Includes(alice))
	req.True(ab.Includes(bob))
	req.False(ab.Includes("carol@example.com"))
	req.Equal(bob, ab.Other(alice))
	req.Equal(alice, ab.Other(bob))
}

func TestConversationKey_StringIsKeySafe(t *testing.T) {
	req := require.New(t)

	// Identities containing the storage separators must not collide
	k1 := NewConversationKey("a:b", "c")
	k2 := NewConversationKey("a", "b:c")

	req.NotEqual(k1.String(), k2.String())
	req.False(strings.Contains(k1.String(), ":"))
}

func TestMessage_Conversation(t *testing.T) {
	msg := Message{Sender: "bob", Receiver: "alice"}
	require.Equal(t, ConversationKey{Lo: "alice", Hi: "bob"}, msg.Conversation())
}

func TestIdentity_IsZero(t *testing.T) {
	req := require.New(t)
	req.True(Identity("").IsZero())
	req.True(Identity("   ").IsZero())
	req.False(Identity("alice").IsZero())
}
