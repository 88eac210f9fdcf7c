package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessageMapper(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	message, err := json.Marshal(map[string]any{
		"id": "m-1", "sender": "alice", "receiver": "bob", "text": "hi", "at": at.UnixNano(),
	})
	req.NoError(err)
	row := MessageMapper("msg:alice|bob:0000000000000000001:m-1", message)
	req.Equal("MESSAGE", row.Type)
	req.Contains(row.Detail, "alice → bob")
	req.Contains(row.Detail, "2026-01-01T12:00:00Z")

	user, err := json.Marshal(map[string]any{
		"id": "u-1", "email": "alice@example.com", "password_hash": "$argon2id$secret", "roles": []string{"user"},
	})
	req.NoError(err)
	row = MessageMapper("user:alice@example.com", user)
	req.Equal("USER", row.Type)
	req.Contains(row.Detail, "alice@example.com (u-1)")
	req.NotContains(row.Detail, "argon2id")

	row = MessageMapper("msg:broken", []byte("{"))
	req.Equal("Error: unmarshal failed", row.Detail)
}
