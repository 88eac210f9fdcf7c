package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"messenger/repositories"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
)

const (
	inspectorPort     = 8081
	inspectorEndpoint = "/inspect"
)

func startInspector(log *slog.Logger, db *badger.DB) {
	url := fmt.Sprintf("http://localhost:%d%s", inspectorPort, inspectorEndpoint)
	log.Info("Debug Badger inspector available", "url", url)
	database.StartDebugServer(db, inspectorPort, inspectorEndpoint, MessageMapper)
}

// MessageMapper renders message and user entries; password hashes never leave the store.
func MessageMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	switch {
	case strings.HasPrefix(key, "msg:"):
		var m repositories.DiskMessage
		if err := json.Unmarshal(val, &m); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Type = "MESSAGE"
		row.Detail = fmt.Sprintf("%s → %s at %s: %s", m.Sender, m.Receiver,
			time.Unix(0, m.At).UTC().Format(time.RFC3339Nano), m.Text)
	case strings.HasPrefix(key, "user:"):
		var u repositories.User
		if err := json.Unmarshal(val, &u); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Type = "USER"
		row.Detail = fmt.Sprintf("%s (%s) roles=%s", u.Email, u.ID, strings.Join(u.Roles, ","))
	}
	return row
}
