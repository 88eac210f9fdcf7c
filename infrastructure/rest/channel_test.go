package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"messenger/domain"
	"messenger/domain/event"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, server *testServer, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, frameType string, payload any) {
	t.Helper()
	env, err := NewEnvelope(frameType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(env))
}

func readFrame[T any](t *testing.T, conn *websocket.Conn, frameType string) T {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, frameType, env.Type, string(env.Payload))
	var payload T
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	return payload
}

func authenticated(t *testing.T, server *testServer, identity string) *websocket.Conn {
	t.Helper()
	conn := dial(t, server, nil)
	writeFrame(t, conn, TypeAuthenticate, AuthenticatePayload{Token: server.token(t, domain.Identity(identity))})
	got := readFrame[AuthenticatedPayload](t, conn, TypeAuthenticated)
	require.Equal(t, identity, got.Identity)
	return conn
}

func TestChannel_Send_Is_Pushed_To_Every_Receiver_Channel(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, nil, time.Second)

	// Given bob is connected twice and alice once
	bobLaptop := authenticated(t, server, "bob")
	bobPhone := authenticated(t, server, "bob")
	alice := authenticated(t, server, "alice")
	req.Len(server.registry.ChannelsFor("bob"), 2)

	// When alice sends a message over her channel
	writeFrame(t, alice, TypeSendMessage, SendMessagePayload{Receiver: "bob", Text: "hi bob", Ref: "r1"})

	// Then alice gets an acknowledgement
	ack := readFrame[MessageSentPayload](t, alice, TypeMessageSent)
	req.Equal("r1", ack.Ref)
	req.NotEmpty(ack.ID)

	// And both of bob's channels receive it
	for _, conn := range []*websocket.Conn{bobLaptop, bobPhone} {
		got := readFrame[MessagePayload](t, conn, TypeReceiveMessage)
		req.Equal(ack.ID, got.ID)
		req.Equal("alice", got.Sender)
		req.Equal("hi bob", got.Text)
	}
}

func TestChannel_Header_Token_Authenticates(t *testing.T) {
	server := newTestServer(t, nil, time.Second)
	header := http.Header{"Authorization": []string{"Bearer " + server.token(t, "carol")}}

	conn := dial(t, server, header)

	got := readFrame[AuthenticatedPayload](t, conn, TypeAuthenticated)
	require.Equal(t, "carol", got.Identity)
}

func TestChannel_Rejects_Bad_Token(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, nil, time.Second)
	conn := dial(t, server, nil)

	writeFrame(t, conn, TypeAuthenticate, AuthenticatePayload{Token: "not-a-token"})

	got := readFrame[ErrorPayload](t, conn, TypeAuthError)
	req.Equal("malformed_token", got.Code)
	_, _, err := conn.ReadMessage()
	req.Error(err)
}

func TestChannel_Rejects_Frames_Before_Authentication(t *testing.T) {
	server := newTestServer(t, nil, time.Second)
	conn := dial(t, server, nil)

	writeFrame(t, conn, TypeSendMessage, SendMessagePayload{Receiver: "bob", Text: "sneaky"})

	got := readFrame[ErrorPayload](t, conn, TypeAuthError)
	require.Equal(t, "missing_token", got.Code)
}

func TestChannel_Auth_Deadline(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, nil, 50*time.Millisecond)
	conn := dial(t, server, nil)

	// When nothing is sent before the deadline
	got := readFrame[ErrorPayload](t, conn, TypeAuthError)

	// Then the channel is rejected as expired and closed
	req.Equal("expired_token", got.Code)
	_, _, err := conn.ReadMessage()
	req.Error(err)
}

func TestChannel_Store_Failure_Is_Surfaced(t *testing.T) {
	server := newTestServer(t, failingStore{}, time.Second)
	alice := authenticated(t, server, "alice")

	writeFrame(t, alice, TypeSendMessage, SendMessagePayload{Receiver: "bob", Text: "lost", Ref: "r2"})

	got := readFrame[ErrorPayload](t, alice, TypeError)
	require.Equal(t, "r2", got.Ref)
	require.Equal(t, "persist_failed", got.Code)
}

func TestChannel_Close_Unbinds(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, nil, time.Second)
	bob := authenticated(t, server, "bob")
	req.True(server.registry.Online("bob"))

	_ = bob.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = bob.Close()

	req.Eventually(func() bool { return !server.registry.Online("bob") }, 2*time.Second, 10*time.Millisecond)
}

func TestChannel_Unknown_Frame_Closes(t *testing.T) {
	server := newTestServer(t, nil, time.Second)
	alice := authenticated(t, server, "alice")

	writeFrame(t, alice, "dance", map[string]string{})

	got := readFrame[ErrorPayload](t, alice, TypeError)
	require.Equal(t, "protocol_error", got.Code)
	require.Eventually(t, func() bool { return !server.registry.Online("alice") }, 2*time.Second, 10*time.Millisecond)
}

func TestChannel_Authenticated_Precedes_Deliveries(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, nil, time.Second)

	for i := 0; i < 20; i++ {
		identity := domain.Identity(fmt.Sprintf("dave-%d", i))

		// Given a push racing the channel's own authentication
		pushed := make(chan struct{})
		go func() {
			defer close(pushed)
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				if channels := server.registry.ChannelsFor(identity); len(channels) > 0 {
					_ = channels[0].Consume(context.Background(), event.NewMessageReceived(domain.Message{
						Sender: "alice", Receiver: identity, Text: "early", SentAt: time.Now(),
					}))
					return
				}
				time.Sleep(50 * time.Microsecond)
			}
		}()

		// When the channel authenticates through the upgrade header
		header := http.Header{"Authorization": []string{"Bearer " + server.token(t, identity)}}
		conn := dial(t, server, header)

		// Then authenticated is the first frame, the delivery comes after
		got := readFrame[AuthenticatedPayload](t, conn, TypeAuthenticated)
		req.Equal(identity.String(), got.Identity)
		<-pushed
		received := readFrame[MessagePayload](t, conn, TypeReceiveMessage)
		req.Equal("early", received.Text)
		_ = conn.Close()
	}
}
