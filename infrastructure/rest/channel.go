package rest

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"messenger/auth"
	"messenger/contract"
	"messenger/domain"
	"messenger/domain/event"
	"messenger/errors"
	"messenger/observability"
	"messenger/sink"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 64 * 1024
	outboundBuffer = 16

	defaultAuthTimeout = 10 * time.Second
)

// makeUpgrader creates a WebSocket upgrader with origin checking.
func makeUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*")
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // non-browser clients
			}
			return originSet[origin]
		},
	}
}

// ChannelHandler upgrades GET /ws into an authenticated real-time channel.
type ChannelHandler struct {
	log         *slog.Logger
	verifier    auth.Verifier
	registry    contract.IRegistry
	router      contract.IRouter
	metrics     *observability.Metrics
	upgrader    websocket.Upgrader
	authTimeout time.Duration
	bufferSize  int
}

func NewChannelHandler(log *slog.Logger, verifier auth.Verifier, registry contract.IRegistry,
	router contract.IRouter, metrics *observability.Metrics,
	allowedOrigins []string, authTimeout time.Duration, bufferSize int) *ChannelHandler {
	if authTimeout <= 0 {
		authTimeout = defaultAuthTimeout
	}
	return &ChannelHandler{
		log:         log,
		verifier:    verifier,
		registry:    registry,
		router:      router,
		metrics:     metrics,
		upgrader:    makeUpgrader(allowedOrigins),
		authTimeout: authTimeout,
		bufferSize:  bufferSize,
	}
}

// ServeHTTP runs the connection until it closes. A bearer token on the upgrade
// request authenticates right away, otherwise the first frame must be
// "authenticate" and arrive before the auth deadline.
func (h *ChannelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Channel upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	c := &connection{
		ChannelHandler: h,
		conn:           conn,
		id:             domain.NewChannelID(),
		inbound:        make(chan Envelope),
		outbound:       make(chan Envelope, outboundBuffer),
		writerDone:     make(chan struct{}),
	}
	headerToken, _ := auth.BearerToken(r.Header.Get("Authorization"))
	c.run(r.Context(), headerToken)
}

// connection is one open channel.
// The reader goroutine decodes frames into inbound, the writer goroutine owns
// every write to conn and the session loop in run holds the state.
type connection struct {
	*ChannelHandler
	conn       *websocket.Conn
	id         domain.ChannelID
	identity   domain.Identity
	sink       *sink.ChannelSink
	inbound    chan Envelope
	outbound   chan Envelope
	writerDone chan struct{}
}

func (c *connection) run(ctx context.Context, headerToken string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.sink = sink.NewChannelSink(c.id, c.bufferSize)
	go c.readLoop(ctx)
	go c.writeLoop(ctx, cancel)

	if c.awaitAuthentication(ctx, headerToken) {
		c.serve(ctx)
	}

	// Flush pending frames then let the writer send the close frame
	close(c.outbound)
	<-c.writerDone
}

// awaitAuthentication is the awaiting-auth state.
func (c *connection) awaitAuthentication(ctx context.Context, headerToken string) bool {
	if headerToken != "" {
		return c.authenticate(headerToken)
	}

	timer := time.NewTimer(c.authTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		c.log.Warn("Channel authentication timed out", "channel_id", c.id)
		c.rejectAuth(errors.ErrExpiredToken, "authentication deadline exceeded")
		return false
	case env, ok := <-c.inbound:
		if !ok {
			return false
		}
		if env.Type != TypeAuthenticate {
			c.rejectAuth(errors.ErrMissingToken, "authenticate first")
			return false
		}
		var payload AuthenticatePayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			c.rejectAuth(errors.ErrMalformedToken, "invalid authenticate payload")
			return false
		}
		return c.authenticate(payload.Token)
	}
}

func (c *connection) authenticate(token string) bool {
	identity, err := c.verifier.Verify(token)
	if err != nil {
		c.log.Warn("Channel authentication rejected", "channel_id", c.id, "error", err)
		c.rejectAuth(err, err.Error())
		return false
	}
	if err = c.registry.Bind(identity, c.sink); err != nil {
		c.log.Error("Channel bind failed", "channel_id", c.id, "identity", identity, "error", err)
		c.rejectAuth(err, err.Error())
		return false
	}
	c.identity = identity
	c.metrics.ChannelOpened()
	c.log.Info("Channel authenticated", "channel_id", c.id, "identity", identity)
	c.send(TypeAuthenticated, AuthenticatedPayload{Identity: identity.String()})
	return true
}

func (c *connection) rejectAuth(err error, message string) {
	c.metrics.AuthRejected("channel")
	c.send(TypeAuthError, ErrorPayload{Code: errors.Code(err), Message: message})
}

// serve is the authenticated state; it ends on close or protocol error.
func (c *connection) serve(ctx context.Context) {
	defer func() {
		c.registry.Unbind(c.id)
		c.sink.Close()
		c.metrics.ChannelClosed()
		c.log.Info("Channel closed", "channel_id", c.id, "identity", c.identity)
	}()

	routeCtx := auth.WithIdentity(ctx, c.identity)
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-c.inbound:
			if !ok {
				return
			}
			if !c.handle(routeCtx, env) {
				return
			}
		}
	}
}

// handle returns false when the frame is a protocol error and the channel must close.
func (c *connection) handle(ctx context.Context, env Envelope) bool {
	switch env.Type {
	case TypeSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			c.send(TypeError, ErrorPayload{Code: "protocol_error", Message: "invalid send_message payload"})
			return false
		}
		message, err := c.router.Route(ctx, c.identity, domain.Identity(payload.Receiver), payload.Text)
		if err != nil {
			c.send(TypeError, ErrorPayload{Ref: payload.Ref, Code: errors.Code(err), Message: err.Error()})
			return true
		}
		c.send(TypeMessageSent, MessageSentPayload{Ref: payload.Ref, ID: message.ID.String(), Timestamp: message.SentAt})
		return true
	case TypeAuthenticate:
		// Already authenticated: the identity is fixed for the channel lifetime
		c.send(TypeError, ErrorPayload{Code: "already_authenticated", Message: "channel is already authenticated"})
		return true
	default:
		c.send(TypeError, ErrorPayload{Code: "protocol_error", Message: "unknown frame type " + env.Type})
		return false
	}
}

func (c *connection) send(frameType string, payload any) {
	env, err := NewEnvelope(frameType, payload)
	if err != nil {
		c.log.Error("Frame encoding failed", "channel_id", c.id, "type", frameType, "error", err)
		return
	}
	select {
	case c.outbound <- env:
	case <-c.writerDone:
	}
}

func (c *connection) readLoop(ctx context.Context) {
	defer close(c.inbound)

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			var syntaxErr *json.SyntaxError
			if stderrors.As(err, &syntaxErr) {
				c.log.Warn("Invalid frame on channel", "channel_id", c.id, "error", err)
			} else {
				c.log.Debug("Channel read ended", "channel_id", c.id, "error", err)
			}
			return
		}
		// Any frame resets the read deadline
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		select {
		case c.inbound <- env:
		case <-ctx.Done():
			return
		}
	}
}

// writeLoop drains outbound frames. Sink events are only drained once the
// authenticated frame is on the wire, so no receive_message precedes it.
func (c *connection) writeLoop(ctx context.Context, cancel context.CancelFunc) {
	defer close(c.writerDone)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	var events <-chan event.DomainEvent
	for {
		select {
		case env, ok := <-c.outbound:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.write(env); err != nil {
				cancel()
				return
			}
			if env.Type == TypeAuthenticated {
				events = c.sink.Events()
			}
		case evt := <-events:
			received, ok := evt.(event.MessageReceived)
			if !ok {
				continue
			}
			env, err := NewEnvelope(TypeReceiveMessage, fromMessageReceived(received))
			if err != nil {
				continue
			}
			if err = c.write(env); err != nil {
				cancel()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cancel()
				return
			}
		}
	}
}

func (c *connection) write(env Envelope) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(env); err != nil {
		c.log.Debug("Channel write failed", "channel_id", c.id, "error", err)
		return err
	}
	return nil
}
