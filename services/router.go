package services

import (
	"context"
	"fmt"
	"log/slog"
	"messenger/auth"
	"messenger/contract"
	"messenger/domain"
	"messenger/domain/event"
	"messenger/errors"
	"messenger/observability"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const defaultPushTimeout = 2 * time.Second

var validate = validator.New()

// MessageRouter persists a message, then pushes it to every live channel of the receiver.
type MessageRouter struct {
	log           *slog.Logger
	registry      contract.IRegistry
	store         contract.IMessageStore
	metrics       *observability.Metrics
	maxTextLength int
	pushTimeout   time.Duration
}

func NewMessageRouter(log *slog.Logger, registry contract.IRegistry, store contract.IMessageStore,
	metrics *observability.Metrics, maxTextLength int, pushTimeout time.Duration) *MessageRouter {
	if pushTimeout <= 0 {
		pushTimeout = defaultPushTimeout
	}
	return &MessageRouter{
		log:           log,
		registry:      registry,
		store:         store,
		metrics:       metrics,
		maxTextLength: maxTextLength,
		pushTimeout:   pushTimeout,
	}
}

// Route never trusts sender on its own: it must match the identity verified
// upstream and carried by ctx.
// Delivery failures are logged and counted, never returned. The message is
// durable at that point and the recipient can fetch it from history.
func (r *MessageRouter) Route(ctx context.Context, sender, receiver domain.Identity, text string) (domain.Message, error) {
	start := time.Now()
	message, err := r.route(ctx, sender, receiver, text)
	if err != nil {
		r.metrics.RouteError(errors.Code(err))
		return domain.Message{}, err
	}
	r.metrics.MessageRouted(time.Since(start))
	return message, nil
}

func (r *MessageRouter) route(ctx context.Context, sender, receiver domain.Identity, text string) (domain.Message, error) {
	// 1. The sender is the authenticated identity, nothing else
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity != sender {
		return domain.Message{}, errors.ErrInvalidSender
	}

	// 2. Validate the payload before touching the store
	if err := r.validate(receiver, text); err != nil {
		return domain.Message{}, err
	}

	// 3. Persist first so a delivered message is always in history
	message, err := r.store.Append(ctx, domain.Message{Sender: sender, Receiver: receiver, Text: text})
	if err != nil {
		r.log.Error("Message not persisted", "sender", sender, "receiver", receiver, "error", err)
		return domain.Message{}, fmt.Errorf("%w: %w", errors.ErrPersistFailed, err)
	}

	// 4. Fan out to every live channel of the receiver
	r.deliver(ctx, message)
	return message, nil
}

func (r *MessageRouter) validate(receiver domain.Identity, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.ErrEmptyText
	}
	if r.maxTextLength > 0 {
		if err := validate.Var(text, fmt.Sprintf("max=%d", r.maxTextLength)); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrTextTooLong, err)
		}
	}
	if receiver.IsZero() {
		return errors.ErrInvalidReceiver
	}
	return nil
}

// deliver pushes sequentially with a bounded timeout per channel.
// Pushes outlive the caller's context: the message is already persisted and
// a client hanging up must not cancel delivery to the receiver.
func (r *MessageRouter) deliver(ctx context.Context, message domain.Message) {
	evt := event.NewMessageReceived(message)
	base := context.WithoutCancel(ctx)

	for _, channel := range r.registry.ChannelsFor(message.Receiver) {
		pushCtx, cancel := context.WithTimeout(base, r.pushTimeout)
		err := channel.Consume(pushCtx, evt)
		cancel()
		if err != nil {
			r.metrics.DeliveryFailed()
			r.log.Warn("Push to channel failed",
				"identity", message.Receiver,
				"channel_id", channel.ID(),
				"message_id", message.ID,
				"error", err)
			continue
		}
		r.metrics.Delivered()
	}
}
