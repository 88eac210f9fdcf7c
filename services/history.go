package services

import (
	"context"
	"messenger/auth"
	"messenger/contract"
	"messenger/domain"
	"messenger/errors"
)

// HistoryResolver returns the conversation between the caller and another identity.
type HistoryResolver struct {
	store contract.IMessageStore
}

func NewHistoryResolver(store contract.IMessageStore) *HistoryResolver {
	return &HistoryResolver{store: store}
}

// History only serves conversations the caller is a party of: caller must be
// the identity verified upstream. An empty conversation is an empty slice.
func (h *HistoryResolver) History(ctx context.Context, caller, other domain.Identity) ([]domain.Message, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity != caller {
		return nil, errors.ErrInvalidSender
	}
	if other.IsZero() {
		return nil, errors.ErrInvalidReceiver
	}

	messages, err := h.store.Query(ctx, caller, other)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}
