package runtime

import (
	"messenger/contract"
	"messenger/domain"
	"messenger/errors"
	"sync"
	"time"
)

type session struct {
	sink     contract.EventSink
	joinedAt time.Time
}

// Registry tracks which identities are reachable and through which channels.
// It is the only mutable structure shared between connections.
type Registry struct {
	mu       sync.RWMutex
	now      func() time.Time
	sessions map[domain.Identity][]session        // identity -> channels, in join order
	owners   map[domain.ChannelID]domain.Identity // channel -> identity
}

func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		now:      now,
		sessions: make(map[domain.Identity][]session),
		owners:   make(map[domain.ChannelID]domain.Identity),
	}
}

// Bind attaches channel to identity.
// Binding the same pair twice is a no-op; a channel already owned by another
// identity is refused with ErrChannelAlreadyBound.
func (r *Registry) Bind(identity domain.Identity, channel contract.EventSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.owners[channel.ID()]; ok {
		if owner != identity {
			return errors.ErrChannelAlreadyBound
		}
		return nil
	}
	r.owners[channel.ID()] = identity
	r.sessions[identity] = append(r.sessions[identity], session{sink: channel, joinedAt: r.now()})
	return nil
}

// Unbind removes exactly the session of channelID and does nothing when it is unknown.
// Identities left without channels are dropped so the map does not grow forever.
func (r *Registry) Unbind(channelID domain.ChannelID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.owners[channelID]
	if !ok {
		return
	}
	delete(r.owners, channelID)

	remaining := r.sessions[identity][:0:0]
	for _, s := range r.sessions[identity] {
		if s.sink.ID() != channelID {
			remaining = append(remaining, s)
		}
	}
	if len(remaining) == 0 {
		delete(r.sessions, identity)
		return
	}
	r.sessions[identity] = remaining
}

// ChannelsFor returns a snapshot of the live channels of identity, oldest first.
// The caller may iterate it while channels come and go.
func (r *Registry) ChannelsFor(identity domain.Identity) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := r.sessions[identity]
	sinks := make([]contract.EventSink, 0, len(sessions))
	for _, s := range sessions {
		sinks = append(sinks, s.sink)
	}
	return sinks
}

func (r *Registry) Sessions(identity domain.Identity) []domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]domain.Session, 0, len(r.sessions[identity]))
	for _, s := range r.sessions[identity] {
		sessions = append(sessions, domain.Session{Identity: identity, Channel: s.sink.ID(), JoinedAt: s.joinedAt})
	}
	return sessions
}

func (r *Registry) Online(identity domain.Identity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[identity]) > 0
}

// Count returns the number of bound channels.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}

// Identities returns the number of identities with at least one channel.
func (r *Registry) Identities() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Channels returns a snapshot of every bound channel.
func (r *Registry) Channels() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.owners))
	for _, sessions := range r.sessions {
		for _, s := range sessions {
			sinks = append(sinks, s.sink)
		}
	}
	return sinks
}
