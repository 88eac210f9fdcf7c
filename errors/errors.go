package errors

import "fmt"

// Credential verification.
var (
	ErrMissingToken   = fmt.Errorf("authorization token is missing")
	ErrMalformedToken = fmt.Errorf("authorization token is malformed")
	ErrExpiredToken   = fmt.Errorf("authorization token is expired")
)

// Routing.
var (
	ErrInvalidSender   = fmt.Errorf("sender is not the authenticated identity")
	ErrInvalidReceiver = fmt.Errorf("receiver is required")
	ErrEmptyText       = fmt.Errorf("message text is empty")
	ErrTextTooLong     = fmt.Errorf("message text is too long")
	ErrPersistFailed   = fmt.Errorf("message could not be persisted")
)

// Storage.
var (
	ErrStoreUnavailable = fmt.Errorf("message store is unavailable")
	ErrNotFound         = fmt.Errorf("not found")
)

// Sessions and channels.
var (
	ErrChannelAlreadyBound = fmt.Errorf("channel is bound to another identity")
	ErrChannelClosed       = fmt.Errorf("channel is closed")
	ErrChannelFull         = fmt.Errorf("channel outbound queue is full")
)

// Identity store.
var (
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidSignup      = fmt.Errorf("invalid signup request")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)

var ErrWorkerPanic = fmt.Errorf("worker panic")
