package errors

import (
	stderrors "errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MapToHTTPStatus translates a service error into the status code returned by the REST surface.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrMissingToken), stderrors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrMalformedToken), stderrors.Is(err, ErrExpiredToken),
		stderrors.Is(err, ErrInvalidSender):
		return http.StatusForbidden
	case stderrors.Is(err, ErrEmptyText), stderrors.Is(err, ErrTextTooLong),
		stderrors.Is(err, ErrInvalidReceiver), stderrors.Is(err, ErrInvalidSignup):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MapToGRPCError translates a service error into a gRPC status error.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, ErrMissingToken), stderrors.Is(err, ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, err.Error())
	case stderrors.Is(err, ErrMalformedToken), stderrors.Is(err, ErrExpiredToken),
		stderrors.Is(err, ErrInvalidSender):
		return status.Error(codes.PermissionDenied, err.Error())
	case stderrors.Is(err, ErrEmptyText), stderrors.Is(err, ErrTextTooLong),
		stderrors.Is(err, ErrInvalidReceiver), stderrors.Is(err, ErrInvalidSignup):
		return status.Error(codes.InvalidArgument, err.Error())
	case stderrors.Is(err, ErrUserAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Code returns a short machine-readable code for an error, used in channel error frames and metrics.
func Code(err error) string {
	switch {
	case err == nil:
		return "ok"
	case stderrors.Is(err, ErrMissingToken):
		return "missing_token"
	case stderrors.Is(err, ErrMalformedToken):
		return "malformed_token"
	case stderrors.Is(err, ErrExpiredToken):
		return "expired_token"
	case stderrors.Is(err, ErrInvalidSender):
		return "invalid_sender"
	case stderrors.Is(err, ErrInvalidReceiver):
		return "invalid_receiver"
	case stderrors.Is(err, ErrEmptyText):
		return "empty_text"
	case stderrors.Is(err, ErrTextTooLong):
		return "text_too_long"
	case stderrors.Is(err, ErrPersistFailed):
		return "persist_failed"
	case stderrors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case stderrors.Is(err, ErrInvalidSignup):
		return "invalid_signup"
	case stderrors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case stderrors.Is(err, ErrUserAlreadyExists):
		return "user_exists"
	case stderrors.Is(err, ErrChannelClosed):
		return "channel_closed"
	case stderrors.Is(err, ErrChannelFull):
		return "channel_full"
	default:
		return "internal"
	}
}
