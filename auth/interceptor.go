package auth

import (
	"context"
	stderrors "errors"
	"messenger/errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Interceptor verifies bearer tokens on the gRPC surface.
type Interceptor struct {
	tokens        *TokenService
	publicMethods map[string]struct{}
}

// NewInterceptor builds an interceptor; publicMethods are full method names allowed without a token.
func NewInterceptor(tokens *TokenService, publicMethods ...string) *Interceptor {
	public := make(map[string]struct{}, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = struct{}{}
	}
	return &Interceptor{tokens: tokens, publicMethods: public}
}

// Unary lets Signup and Login through and verifies the bearer token of every other call.
func (i *Interceptor) Unary(ctx context.Context, req any,
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if i.isPublicMethod(info.FullMethod) {
		return handler(ctx, req)
	}
	verified, err := i.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return handler(verified, req)
}

// Stream verifies the token once, when the stream opens. The identity then
// holds for the life of the stream.
func (i *Interceptor) Stream(srv any, ss grpc.ServerStream,
	info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if i.isPublicMethod(info.FullMethod) {
		return handler(srv, ss)
	}
	verified, err := i.authenticate(ss.Context())
	if err != nil {
		return err
	}
	return handler(srv, &authenticatedStream{ServerStream: ss, ctx: verified})
}

// authenticate answers Unauthenticated when no bearer token is presented and
// PermissionDenied when the token does not verify, like the REST middleware.
func (i *Interceptor) authenticate(ctx context.Context) (context.Context, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("authorization"); len(values) > 0 {
			header = values[0]
		}
	}

	token, err := BearerToken(header)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	claims, err := i.tokens.ValidateToken(token)
	switch {
	case stderrors.Is(err, errors.ErrMissingToken):
		return nil, status.Error(codes.Unauthenticated, err.Error())
	case err != nil:
		return nil, status.Error(codes.PermissionDenied, "invalid or expired token")
	}
	return WithClaims(ctx, claims), nil
}

func (i *Interceptor) isPublicMethod(method string) bool {
	_, ok := i.publicMethods[method]
	return ok
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}
