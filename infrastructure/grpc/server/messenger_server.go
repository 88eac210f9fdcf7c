package server

import (
	"context"
	"log/slog"
	"messenger/auth"
	"messenger/contract"
	"messenger/domain"
	"messenger/domain/event"
	"messenger/errors"
	"messenger/infrastructure/grpc/rpc"
	"messenger/observability"
	"messenger/services"
	"messenger/sink"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/samber/lo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// ChannelIDHeader carries the bound channel ID in the Connect stream headers.
const ChannelIDHeader = "x-channel-id"

type MessengerServer struct {
	log                  *slog.Logger
	authService          services.IAuthService
	router               contract.IRouter
	history              contract.IHistoryResolver
	registry             contract.IRegistry
	metrics              *observability.Metrics
	connectionBufferSize int
}

func NewMessengerServer(log *slog.Logger, authService services.IAuthService, router contract.IRouter,
	history contract.IHistoryResolver, registry contract.IRegistry, metrics *observability.Metrics,
	connectionBufferSize int) *MessengerServer {
	return &MessengerServer{
		log:                  log,
		authService:          authService,
		router:               router,
		history:              history,
		registry:             registry,
		metrics:              metrics,
		connectionBufferSize: connectionBufferSize,
	}
}

// NewServer builds a gRPC server guarded by the token interceptors.
// Signup and Login stay reachable without credentials.
func NewServer(log *slog.Logger, tokens *auth.TokenService, messenger rpc.MessengerServer) *grpc.Server {
	interceptor := auth.NewInterceptor(tokens, rpc.SignupMethod, rpc.LoginMethod)
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(log),
			interceptor.Unary,
		),
		grpc.ChainStreamInterceptor(interceptor.Stream),
	)
	rpc.RegisterMessengerServer(server, messenger)
	return server
}

func (s *MessengerServer) Signup(ctx context.Context, req *rpc.SignupRequest) (*rpc.SignupResponse, error) {
	userID, err := s.authService.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &rpc.SignupResponse{UserID: userID}, nil
}

func (s *MessengerServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	token, err := s.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &rpc.LoginResponse{Token: token.String()}, nil
}

// SendMessage routes on behalf of the identity carried by the token.
func (s *MessengerServer) SendMessage(ctx context.Context, req *rpc.SendMessageRequest) (*rpc.SendMessageResponse, error) {
	sender, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, errors.MapToGRPCError(errors.ErrMissingToken)
	}
	message, err := s.router.Route(ctx, sender, domain.Identity(req.Receiver), req.Text)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &rpc.SendMessageResponse{ID: message.ID.String(), Timestamp: message.SentAt}, nil
}

func (s *MessengerServer) History(ctx context.Context, req *rpc.HistoryRequest) (*rpc.HistoryResponse, error) {
	caller, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, errors.MapToGRPCError(errors.ErrMissingToken)
	}
	messages, err := s.history.History(ctx, caller, domain.Identity(req.Other))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &rpc.HistoryResponse{Messages: toMessages(messages)}, nil
}

// Connect binds a channel for the caller and streams every message received while it stays open.
// This method blocks until the client disconnects or a send fails.
func (s *MessengerServer) Connect(_ *rpc.ConnectRequest, stream rpc.ConnectServer) error {
	identity, ok := auth.IdentityFromContext(stream.Context())
	if !ok {
		return errors.MapToGRPCError(errors.ErrMissingToken)
	}
	channel := sink.NewChannelSink(domain.NewChannelID(), s.connectionBufferSize)
	if err := s.registry.Bind(identity, channel); err != nil {
		return errors.MapToGRPCError(err)
	}
	s.metrics.ChannelOpened()
	s.log.Info("Stream connected", "channel_id", channel.ID(), "identity", identity)
	defer func() {
		s.registry.Unbind(channel.ID())
		channel.Close()
		s.metrics.ChannelClosed()
	}()

	// Headers tell the client the channel is bound and deliveries will reach it
	if err := stream.SendHeader(metadata.Pairs(ChannelIDHeader, string(channel.ID()))); err != nil {
		return err
	}

	for {
		select {
		case <-stream.Context().Done():
			s.log.Info("Stream disconnected", "channel_id", channel.ID(), "identity", identity)
			return nil
		case evt := <-channel.Events():
			switch e := evt.(type) {
			case event.MessageReceived:
				if err := stream.Send(toMessageEvent(e)); err != nil {
					s.log.Warn("Failed to push event to stream",
						"channel_id", channel.ID(),
						"identity", identity,
						"error", err)
					return err
				}
			}
		}
	}
}

func toMessages(messages []domain.Message) []*rpc.Message {
	return lo.Map(messages, func(item domain.Message, _ int) *rpc.Message {
		return &rpc.Message{
			ID:        item.ID.String(),
			Sender:    item.Sender.String(),
			Receiver:  item.Receiver.String(),
			Text:      item.Text,
			Timestamp: item.SentAt,
		}
	})
}

func toMessageEvent(e event.MessageReceived) *rpc.Message {
	return &rpc.Message{
		ID:        e.ID.String(),
		Sender:    e.Sender.String(),
		Receiver:  e.Receiver.String(),
		Text:      e.Text,
		Timestamp: e.At,
	}
}
