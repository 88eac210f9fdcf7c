package client

import (
	"context"
	"messenger/infrastructure/grpc/rpc"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// MessengerClient wraps the rpc stub and attaches the bearer token obtained at Login.
type MessengerClient struct {
	client *rpc.MessengerClient
	mu     sync.RWMutex
	token  string
}

// Dial opens a plaintext connection; TLS termination happens in front of the service.
func Dial(address string) (*grpc.ClientConn, error) {
	return grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func NewMessengerClient(conn grpc.ClientConnInterface) *MessengerClient {
	return &MessengerClient{client: rpc.NewMessengerClient(conn)}
}

func (c *MessengerClient) Signup(ctx context.Context, email, password string) (string, error) {
	res, err := c.client.Signup(ctx, &rpc.SignupRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	return res.UserID, nil
}

// Login stores the returned token for the following calls.
func (c *MessengerClient) Login(ctx context.Context, email, password string) error {
	res, err := c.client.Login(ctx, &rpc.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	c.SetToken(res.Token)
	return nil
}

func (c *MessengerClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *MessengerClient) Send(ctx context.Context, receiver, text string) (*rpc.SendMessageResponse, error) {
	return c.client.SendMessage(c.authorized(ctx), &rpc.SendMessageRequest{Receiver: receiver, Text: text})
}

func (c *MessengerClient) History(ctx context.Context, other string) ([]*rpc.Message, error) {
	res, err := c.client.History(c.authorized(ctx), &rpc.HistoryRequest{Other: other})
	if err != nil {
		return nil, err
	}
	return res.Messages, nil
}

// Connect opens the delivery stream. Cancel ctx to close it.
func (c *MessengerClient) Connect(ctx context.Context) (rpc.ConnectClient, error) {
	return c.client.Connect(c.authorized(ctx), &rpc.ConnectRequest{})
}

func (c *MessengerClient) authorized(ctx context.Context) context.Context {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}
