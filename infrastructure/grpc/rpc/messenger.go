package rpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

const (
	ServiceName       = "messenger.v1.Messenger"
	SignupMethod      = "/" + ServiceName + "/Signup"
	LoginMethod       = "/" + ServiceName + "/Login"
	SendMessageMethod = "/" + ServiceName + "/SendMessage"
	HistoryMethod     = "/" + ServiceName + "/History"
	ConnectMethod     = "/" + ServiceName + "/Connect"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResponse struct {
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type SendMessageRequest struct {
	Receiver string `json:"receiver"`
	Text     string `json:"text"`
}

type SendMessageResponse struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryRequest struct {
	Other string `json:"other"`
}

type HistoryResponse struct {
	Messages []*Message `json:"messages"`
}

type ConnectRequest struct{}

type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type MessengerServer interface {
	Signup(context.Context, *SignupRequest) (*SignupResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	History(context.Context, *HistoryRequest) (*HistoryResponse, error)
	Connect(*ConnectRequest, ConnectServer) error
}

// ConnectServer is the server side of the Connect stream.
type ConnectServer interface {
	Send(*Message) error
	grpc.ServerStream
}

type connectServer struct {
	grpc.ServerStream
}

func (x *connectServer) Send(m *Message) error {
	return x.ServerStream.SendMsg(m)
}

func RegisterMessengerServer(s grpc.ServiceRegistrar, srv MessengerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MessengerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Signup", Handler: unaryHandler(SignupMethod, MessengerServer.Signup)},
		{MethodName: "Login", Handler: unaryHandler(LoginMethod, MessengerServer.Login)},
		{MethodName: "SendMessage", Handler: unaryHandler(SendMessageMethod, MessengerServer.SendMessage)},
		{MethodName: "History", Handler: unaryHandler(HistoryMethod, MessengerServer.History)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Connect", Handler: connectHandler, ServerStreams: true},
	},
	Metadata: "messenger/v1/messenger",
}

func unaryHandler[Req, Res any](fullMethod string,
	call func(MessengerServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MessengerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MessengerServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func connectHandler(srv any, stream grpc.ServerStream) error {
	in := new(ConnectRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(MessengerServer).Connect(in, &connectServer{stream})
}

// MessengerClient calls the service with the JSON codec.
type MessengerClient struct {
	cc grpc.ClientConnInterface
}

func NewMessengerClient(cc grpc.ClientConnInterface) *MessengerClient {
	return &MessengerClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
}

func (c *MessengerClient) Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*SignupResponse, error) {
	out := new(SignupResponse)
	if err := c.cc.Invoke(ctx, SignupMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MessengerClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.cc.Invoke(ctx, LoginMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MessengerClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	out := new(SendMessageResponse)
	if err := c.cc.Invoke(ctx, SendMessageMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MessengerClient) History(ctx context.Context, in *HistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error) {
	out := new(HistoryResponse)
	if err := c.cc.Invoke(ctx, HistoryMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// ConnectClient is the client side of the Connect stream.
type ConnectClient interface {
	Recv() (*Message, error)
	grpc.ClientStream
}

type connectClient struct {
	grpc.ClientStream
}

func (x *connectClient) Recv() (*Message, error) {
	m := new(Message)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *MessengerClient) Connect(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (ConnectClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], ConnectMethod, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &connectClient{stream}
	if err = x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err = x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
