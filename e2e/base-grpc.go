package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"messenger/infrastructure/grpc/client"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const stepTimeout = 30 * time.Second

const password = "ComplexPass123!"

// BaseGrpcSuite drives a running messenger over gRPC. Scenarios embed it.
type BaseGrpcSuite struct {
	suite.Suite
	Config Config
}

func (s *BaseGrpcSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.GRPCAddr == "" {
		s.T().Skip("MESSENGER_GRPC_ADDR is not set")
	}
}

// GrpcConn dials the messenger with every call traced to the test log.
func (s *BaseGrpcSuite) GrpcConn(t *testing.T, name string) *grpc.ClientConn {
	s.banner(t, name)
	conn, err := grpc.NewClient(s.Config.GRPCAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.traceUnary(t)),
		grpc.WithStreamInterceptor(s.traceStream(t)),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.GRPCAddr)
	return conn
}

// WithMessenger runs fn with a client logged in as email, or anonymous when email is empty.
func (s *BaseGrpcSuite) WithMessenger(name, email string, fn func(ctx context.Context, messenger *client.MessengerClient)) {
	conn := s.GrpcConn(s.T(), name)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()

	messenger := client.NewMessengerClient(conn)
	if email != "" {
		s.Require().NoError(messenger.Login(ctx, email, password), "login as "+email)
	}
	fn(ctx, messenger)
}

func (s *BaseGrpcSuite) banner(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

func (s *BaseGrpcSuite) traceUnary(t *testing.T) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)

		var b strings.Builder
		fmt.Fprintf(&b, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))
		if s.Config.DebugJSON {
			fmt.Fprintf(&b, "\nREQUEST:\n%s\n", indent(req))
			if err != nil {
				fmt.Fprintln(&b, "ERROR:", err)
			} else {
				fmt.Fprintf(&b, "RESPONSE:\n%s\n", indent(reply))
			}
		}
		t.Log(b.String())
		return err
	}
}

func (s *BaseGrpcSuite) traceStream(t *testing.T) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		stream, err := streamer(ctx, desc, cc, method, opts...)
		t.Logf("GRPC stream %s opened [%s]", method, status.Code(err))
		return stream, err
	}
}

func indent(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(raw)
}
