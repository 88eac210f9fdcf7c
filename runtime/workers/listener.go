package workers

import "net"

// ListenFunc opens the listener a server worker serves on.
// It is called again on every restart.
type ListenFunc func() (net.Listener, error)

func TCPListener(address string) ListenFunc {
	return func() (net.Listener, error) {
		return net.Listen("tcp", address)
	}
}
