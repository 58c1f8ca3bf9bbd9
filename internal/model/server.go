package model

import (
	"context"
	"net"
)

// SecurityLayer opens listeners. protocol is the ALPN name advertised when
// the layer terminates TLS; plain layers ignore it.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is one network front end of the credential service.
// Start blocks until Stop is called or serving fails.
type Server interface {
	Name() string
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
