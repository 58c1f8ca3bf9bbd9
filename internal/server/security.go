package server

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/dtroode/credential-server/internal/model"
)

// ALPN protocol identifiers.
const (
	ProtoHTTP1 = "http/1.1"
	ProtoHTTP2 = "h2"
)

// TLSListener represents a TLS-enabled network listener.
// It provides secure network connections using TLS certificates.
type TLSListener struct {
	certFileName       string
	privateKeyFileName string
	nextProtos         []string
}

// NewTLSListener creates a new TLSListener instance.
//
// Parameters:
//   - certFileName: Path to the TLS certificate file
//   - privateKeyFileName: Path to the private key file
//   - nextProtos: ALPN protocols to advertise; gRPC clients require ProtoHTTP2
//
// Returns a pointer to the newly created TLSListener instance.
func NewTLSListener(certFileName, privateKeyFileName string, nextProtos ...string) *TLSListener {
	return &TLSListener{
		certFileName:       certFileName,
		privateKeyFileName: privateKeyFileName,
		nextProtos:         nextProtos,
	}
}

// Listen loads the certificate pair and creates a TLS listener on addr.
func (l *TLSListener) Listen(protocol, addr string) (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(l.certFileName, l.privateKeyFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   l.nextProtos,
	}
	return tls.Listen(protocol, addr, tlsConfig)
}

// PlainListener represents a plain (non-TLS) network listener.
type PlainListener struct{}

// NewPlainListener creates a new PlainListener instance.
func NewPlainListener() *PlainListener {
	return &PlainListener{}
}

// Listen creates an unencrypted listener on addr.
func (l *PlainListener) Listen(protocol, addr string) (net.Listener, error) {
	return net.Listen(protocol, addr)
}

// SecurityLayerFor returns a TLS layer when enableHTTPS is set and a plain
// one otherwise.
func SecurityLayerFor(enableHTTPS bool, certFileName, privateKeyFileName string, nextProtos ...string) model.SecurityLayer {
	if !enableHTTPS {
		return NewPlainListener()
	}
	return NewTLSListener(certFileName, privateKeyFileName, nextProtos...)
}
