package client

import (
	"net"
	"time"
)

type TransportOption func(*net.Dialer)

// WithKeepAlive sets the TCP keep-alive period of upstream connections.
// Negative disables keep-alive probes.
func WithKeepAlive(period time.Duration) TransportOption {
	return func(d *net.Dialer) {
		d.KeepAlive = period
	}
}

// WithConnectTimeout bounds a single connect attempt.
func WithConnectTimeout(timeout time.Duration) TransportOption {
	return func(d *net.Dialer) {
		d.Timeout = timeout
	}
}

// WithLocalAddr binds outgoing connections to a local address.
func WithLocalAddr(addr net.Addr) TransportOption {
	return func(d *net.Dialer) {
		d.LocalAddr = addr
	}
}

func NewTransport(opts ...TransportOption) *net.Dialer {
	dialer := &net.Dialer{}
	for _, opt := range opts {
		opt(dialer)
	}
	return dialer
}
