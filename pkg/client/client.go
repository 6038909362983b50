package client

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
)

// Zero means a connect attempt blocks until the OS gives up.
const defaultDialTimeout = 0

// Dialer opens TCP connections to origin servers.
type Dialer interface {
	Dial(ctx context.Context, host, port string) (net.Conn, error)
}

type Client struct {
	dialer *net.Dialer
}

type ClientOption func(*Client)

// WithTimeout bounds how long a connect attempt may take. Zero disables the bound.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.dialer.Timeout = timeout
	}
}

// WithDialer replaces the underlying net.Dialer, e.g. one built by NewTransport.
func WithDialer(dialer *net.Dialer) ClientOption {
	return func(c *Client) {
		c.dialer = dialer
	}
}

func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		dialer: &net.Dialer{Timeout: defaultDialTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Dial connects to host:port.
func (c *Client) Dial(ctx context.Context, host, port string) (net.Conn, error) {
	addr := net.JoinHostPort(host, port)
	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial upstream %s", addr)
	}
	return conn, nil
}
