package proxy

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ashpect/cacheproxy/pkg/accesslog"
	"github.com/ashpect/cacheproxy/pkg/cache"
	"github.com/ashpect/cacheproxy/pkg/client"
)

// DefaultMaxObjectSize is the smallest response size that is never cached.
const DefaultMaxObjectSize = 102400

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Recorder receives one entry per handled connection.
type Recorder interface {
	Record(ctx context.Context, e accesslog.Entry) error
}

// Server accepts client connections and relays each one on its own goroutine.
// All connections share one cache.
type Server struct {
	cache         cache.Cache
	dialer        client.Dialer
	maxObjectSize int
	log           zerolog.Logger
	recorder      Recorder

	connID atomic.Uint64
	wg     sync.WaitGroup
}

type ProxyOption func(*Server)

func WithDialer(dialer client.Dialer) ProxyOption {
	return func(s *Server) {
		s.dialer = dialer
	}
}

// WithMaxObjectSize sets the response size at and above which nothing is cached.
func WithMaxObjectSize(size int) ProxyOption {
	return func(s *Server) {
		if size > 0 {
			s.maxObjectSize = size
		} else {
			panic("max object size must be > 0")
		}
	}
}

func WithLogger(logger zerolog.Logger) ProxyOption {
	return func(s *Server) {
		s.log = logger
	}
}

func WithRecorder(recorder Recorder) ProxyOption {
	return func(s *Server) {
		s.recorder = recorder
	}
}

func New(c cache.Cache, opts ...ProxyOption) *Server {
	s := &Server{
		cache:         c,
		dialer:        client.NewClient(),
		maxObjectSize: DefaultMaxObjectSize,
		log:           zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or ln is closed, starting
// a worker per connection without waiting for it. Other accept errors are
// logged and retried with backoff. Serve closes ln before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("proxy listening")

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			backoff = nextBackoff(backoff)
			s.log.Error().Err(err).Dur("retry_in", backoff).Msg("accept failed")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		backoff = 0

		id := s.connID.Add(1)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, id, conn)
		}()
	}
}

// Wait blocks until every started worker has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptBackoff
	}
	if d *= 2; d > maxAcceptBackoff {
		d = maxAcceptBackoff
	}
	return d
}
