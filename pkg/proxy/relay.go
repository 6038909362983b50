package proxy

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ashpect/cacheproxy/pkg/accesslog"
)

// upstream responses are relayed in lines of at most this many bytes
const maxLine = 8192

// handleConn serves one client connection end to end and closes it.
func (s *Server) handleConn(ctx context.Context, id uint64, conn net.Conn) {
	defer conn.Close()

	logger := s.log.With().
		Uint64("conn", id).
		Str("remote", conn.RemoteAddr().String()).
		Logger()

	entry := accesslog.Entry{
		Time:   time.Now(),
		Conn:   id,
		Remote: conn.RemoteAddr().String(),
	}
	s.relay(ctx, &logger, conn, &entry)
	s.record(ctx, &logger, entry)
}

// relay reads the request line and answers it from the cache or the origin.
// Requests it cannot serve, including request lines longer than maxLine, are
// dropped without a response.
func (s *Server) relay(ctx context.Context, logger *zerolog.Logger, conn net.Conn, entry *accesslog.Entry) {
	raw, err := bufio.NewReaderSize(conn, maxLine).ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		logger.Debug().Int("limit", maxLine).Msg("request line too long")
		entry.Outcome = accesslog.OutcomeDropped
		return
	}
	if err != nil && (len(raw) == 0 || !errors.Is(err, io.EOF)) {
		logger.Debug().Err(err).Msg("read request line")
		entry.Outcome = accesslog.OutcomeDropped
		return
	}
	line := string(raw)

	method, url, ok := parseRequestLine(line)
	entry.Method, entry.URL = method, url
	if !ok {
		logger.Debug().Str("line", strings.TrimSpace(line)).Msg("malformed request line")
		entry.Outcome = accesslog.OutcomeDropped
		return
	}
	if method != "GET" {
		logger.Debug().Str("method", method).Msg("not GET method")
		entry.Outcome = accesslog.OutcomeDropped
		return
	}

	if payload, hit := s.cache.Lookup(url); hit {
		logger.Debug().Str("url", url).Int("size", len(payload)).Msg("cache hit")
		n, err := conn.Write(payload)
		entry.Bytes = int64(n)
		if err != nil {
			logger.Warn().Err(err).Msg("write cached response to client")
			entry.Outcome = accesslog.OutcomeClientError
			return
		}
		entry.Outcome = accesslog.OutcomeHit
		return
	}
	logger.Debug().Str("url", url).Msg("cache miss")

	target := Resolve(url)
	upstream, err := s.dialer.Dial(ctx, target.Host, target.Port)
	if err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("connect upstream")
		entry.Outcome = accesslog.OutcomeUpstreamError
		return
	}
	defer upstream.Close()

	if err := writeUpstreamRequest(upstream, target); err != nil {
		logger.Warn().Err(err).Msg("forward request")
		entry.Outcome = accesslog.OutcomeUpstreamError
		return
	}

	fetch := newPendingFetch(target, s.maxObjectSize)
	reader := bufio.NewReaderSize(upstream, maxLine)
	for {
		chunk, readErr := reader.ReadSlice('\n')
		if errors.Is(readErr, bufio.ErrBufferFull) {
			readErr = nil
		}
		if len(chunk) > 0 {
			n, err := conn.Write(chunk)
			entry.Bytes += int64(n)
			if err != nil {
				logger.Warn().Err(err).Int64("sent", entry.Bytes).Msg("write to client")
				entry.Outcome = accesslog.OutcomeClientError
				return
			}
			fetch.append(chunk)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			logger.Warn().Err(readErr).Str("upstream", target.Addr()).Msg("read upstream response")
			entry.Outcome = accesslog.OutcomeUpstreamReadError
			return
		}
	}

	if !fetch.cacheable() {
		logger.Debug().Str("url", url).Int("size", fetch.size).Msg("response too large to cache")
		entry.Outcome = accesslog.OutcomeUncacheable
		return
	}
	s.cache.Insert(url, fetch.bytes())
	logger.Debug().Str("url", url).Int("size", fetch.size).Msg("response cached")
	entry.Outcome = accesslog.OutcomeMiss
}

// parseRequestLine splits "METHOD URL [VERSION]". The version is not used.
func parseRequestLine(line string) (method, url string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		if len(fields) == 1 {
			method = fields[0]
		}
		return method, "", false
	}
	return fields[0], fields[1], true
}

func (s *Server) record(ctx context.Context, logger *zerolog.Logger, entry accesslog.Entry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn().Err(err).Msg("record access log entry")
	}
}
