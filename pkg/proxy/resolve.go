package proxy

import (
	"net"
	"strings"
)

const defaultPort = "80"

// Target is where a request URL points: origin host, port, and the path with
// its query string.
type Target struct {
	Host string
	Port string
	Path string
}

// Resolve splits a request URL into host, port and path-plus-query.
// Anything up to and including the first "//" is dropped. The path starts at
// the next "/" and defaults to "/". A ":" in the host part separates the
// port, which defaults to 80. Nothing is validated or decoded.
func Resolve(rawURL string) Target {
	rest := rawURL
	if i := strings.Index(rest, "//"); i >= 0 {
		rest = rest[i+2:]
	}

	t := Target{Port: defaultPort, Path: "/"}
	hostPort := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		t.Path = rest[i:]
		hostPort = rest[:i]
	}

	t.Host = hostPort
	if i := strings.IndexByte(hostPort, ':'); i >= 0 {
		t.Host = hostPort[:i]
		t.Port = hostPort[i+1:]
	}
	return t
}

func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, t.Port)
}
