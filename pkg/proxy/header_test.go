package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildUpstreamRequest(t *testing.T) {
	got := buildUpstreamRequest(Target{Host: "example.com", Port: "80", Path: "/path?q=1"})

	want := "GET /path?q=1 HTTP/1.0\r\n" +
		"Host: example.com\r\n" +
		"User-Agent: Mozilla/5.0 (X11; Linux x86_64; rv:10.0.3) Gecko/20120305 Firefox/10.0.3\r\n" +
		"Accept: text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8\r\n" +
		"Accept-Encoding: gzip, deflate\r\n" +
		"Connection: close\r\n" +
		"Proxy-Connection: close\r\n" +
		"\r\n"
	assert.Equal(t, want, string(got))
}

func TestPendingFetch(t *testing.T) {
	f := newPendingFetch(Target{}, 10)
	f.append([]byte("abcd"))
	f.append([]byte("efgh"))
	assert.True(t, f.cacheable())
	assert.Equal(t, "abcdefgh", string(f.bytes()))

	// reaching the limit exactly is already too large
	f.append([]byte("ij"))
	assert.False(t, f.cacheable())
	assert.Nil(t, f.bytes())

	f.append([]byte("k"))
	assert.False(t, f.cacheable())
	assert.Equal(t, 11, f.size)
}

func TestParseRequestLine(t *testing.T) {
	method, url, ok := parseRequestLine("GET http://example.com/ HTTP/1.1\r\n")
	assert.True(t, ok)
	assert.Equal(t, "GET", method)
	assert.Equal(t, "http://example.com/", url)

	_, url, ok = parseRequestLine("GET http://example.com/")
	assert.True(t, ok)
	assert.Equal(t, "http://example.com/", url)

	method, _, ok = parseRequestLine("GET\r\n")
	assert.False(t, ok)
	assert.Equal(t, "GET", method)

	_, _, ok = parseRequestLine("\r\n")
	assert.False(t, ok)
}

func TestNextBackoff(t *testing.T) {
	d := nextBackoff(0)
	assert.Equal(t, minAcceptBackoff, d)
	assert.Equal(t, 2*minAcceptBackoff, nextBackoff(d))
	assert.Equal(t, maxAcceptBackoff, nextBackoff(maxAcceptBackoff))
}
