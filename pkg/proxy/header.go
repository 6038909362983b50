package proxy

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Sent on every upstream request regardless of what the client asked for.
var upstreamHeaders = []string{
	"User-Agent: Mozilla/5.0 (X11; Linux x86_64; rv:10.0.3) Gecko/20120305 Firefox/10.0.3\r\n",
	"Accept: text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8\r\n",
	"Accept-Encoding: gzip, deflate\r\n",
	"Connection: close\r\n",
	"Proxy-Connection: close\r\n",
}

// buildUpstreamRequest renders the normalized HTTP/1.0 GET sent to the origin.
func buildUpstreamRequest(t Target) []byte {
	var buf bytes.Buffer
	buf.WriteString("GET " + t.Path + " HTTP/1.0\r\n")
	buf.WriteString("Host: " + t.Host + "\r\n")
	for _, h := range upstreamHeaders {
		buf.WriteString(h)
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func writeUpstreamRequest(w io.Writer, t Target) error {
	_, err := w.Write(buildUpstreamRequest(t))
	return errors.Wrapf(err, "write request to %s", t.Addr())
}
