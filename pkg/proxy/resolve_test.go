package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		url  string
		want Target
	}{
		{"http://example.com/path?q=1", Target{Host: "example.com", Port: "80", Path: "/path?q=1"}},
		{"example.com:8080/", Target{Host: "example.com", Port: "8080", Path: "/"}},
		{"example.com", Target{Host: "example.com", Port: "80", Path: "/"}},
		{"http://example.com:81", Target{Host: "example.com", Port: "81", Path: "/"}},
		{"http://127.0.0.1:9000/a/b:c", Target{Host: "127.0.0.1", Port: "9000", Path: "/a/b:c"}},
		{"//cdn.example.org/x.js", Target{Host: "cdn.example.org", Port: "80", Path: "/x.js"}},
		{"/just/a/path", Target{Host: "", Port: "80", Path: "/just/a/path"}},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.url))
		})
	}
}

func TestTarget_Addr(t *testing.T) {
	assert.Equal(t, "example.com:8080", Resolve("example.com:8080/").Addr())
}
