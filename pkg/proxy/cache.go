package proxy

// pendingFetch accumulates one upstream response for the cache.
// Once the response reaches limit bytes it can no longer be cached, so
// accumulation stops and the buffer is released; relaying continues.
type pendingFetch struct {
	target   Target
	limit    int
	size     int
	buf      []byte
	overflow bool
}

func newPendingFetch(target Target, limit int) *pendingFetch {
	return &pendingFetch{target: target, limit: limit}
}

// append copies chunk into the buffer.
func (f *pendingFetch) append(chunk []byte) {
	f.size += len(chunk)
	if f.overflow {
		return
	}
	if f.size >= f.limit {
		f.overflow = true
		f.buf = nil
		return
	}
	f.buf = append(f.buf, chunk...)
}

// cacheable reports whether the whole response stayed under the limit.
func (f *pendingFetch) cacheable() bool {
	return !f.overflow
}

func (f *pendingFetch) bytes() []byte {
	return f.buf
}
