package download

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
)

// maxPrealloc caps the buffer reserved up front from Content-Length.
const maxPrealloc = 256 << 20

// Payload is a fully received download.
type Payload struct {
	Data   []byte
	Header http.Header
}

// chunkCounter observes each chunk copied from the response body, in the way
// a WriteCounter tracks a TeeReader.
type chunkCounter struct {
	ctx      context.Context
	received int64
	onChunk  func(received int64)
}

func (c *chunkCounter) Write(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	c.received += int64(len(p))
	if c.onChunk != nil {
		c.onChunk(c.received)
	}
	return len(p), nil
}

// contentLength returns the declared body size, or 0 when unknown.
func contentLength(resp *http.Response) int64 {
	if resp.ContentLength > 0 {
		return resp.ContentLength
	}
	if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil && n > 0 {
		return n
	}
	return 0
}

// readAll streams resp.Body into memory, calling onChunk with the cumulative
// byte count after every chunk. The body is closed.
func readAll(ctx context.Context, resp *http.Response, onChunk func(received int64)) (*Payload, error) {
	defer resp.Body.Close()

	var buf bytes.Buffer
	if n := contentLength(resp); n > 0 && n <= maxPrealloc {
		buf.Grow(int(n))
	}
	counter := &chunkCounter{ctx: ctx, onChunk: onChunk}
	if _, err := io.Copy(&buf, io.TeeReader(resp.Body, counter)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return &Payload{Data: buf.Bytes(), Header: resp.Header}, nil
}
