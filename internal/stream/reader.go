package stream

import (
	"context"
	"errors"
	"io"
)

// ErrTruncated reports a transport ending before a terminal event. Any
// buffered partial frame is discarded; it is never promoted to a final
// event.
var ErrTruncated = errors.New("stream ended before a terminal event")

const readBufferSize = 4096

// Consume drives a Parser from a response body, invoking fn for every
// event in arrival order. It returns nil once a terminal event has been
// delivered and stops reading, so a transport abort after that point is
// a no-op. An end-of-data or read failure before a terminal event is a
// transport-level failure, not a protocol Error event. Cancelling ctx
// stops fragment processing without emitting a terminal event.
func Consume(ctx context.Context, body io.Reader, fn func(Event)) error {
	parser := NewParser()
	buf := make([]byte, readBufferSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			for _, ev := range parser.Feed(string(buf[:n])) {
				fn(ev)
				if ev.Terminal() {
					return nil
				}
			}
		}
		if err == io.EOF {
			return ErrTruncated
		}
		if err != nil {
			return err
		}
	}
}
