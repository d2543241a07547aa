package api

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lectern/lectern/internal/stream"
)

// ConsumeSocket reads the long-lived generation stream over a
// websocket instead of an HTTP body. Each text message is fed to the
// same frame parser as one opaque fragment, so both transports share
// framing and termination semantics: nil once a terminal event has
// been delivered, stream.ErrTruncated when the peer closes first.
func ConsumeSocket(ctx context.Context, url string, fn func(stream.Event)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller cancels.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	parser := stream.NewParser()
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return stream.ErrTruncated
			}
			return err
		}
		if messageType != websocket.TextMessage {
			log.Debug().Int("message_type", messageType).Msg("Ignoring non-text socket message")
			continue
		}

		for _, ev := range parser.Feed(string(data)) {
			fn(ev)
			if ev.Terminal() {
				return nil
			}
		}
	}
}
