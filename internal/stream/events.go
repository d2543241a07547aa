// Package stream turns an incrementally arriving text stream into
// discrete typed events. Frames are delimited by a blank line; each
// meaningful line carries a "data:" field prefix followed by a JSON
// payload. Malformed payloads are dropped without ending the stream.
package stream

import "github.com/lectern/lectern/internal/wire"

// Event is one parsed stream event. Exactly one terminal event
// (Complete or Error) ends a stream; Chunk may repeat before it.
type Event interface {
	event()
	// Terminal reports whether this event ends the stream.
	Terminal() bool
}

// Chunk carries one increment of generated text.
type Chunk struct {
	Content string
}

// Complete is the successful terminal event.
type Complete struct {
	Questions    []wire.Question
	RenderedText string
	RawResponse  string
}

// Error is the terminal event for an error the producer sent
// explicitly. It is distinct from a transport failure, which surfaces
// as a Go error from the consumer instead.
type Error struct {
	Message string
}

func (Chunk) event()    {}
func (Complete) event() {}
func (Error) event()    {}

func (Chunk) Terminal() bool    { return false }
func (Complete) Terminal() bool { return true }
func (Error) Terminal() bool    { return true }
