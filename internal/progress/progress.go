// Package progress defines the event sink scans report through. The scanner
// never assumes a particular front end; the CLI plugs in a zerolog sink and
// tests plug in a capturing one.
package progress

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Level classifies an event.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Event is one human-readable status line tagged with the equipment (or
// category) it concerns. Equipment may be empty for run-level events.
type Event struct {
	Level     Level
	Equipment string
	Message   string
}

// Sink receives scan events.
type Sink interface {
	Publish(Event)
}

// Func adapts a plain function to a Sink.
type Func func(Event)

func (f Func) Publish(e Event) { f(e) }

// Nop discards all events.
var Nop Sink = Func(func(Event) {})

// Debugf publishes a formatted debug event.
func Debugf(s Sink, equipment, format string, args ...any) {
	s.Publish(Event{Level: LevelDebug, Equipment: equipment, Message: fmt.Sprintf(format, args...)})
}

// Infof publishes a formatted info event.
func Infof(s Sink, equipment, format string, args ...any) {
	s.Publish(Event{Level: LevelInfo, Equipment: equipment, Message: fmt.Sprintf(format, args...)})
}

// Warnf publishes a formatted warning event.
func Warnf(s Sink, equipment, format string, args ...any) {
	s.Publish(Event{Level: LevelWarn, Equipment: equipment, Message: fmt.Sprintf(format, args...)})
}

// Errorf publishes a formatted error event.
func Errorf(s Sink, equipment, format string, args ...any) {
	s.Publish(Event{Level: LevelError, Equipment: equipment, Message: fmt.Sprintf(format, args...)})
}

// Zerolog routes events to a zerolog logger.
type Zerolog struct {
	Logger zerolog.Logger
}

func (z Zerolog) Publish(e Event) {
	var ev *zerolog.Event
	switch e.Level {
	case LevelDebug:
		ev = z.Logger.Debug()
	case LevelWarn:
		ev = z.Logger.Warn()
	case LevelError:
		ev = z.Logger.Error()
	default:
		ev = z.Logger.Info()
	}
	if e.Equipment != "" {
		ev = ev.Str("equipment", e.Equipment)
	}
	ev.Msg(e.Message)
}

// Capture records events for inspection in tests. Safe for concurrent use.
type Capture struct {
	mu     sync.Mutex
	events []Event
}

func (c *Capture) Publish(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

// Events returns a copy of everything published so far.
func (c *Capture) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}
