package domain

import (
	"encoding/json"
	"fmt"
)

// EventType tags a pipeline event.
type EventType string

// Supported pipeline event types.
const (
	EventProgress EventType = "progress"
	EventResult   EventType = "result"
	EventError    EventType = "error"
)

// Event is one entry in the ordered stream emitted by a pipeline run.
// Result and Error events are terminal.
type Event struct {
	Type    EventType
	Message string
	Result  *AnalysisResult
}

// Progress builds a progress event.
func Progress(format string, args ...any) Event {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return Event{Type: EventProgress, Message: msg}
}

// Result builds a terminal result event.
func Result(res AnalysisResult) Event {
	res = res.Normalize()
	return Event{Type: EventResult, Result: &res}
}

// Error builds a terminal error event.
func Error(msg string) Event {
	return Event{Type: EventError, Message: msg}
}

// Terminal reports whether no further events may follow e.
func (e Event) Terminal() bool {
	return e.Type == EventResult || e.Type == EventError
}

type messagePayload struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

type resultPayload struct {
	Type EventType      `json:"type"`
	Data AnalysisResult `json:"data"`
}

// MarshalJSON encodes the event as {"type", "message"} or {"type", "data"}.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventProgress, EventError:
		return json.Marshal(messagePayload{Type: e.Type, Message: e.Message})
	case EventResult:
		if e.Result == nil {
			return nil, fmt.Errorf("result event without data")
		}
		return json.Marshal(resultPayload{Type: e.Type, Data: e.Result.Normalize()})
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    EventType       `json:"type"`
		Message string          `json:"message"`
		Data    *AnalysisResult `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case EventProgress, EventError:
		*e = Event{Type: raw.Type, Message: raw.Message}
	case EventResult:
		if raw.Data == nil {
			return fmt.Errorf("result event without data")
		}
		*e = Event{Type: raw.Type, Result: raw.Data}
	default:
		return fmt.Errorf("unknown event type %q", raw.Type)
	}
	return nil
}
