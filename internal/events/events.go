package events

import (
	"encoding/json"
	"time"
)

// Event types published over SSE while the engine works.
const (
	TypeRunStarted   = "run_started"
	TypeRunCompleted = "run_completed"
	TypeRunFailed    = "run_failed"
	TypePing         = "ping"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// RunStarted announces a new analysis run.
func RunStarted(reqID, runID string, jobs int) string {
	return MakeEvent(reqID, TypeRunStarted, 1, map[string]any{"run_id": runID, "jobs": jobs})
}

// RunCompleted announces a finished run with its headline counts.
func RunCompleted(reqID, runID string, mapped, unresolved, unmatched int) string {
	return MakeEvent(reqID, TypeRunCompleted, 1, map[string]any{
		"run_id":     runID,
		"mapped":     mapped,
		"unresolved": unresolved,
		"unmatched":  unmatched,
	})
}

// RunFailed announces an aborted run.
func RunFailed(reqID, runID, msg string) string {
	return MakeEvent(reqID, TypeRunFailed, 1, map[string]any{"run_id": runID, "error": msg})
}
