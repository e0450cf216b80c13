package types

import "time"

// ProgressEventType identifies a task lifecycle event.
type ProgressEventType string

const (
	// EventTaskStarted fires before a task's argument extraction begins.
	EventTaskStarted ProgressEventType = "started"
	// EventTaskSucceeded fires when a task completes successfully.
	EventTaskSucceeded ProgressEventType = "succeeded"
	// EventTaskFailed fires when a task fails or suspends on confirmation.
	EventTaskFailed ProgressEventType = "failed"
)

// ProgressEvent is a fire-and-forget lifecycle notification. Listeners must
// never block engine progress; slow listeners lose events.
type ProgressEvent struct {
	Type       ProgressEventType `json:"type"`
	Capability string            `json:"capability"`
	Ordinal    int               `json:"ordinal"`
	Phase      Phase             `json:"phase,omitempty"`
	Duration   time.Duration     `json:"duration,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// ProgressListener receives progress events.
type ProgressListener func(ProgressEvent)
