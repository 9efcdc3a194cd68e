// Package events defines event types and structures for nodeflow lifecycle
// notifications and index task dispatch.
package events

import (
	"time"
)

type EventType string

// Topics: engine lifecycle events, index task dispatch and index task
// completion signals each live on their own stream.
const (
	NodeflowTopic    = "superrag.nodeflow.events"
	IndexTaskTopic   = "superrag.index.tasks"
	IndexResultTopic = "superrag.index.results"
)

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Nodeflow run lifecycle events.
	NodeflowStartEvent EventType = "nodeflow_start"
	NodeflowEndEvent   EventType = "nodeflow_end"
	NodeflowErrorEvent EventType = "nodeflow_error"

	// Per-node lifecycle events.
	NodeStartEvent EventType = "node_start"
	NodeEndEvent   EventType = "node_end"
	NodeErrorEvent EventType = "node_error"

	// Index task events.
	IndexTaskRequestedEvent EventType = "index_task_requested"
	IndexTaskCompletedEvent EventType = "index_task_completed"
	IndexTaskFailedEvent    EventType = "index_task_failed"
)

// BaseEvent carries the wire fields shared by every engine event: one JSON
// object per event on the stream.
type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"event_type"`
	NodeID      string         `json:"node_id,omitempty"`
	NodeType    string         `json:"node_type,omitempty"`
	ExecutionID string         `json:"execution_id"`
	Timestamp   time.Time      `json:"timestamp"`
	Data        map[string]any `json:"data,omitempty"`
}

type NodeflowStart struct {
	BaseEvent

	NodeflowName string `json:"nodeflow_name"`
}

func (e NodeflowStart) GetType() EventType {
	return NodeflowStartEvent
}

type NodeflowEnd struct {
	BaseEvent

	NodeflowName string        `json:"nodeflow_name"`
	Duration     time.Duration `json:"duration"`
}

func (e NodeflowEnd) GetType() EventType {
	return NodeflowEndEvent
}

type NodeflowError struct {
	BaseEvent

	NodeflowName string        `json:"nodeflow_name"`
	Error        string        `json:"error"`
	Duration     time.Duration `json:"duration"`
}

func (e NodeflowError) GetType() EventType {
	return NodeflowErrorEvent
}

type NodeStart struct {
	BaseEvent
}

func (e NodeStart) GetType() EventType {
	return NodeStartEvent
}

type NodeEnd struct {
	BaseEvent

	DurationMs int64 `json:"duration_ms"`
}

func (e NodeEnd) GetType() EventType {
	return NodeEndEvent
}

type NodeError struct {
	BaseEvent

	Error      string `json:"error"`
	DurationMs int64  `json:"duration_ms"`
}

func (e NodeError) GetType() EventType {
	return NodeErrorEvent
}
