package events

import "time"

// IndexTaskRequested is the dispatch payload for a batch of same-action index
// work on one document. TaskContext carries "<INDEX_TYPE>_version" entries
// naming the generation each task targets.
type IndexTaskRequested struct {
	ID          string           `json:"id"`
	Type        EventType        `json:"event_type"`
	DocumentID  string           `json:"document_id"`
	Action      string           `json:"action"`
	IndexTypes  []string         `json:"index_types"`
	TaskContext map[string]int64 `json:"task_context,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

func (e IndexTaskRequested) GetType() EventType {
	return IndexTaskRequestedEvent
}

// IndexTaskCompleted is the completion signal an index worker publishes after
// a create/update/delete task finishes successfully.
type IndexTaskCompleted struct {
	ID            string         `json:"id"`
	Type          EventType      `json:"event_type"`
	DocumentID    string         `json:"document_id"`
	IndexType     string         `json:"index_type"`
	Action        string         `json:"action"`
	TargetVersion int64          `json:"target_version,omitempty"`
	IndexData     map[string]any `json:"index_data,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

func (e IndexTaskCompleted) GetType() EventType {
	return IndexTaskCompletedEvent
}

// IndexTaskFailed is the failure signal an index worker publishes when a task
// cannot be completed.
type IndexTaskFailed struct {
	ID         string    `json:"id"`
	Type       EventType `json:"event_type"`
	DocumentID string    `json:"document_id"`
	IndexType  string    `json:"index_type"`
	Action     string    `json:"action"`
	Error      string    `json:"error"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e IndexTaskFailed) GetType() EventType {
	return IndexTaskFailedEvent
}
