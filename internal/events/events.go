// Package events announces finished course builds and mirror runs on NATS so
// downstream site builds can react to them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event types.
const (
	TypeCourseBuilt  = "course.built"
	TypeCourseSynced = "course.synced"
)

// CourseEvent is the JSON payload published for one course.
type CourseEvent struct {
	Type      string    `json:"type"`
	RunID     string    `json:"run_id"`
	CourseID  string    `json:"course_id"`
	Documents int       `json:"documents,omitempty"`
	Written   int       `json:"written,omitempty"`
	Fetched   int       `json:"fetched,omitempty"`
	Output    string    `json:"output,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Encode marshals e, stamping the current time if none is set.
func Encode(e CourseEvent) ([]byte, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal course event: %w", err)
	}
	return data, nil
}

// Publisher delivers course events.
type Publisher interface {
	Publish(ctx context.Context, e CourseEvent) error
	Close() error
}

// NoopPublisher drops every event (default when no NATS URL is configured).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, CourseEvent) error { return nil }
func (NoopPublisher) Close() error                               { return nil }
