// Package jobs runs background units of work triggered by API calls.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

var (
	ErrQueueClosed = errors.New("queue is closed")
	ErrQueueFull   = errors.New("queue is full")
)

// ProcessMessagesJob asks for a processing pass, optionally scoped to one
// user's messages.
type ProcessMessagesJob struct {
	JobID       string     `json:"job_id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
}

type Publisher interface {
	PublishProcessMessages(ctx context.Context, job *ProcessMessagesJob) error
	Close() error
}

type Consumer interface {
	// Start launches the workers; handler is called once per delivered job.
	Start(ctx context.Context, handler JobHandler) error
	// Stop stops accepting jobs and waits for in-flight ones.
	Stop(ctx context.Context) error
}

// JobHandler returns an error when the job should be retried.
type JobHandler func(ctx context.Context, job *ProcessMessagesJob) error
