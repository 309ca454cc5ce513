package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMaxRetries = 3

// Queue is a channel-backed Publisher and Consumer for a single process.
type Queue struct {
	jobChan   chan *ProcessMessagesJob
	closeChan chan struct{}
	workers   int
	backoff   time.Duration
	logger    *zap.Logger

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewQueue(bufferSize, workers int, logger *zap.Logger) *Queue {
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		jobChan:   make(chan *ProcessMessagesJob, bufferSize),
		closeChan: make(chan struct{}),
		workers:   workers,
		backoff:   time.Second,
		logger:    logger,
	}
}

// PublishProcessMessages enqueues without blocking; a full buffer returns
// ErrQueueFull.
func (q *Queue) PublishProcessMessages(ctx context.Context, job *ProcessMessagesJob) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = defaultMaxRetries
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return ErrQueueClosed
	case q.jobChan <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) Start(ctx context.Context, handler JobHandler) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	q.logger.Info("Job queue started", zap.Int("workers", q.workers))
	return nil
}

func (q *Queue) worker(ctx context.Context, handler JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			q.processJob(ctx, job, handler)
		}
	}
}

func (q *Queue) processJob(ctx context.Context, job *ProcessMessagesJob, handler JobHandler) {
	job.Status = JobStatusRunning
	startedAt := time.Now()
	job.StartedAt = &startedAt

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err == nil {
		job.Status = JobStatusCompleted
		job.Error = ""
		return
	}

	job.Error = err.Error()
	if job.RetryCount >= job.MaxRetries {
		job.Status = JobStatusFailed
		q.logger.Error("Job failed",
			zap.String("job_id", job.JobID),
			zap.Int("retries", job.RetryCount),
			zap.Error(err),
		)
		return
	}

	job.RetryCount++
	job.Status = JobStatusRetrying
	delay := time.Duration(job.RetryCount) * q.backoff
	q.logger.Warn("Job failed, retrying",
		zap.String("job_id", job.JobID),
		zap.Int("attempt", job.RetryCount),
		zap.Duration("delay", delay),
		zap.Error(err),
	)
	time.AfterFunc(delay, func() {
		job.Status = JobStatusPending
		job.StartedAt = nil
		job.CompletedAt = nil
		if err := q.PublishProcessMessages(ctx, job); err != nil {
			q.logger.Warn("Job dropped on retry", zap.String("job_id", job.JobID), zap.Error(err))
		}
	})
}

func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var (
	_ Publisher = (*Queue)(nil)
	_ Consumer  = (*Queue)(nil)
)
