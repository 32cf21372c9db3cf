package queue

import (
	"sync"
	"time"
)

// Task is a deferred car-status update: when the fleet service cannot be
// reached at commit time, the flip is queued here and replayed until the
// car status converges with the reservation status.
type Task struct {
	CarUid      string
	ClientUid   string
	Action      string // "rent" or "release"
	RetryAt     time.Time
	Attempts    int
	MaxAttempts int
}

type Queue struct {
	items []*Task
	mu    sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		items: make([]*Task, 0),
	}
}

func (q *Queue) Enqueue(task *Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, task)
}

// Dequeue removes and returns the first task whose RetryAt has passed, or
// nil when nothing is due yet.
func (q *Queue) Dequeue() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	for i, task := range q.items {
		if !task.RetryAt.After(now) {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return task
		}
	}
	return nil
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
