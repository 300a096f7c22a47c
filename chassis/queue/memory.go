package queue

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

// MemoryQueue - process-local queue for tests and single-node runs.
// Delays are recorded but messages are deliverable immediately.
type MemoryQueue struct {
	mu       sync.Mutex
	messages []string
	inflight map[string]string
	seq      int
}

// InitMemoryQueue ...
func InitMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		inflight: map[string]string{},
	}
}

// SendMessage ...
func (q *MemoryQueue) SendMessage(message string, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, message)
	return nil
}

// ReceiveMessage ...
func (q *MemoryQueue) ReceiveMessage() (*RecvMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.messages) == 0 {
		return nil, errors.New("no message received")
	}
	body := q.messages[0]
	q.messages = q.messages[1:]
	q.seq++
	id := strconv.Itoa(q.seq)
	q.inflight[id] = body
	return &RecvMessage{
		ID:      id,
		Body:    body,
		Handler: id,
	}, nil
}

// Acknowledge ...
func (q *MemoryQueue) Acknowledge(message *RecvMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inflight, message.Handler)
	return nil
}

// Len - pending message count, used by consumers draining the queue.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}
