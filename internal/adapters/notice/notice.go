// Package notice delivers user-facing session notices.
package notice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rafaelq80/livraria-react-sub000/internal/ports"
)

// defaultCapacity bounds how many undelivered notices a Queue keeps.
const defaultCapacity = 16

// Queue buffers notices until the next page render drains them.
// When full, the oldest notice is dropped.
type Queue struct {
	mu       sync.Mutex
	items    []ports.Notice
	capacity int
}

var _ ports.Notifier = (*Queue)(nil)

// NewQueue returns a Queue holding at most capacity notices (16 when <= 0).
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{capacity: capacity}
}

func (q *Queue) Notify(_ context.Context, n ports.Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == q.capacity {
		q.items = q.items[1:]
	}
	q.items = append(q.items, n)
}

// Drain returns all pending notices and empties the queue.
func (q *Queue) Drain() []ports.Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Writer prints notices as lines, for terminal use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer printing to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (n *Writer) Notify(_ context.Context, notice ports.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.w, "[%s] %s\n", notice.Level, notice.Message)
}

// Logging forwards notices to a structured logger and then to next, if any.
type Logging struct {
	Logger *slog.Logger
	Next   ports.Notifier
}

func (n Logging) Notify(ctx context.Context, notice ports.Notice) {
	if n.Logger != nil {
		n.Logger.InfoContext(ctx, "user notice", "level", string(notice.Level), "message", notice.Message)
	}
	if n.Next != nil {
		n.Next.Notify(ctx, notice)
	}
}
