package realtime

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// SSEClient is one open event stream. Channels is guarded by the owning hub's lock.
type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage

	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

// offer queues msg without blocking and reports whether it was accepted.
func (c *SSEClient) offer(msg SSEMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Outbound <- msg:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Dropped counts messages lost to a full buffer. A slow tab that falls behind should refetch
// its session instead of trusting the event stream.
func (c *SSEClient) Dropped() uint64 { return c.dropped.Load() }

func (c *SSEClient) Done() <-chan struct{} { return c.done }
