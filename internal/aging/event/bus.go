package event

import (
	"context"
	"errors"
	"sync"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
)

var ErrBusClosed = errors.New("event bus is closed")

// Bus is a buffered in-process channel of warning events.
type Bus struct {
	mu     sync.RWMutex
	closed bool
	ch     chan entity.WarningEvent
}

func NewBus(buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}

	return &Bus{
		ch: make(chan entity.WarningEvent, buffer),
	}
}

func (b *Bus) Publish(ctx context.Context, event entity.WarningEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) Subscribe() <-chan entity.WarningEvent {
	return b.ch
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.ch)
}
