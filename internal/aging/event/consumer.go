package event

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
)

type Handler interface {
	Handle(ctx context.Context, event entity.WarningEvent) error
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// WarningConsumer drains the bus with a fixed pool of workers. Events are
// handled at most once per EventID and failed handling is retried with
// exponential backoff.
type WarningConsumer struct {
	bus         *Bus
	handler     Handler
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        sync.Map
	wg          sync.WaitGroup
}

func NewWarningConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *WarningConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 2
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 50 * time.Millisecond
	}

	return &WarningConsumer{
		bus:         bus,
		handler:     handler,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

func (c *WarningConsumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

// Stop closes the bus and waits for the workers to drain it.
func (c *WarningConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *WarningConsumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *WarningConsumer) processEvent(event entity.WarningEvent) {
	if c.handler == nil {
		return
	}

	if event.EventID != "" {
		if _, loaded := c.seen.LoadOrStore(event.EventID, struct{}{}); loaded {
			slog.Info("skip duplicate warning event", "event_id", event.EventID, "report_id", event.ReportID)
			return
		}
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.handler.Handle(context.Background(), event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.Error("failed to handle warning event after retries", "event_id", event.EventID, "report_id", event.ReportID, "error", err)
			return
		}

		time.Sleep(backoff)
		backoff *= 2
	}
}

// LogReporter writes every warning event to the structured log.
type LogReporter struct{}

func (LogReporter) Handle(ctx context.Context, event entity.WarningEvent) error {
	if event.ReportID == "" {
		return errors.New("missing report id")
	}

	slog.WarnContext(ctx, event.Message,
		"event_id", event.EventID,
		"report_id", event.ReportID,
		"kind", event.Kind,
	)
	return nil
}
