package aging

import (
	"context"
	"fmt"
	"time"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
	"github.com/shandysiswandi/goaging/internal/aging/event"
	"github.com/shandysiswandi/goaging/internal/aging/inbound"
	"github.com/shandysiswandi/goaging/internal/aging/schema"
	"github.com/shandysiswandi/goaging/internal/aging/store"
	"github.com/shandysiswandi/goaging/internal/aging/usecase"
	"github.com/shandysiswandi/goaging/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/goaging/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goaging/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/goaging/internal/pkg/pkguid"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
	EventID   pkguid.NumberID
}

// New wires the aging report module and returns its closer.
func New(dep Dependency) (func(context.Context) error, error) {
	cfg, err := schema.LoadFile(dep.Config.GetString("modules.aging.schema_path"))
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if src := dep.Config.GetString("modules.aging.overdue_source"); src != "" {
		cfg = cfg.WithOverdueSource(entity.OverdueSource(src))
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("overdue source: %w", err)
		}
	}

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}
	if dep.EventID == nil {
		sf, err := pkguid.NewSnowflake(-1)
		if err != nil {
			return nil, fmt.Errorf("event id generator: %w", err)
		}
		dep.EventID = sf
	}

	storage := store.NewInMemoryStore()
	bus := event.NewBus(int(dep.Config.GetInt("modules.aging.events.buffer")))
	consumer := event.NewWarningConsumer(bus, event.LogReporter{}, event.ConsumerConfig{
		Workers:     int(dep.Config.GetInt("modules.aging.events.workers")),
		MaxRetries:  int(dep.Config.GetInt("modules.aging.events.max_retries")),
		BaseBackoff: backoff(dep.Config.GetDuration("modules.aging.events.backoff")),
	})
	consumer.Start()

	uc := usecase.New(usecase.Dependency{
		Store:          storage,
		Events:         bus,
		Runner:         dep.Goroutine,
		Clock:          nil,
		ID:             dep.ID,
		EventID:        dep.EventID,
		Schema:         cfg,
		MaxUploadBytes: dep.Config.GetInt("modules.aging.max_upload_mb") << 20,
		RootCtx:        dep.Context,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return consumer.Stop, nil
}

func backoff(d time.Duration) time.Duration {
	if d <= 0 {
		return 200 * time.Millisecond
	}
	return d
}
