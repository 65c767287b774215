package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/shandysiswandi/goaging/internal/aging"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.aging.enabled") {
		closer, err := aging.New(aging.Dependency{
			Config:    a.config,
			Router:    a.router,
			Goroutine: a.goroutine,
			Context:   a.ctx,
			ID:        a.uuid,
			EventID:   a.snowflake,
		})
		if err != nil {
			slog.Error("failed to init module aging", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			if a.closerFn == nil {
				a.closerFn = map[string]func(context.Context) error{}
			}
			a.closerFn["Aging"] = closer
		}
	}
}
