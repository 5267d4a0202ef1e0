package cli

import (
	"context"

	"github.com/him6ul/AIAssistant/internal/logger"
)

// startScheduler runs the scheduler in the background when it is enabled
// and returns a function that stops it.
func startScheduler(ctx context.Context) func() {
	if services == nil || services.Scheduler == nil || !services.SchedulerConfig.Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := services.Scheduler.Start(ctx); err != nil {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()

	return func() {
		if err := services.Scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop error: %v", err)
		}
		cancel()
		<-done
	}
}
