package main

import (
	"github.com/robfig/cron/v3"

	"github.com/gatewaykit/portalsync/pkg/observability"
	"github.com/gatewaykit/portalsync/pkg/sync"
)

// startReconciler runs the reconciler on the given cron schedule and
// returns a function that stops the scheduler and waits for a running
// pass to finish.
func startReconciler(reconciler *sync.Reconciler, schedule string, logger *observability.Logger) (func(), error) {
	c := cron.New()
	if _, err := reconciler.Schedule(c, schedule); err != nil {
		return nil, err
	}
	c.Start()

	stop := func() {
		ctx := c.Stop()
		<-ctx.Done()
		logger.Info("Reconciler stopped")
	}
	return stop, nil
}
