package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/gatewaykit/portalsync/pkg/accounts"
	"github.com/gatewaykit/portalsync/pkg/audit"
	"github.com/gatewaykit/portalsync/pkg/cache"
	"github.com/gatewaykit/portalsync/pkg/observability"
)

// Reconciler periodically pulls the full developer population from the
// gateway platform, warms the entity cache, and correlates developers
// with local accounts
type Reconciler struct {
	client      GatewayClient
	cache       cache.EntityCache
	accounts    accounts.Store
	audit       audit.Logger
	logger      *observability.Logger
	metrics     *observability.Metrics
	concurrency int
}

// NewReconciler creates a reconciler. The audit logger, logger, and
// metrics may be nil; concurrency defaults to 8.
func NewReconciler(client GatewayClient, entityCache cache.EntityCache, accountStore accounts.Store,
	auditLogger audit.Logger, logger *observability.Logger, metrics *observability.Metrics) *Reconciler {
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Reconciler{
		client:      client,
		cache:       entityCache,
		accounts:    accountStore,
		audit:       auditLogger,
		logger:      logger,
		metrics:     metrics,
		concurrency: 8,
	}
}

// SetConcurrency caps the number of developers processed in parallel.
// Values below one are ignored.
func (r *Reconciler) SetConcurrency(n int) {
	if n > 0 {
		r.concurrency = n
	}
}

// Stats summarizes a reconciliation run
type Stats struct {
	Developers       int `json:"developers"`
	MatchedAccounts  int `json:"matched_accounts"`
	OrphanedAccounts int `json:"orphaned_accounts"`
}

// Run performs one full reconciliation pass
func (r *Reconciler) Run(ctx context.Context) (Stats, error) {
	start := time.Now()

	stats, err := r.run(ctx)

	status := "success"
	if err != nil {
		status = "failure"
	}
	if r.metrics != nil {
		r.metrics.RecordReconcileRun(status, time.Since(start))
	}

	event := audit.NewEvent(ctx, audit.EventTypeReconcileRun, audit.EventStatusSuccess)
	if err != nil {
		event.Status = audit.EventStatusFailure
		event.ErrorMessage = err.Error()
	}
	event.Metadata = map[string]interface{}{
		"developers":        stats.Developers,
		"matched_accounts":  stats.MatchedAccounts,
		"orphaned_accounts": stats.OrphanedAccounts,
		"duration_ms":       time.Since(start).Milliseconds(),
	}
	if auditErr := r.audit.Log(ctx, event); auditErr != nil {
		r.logger.WithError(auditErr).Warn("failed to write audit event")
	}

	return stats, err
}

func (r *Reconciler) run(ctx context.Context) (Stats, error) {
	var stats Stats

	devs, err := r.client.ListDevelopers(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list remote developers: %w", err)
	}
	stats.Developers = len(devs)
	if r.metrics != nil {
		r.metrics.DevelopersTotal.Set(float64(len(devs)))
	}

	remoteEmails := make(map[string]struct{}, len(devs))
	for _, dev := range devs {
		remoteEmails[dev.Email] = struct{}{}
	}

	// Correlate remote developers with local accounts, bounded by the
	// reconciler's concurrency
	matched := make(chan struct{}, len(devs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, dev := range devs {
		dev := dev
		g.Go(func() error {
			r.cache.Put(gctx, dev)
			_, err := r.accounts.LoadByEmail(gctx, dev.Email)
			if err == nil {
				matched <- struct{}{}
				return nil
			}
			if errors.Is(err, accounts.ErrNotFound) {
				r.logger.WithField("developer_email", dev.Email).
					Debug("remote developer has no local account")
				return nil
			}
			return fmt.Errorf("account lookup for %s failed: %w", dev.Email, err)
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	close(matched)
	for range matched {
		stats.MatchedAccounts++
	}

	// Flag active local accounts the platform no longer knows
	localAccounts, err := r.accounts.List(ctx, true)
	if err != nil {
		return stats, fmt.Errorf("failed to list local accounts: %w", err)
	}
	for _, account := range localAccounts {
		if _, ok := remoteEmails[account.Email]; !ok {
			stats.OrphanedAccounts++
			r.logger.WithFields(map[string]interface{}{
				"account_id":    account.ID,
				"account_email": account.Email,
			}).Warn("local account has no developer on the gateway platform")
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"developers":        stats.Developers,
		"matched_accounts":  stats.MatchedAccounts,
		"orphaned_accounts": stats.OrphanedAccounts,
	}).Info("reconciliation complete")

	return stats, nil
}

// Schedule registers the reconciler with a cron scheduler. The caller
// owns starting and stopping the scheduler.
func (r *Reconciler) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		defer observability.RecoverPanic(r.logger, "reconciler run")
		if _, err := r.Run(context.Background()); err != nil {
			r.logger.WithError(err).Error("scheduled reconciliation failed")
		}
	})
}
