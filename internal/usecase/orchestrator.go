package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"BillSync/internal/domain"
	"BillSync/internal/metrics"
)

// SyncStates runs the jurisdiction and bill sync for every code in order.
// A failing jurisdiction becomes a failed result entry; the batch itself
// never fails.
func (p *Pipeline) SyncStates(ctx context.Context, codes []string, limit int, full bool) domain.BatchSummary {
	codes = NormalizeStates(codes)
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	logger.Info("sync batch started", "states", len(codes), "limit", limit, "full", full)

	summary := domain.BatchSummary{
		Success:     true,
		TotalStates: len(codes),
		Results:     make([]domain.StateResult, 0, len(codes)),
	}

	for _, code := range codes {
		res := p.syncState(ctx, code, limit, full)
		summary.Results = append(summary.Results, res)
		if !res.Success {
			summary.Success = false
			continue
		}
		summary.TotalSynced += *res.Synced
		summary.TotalBills += *res.Total
	}

	summary.Message = fmt.Sprintf("Synced %d of %d bills across %d states", summary.TotalSynced, summary.TotalBills, summary.TotalStates)
	logger.Info("sync batch finished", "success", summary.Success, "synced", summary.TotalSynced, "bills", summary.TotalBills)
	return summary
}

func (p *Pipeline) syncState(ctx context.Context, code string, limit int, full bool) domain.StateResult {
	started := time.Now()
	res, err := p.syncOne(ctx, code, limit, full)
	metrics.JurisdictionSyncDuration.WithLabelValues(metrics.Outcome(err)).Observe(time.Since(started).Seconds())

	if err != nil {
		metrics.SyncFailures.WithLabelValues("jurisdiction").Inc()
		p.logger.Error("state sync failed", "state", code, "error", err)
		return domain.StateResult{State: code, Success: false, Error: err.Error()}
	}
	synced, total := res.Synced, res.Total
	return domain.StateResult{State: code, Success: true, Synced: &synced, Total: &total}
}

func (p *Pipeline) syncOne(ctx context.Context, code string, limit int, full bool) (domain.BillSyncResult, error) {
	if _, err := p.SyncJurisdiction(ctx, code); err != nil {
		return domain.BillSyncResult{}, err
	}
	return p.SyncBills(ctx, code, limit, full)
}

// SyncScheduled walks the configured state list in fixed-size batches. States
// inside a batch run concurrently and every one is awaited before the pause
// that precedes the next batch. Cancellation stops the walk; states not yet
// started are reported as failed.
func (p *Pipeline) SyncScheduled(ctx context.Context) domain.ScheduledSummary {
	states := p.states
	results := domain.ScheduledResults{
		Success: []domain.StateResult{},
		Failed:  []domain.StateResult{},
	}

	for start := 0; start < len(states); start += p.batchSize {
		if start > 0 && p.batchDelay > 0 {
			if err := sleep(ctx, p.batchDelay); err != nil {
				break
			}
		}

		end := min(start+p.batchSize, len(states))
		batch := states[start:end]
		out := make([]domain.BatchSummary, len(batch))

		// Workers never return an error so every state settles.
		var g errgroup.Group
		for i, code := range batch {
			i, code := i, code
			g.Go(func() error {
				out[i] = p.SyncStates(ctx, []string{code}, p.limit, false)
				return nil
			})
		}
		_ = g.Wait()

		for _, summary := range out {
			for _, res := range summary.Results {
				if res.Success {
					results.Success = append(results.Success, res)
				} else {
					results.Failed = append(results.Failed, res)
				}
			}
		}
	}

	done := len(results.Success) + len(results.Failed)
	for _, code := range states[done:] {
		results.Failed = append(results.Failed, domain.StateResult{State: code, Error: context.Cause(ctx).Error()})
	}

	summary := domain.ScheduledSummary{
		Message:      fmt.Sprintf("Scheduled sync completed: %d succeeded, %d failed", len(results.Success), len(results.Failed)),
		SuccessCount: len(results.Success),
		FailedCount:  len(results.Failed),
		Results:      results,
	}
	p.logger.Info("scheduled sync finished", "succeeded", summary.SuccessCount, "failed", summary.FailedCount)
	return summary
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
