package usecase

import (
	"context"

	"BillSync/internal/domain"
	"BillSync/internal/metrics"
	"BillSync/internal/normalize"
)

// SyncSubjects reconciles raw subject labels by canonical display name and
// returns the record ids. Labels that canonicalize to the same name link once;
// a failed subject is logged and skipped.
func (p *Pipeline) SyncSubjects(ctx context.Context, labels []string) []string {
	recordIDs := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))

	for _, label := range labels {
		name := p.subjects.Canonicalize(label)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		fields := domain.Fields{FieldCategory: string(normalize.Category(label))}
		recordID, err := p.reconciler.Reconcile(ctx, p.tables.Subjects, FieldName, name, fields)
		if err != nil {
			metrics.SyncFailures.WithLabelValues("subject").Inc()
			p.logger.Warn("subject sync failed", "subject", name, "label", label, "error", err)
			continue
		}
		recordIDs = append(recordIDs, recordID)
	}
	return recordIDs
}
