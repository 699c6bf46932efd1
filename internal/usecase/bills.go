package usecase

import (
	"context"
	"fmt"
	"time"

	"BillSync/internal/domain"
	"BillSync/internal/metrics"
	"BillSync/internal/normalize"
	"BillSync/internal/ports"
)

// SyncBills fetches up to limit bills of one jurisdiction and reconciles each
// with its sponsors and subjects. A failing bill is logged and counted; it
// never stops the rest. Only a failed bill fetch is returned as an error.
// Unless full is set, a stored watermark restricts the fetch to bills updated
// since the last clean run.
func (p *Pipeline) SyncBills(ctx context.Context, jurisdiction string, limit int, full bool) (domain.BillSyncResult, error) {
	var result domain.BillSyncResult
	if limit <= 0 {
		limit = p.limit
	}

	query := ports.BillQuery{Jurisdiction: jurisdiction, Limit: limit}
	if p.watermarks != nil && !full {
		mark, ok, err := p.watermarks.Load(ctx, jurisdiction)
		switch {
		case err != nil:
			p.logger.Warn("watermark unavailable, running full sync", "jurisdiction", jurisdiction, "error", err)
		case ok:
			query.UpdatedSince = mark.UpdatedAt
		}
	}

	bills, err := p.source.ListBills(ctx, query)
	if err != nil {
		return result, fmt.Errorf("fetch bills: %w", err)
	}
	result.Total = len(bills)

	var newest domain.Bill
	for _, bill := range bills {
		if err := p.SyncBill(ctx, bill); err != nil {
			result.Failed++
			metrics.SyncFailures.WithLabelValues("bill").Inc()
			p.logger.Warn("bill sync failed", "jurisdiction", jurisdiction, "bill_id", bill.ID, "identifier", bill.Identifier, "error", err)
			continue
		}
		result.Synced++
		if bill.UpdatedAt.After(newest.UpdatedAt) {
			newest = bill
		}
	}

	if p.watermarks != nil && result.Failed == 0 && !newest.UpdatedAt.IsZero() {
		mark := domain.Watermark{
			Jurisdiction: jurisdiction,
			UpdatedAt:    newest.UpdatedAt,
			LastBillID:   newest.ID,
			SyncedAt:     time.Now().UTC(),
		}
		if err := p.watermarks.Save(ctx, mark); err != nil {
			p.logger.Warn("watermark not saved", "jurisdiction", jurisdiction, "error", err)
		}
	}

	p.logger.Info("bills synced", "jurisdiction", jurisdiction, "synced", result.Synced, "total", result.Total, "failed", result.Failed)
	return result, nil
}

// SyncBill reconciles one bill after its sponsors and subjects.
func (p *Pipeline) SyncBill(ctx context.Context, bill domain.Bill) error {
	sponsorIDs := p.SyncLegislators(ctx, bill.Sponsors)
	subjectIDs := p.SyncSubjects(ctx, bill.Subjects)

	fields := billFields(bill, capIDs(sponsorIDs), capIDs(subjectIDs))
	if _, err := p.reconciler.Reconcile(ctx, p.tables.Bills, FieldBillID, bill.ID, fields); err != nil {
		return fmt.Errorf("reconcile bill: %w", err)
	}
	return nil
}

// billFields always writes both link fields, even when empty.
func billFields(bill domain.Bill, sponsorIDs, subjectIDs []string) domain.Fields {
	fields := domain.Fields{
		FieldBillNumber: bill.Identifier,
		FieldSlug:       normalize.Slug(bill.Identifier),
		FieldStatus:     string(normalize.Status(bill.LatestAction)),
		FieldSponsors:   sponsorIDs,
		FieldSubjects:   subjectIDs,
	}

	setIf(fields, FieldTitle, bill.Title)
	setIf(fields, FieldSummary, normalize.PlainText(bill.Abstract))
	setIf(fields, FieldLastAction, bill.LatestAction)
	setIf(fields, FieldState, bill.Jurisdiction)
	if len(bill.Classification) > 0 {
		setIf(fields, FieldClassification, bill.Classification[0])
	}
	setIf(fields, FieldIntroducedDate, normalize.DateString(bill.FirstActionDate))
	setIf(fields, FieldLastActionDate, normalize.DateString(bill.LatestActionDate))
	setIf(fields, FieldChamber, normalize.Chamber(bill.OriginChamber))
	setIf(fields, FieldSession, bill.Session)
	setIf(fields, FieldSourceURL, bill.SourceURL)
	return fields
}
