package usecase

import (
	"context"

	"BillSync/internal/domain"
	"BillSync/internal/metrics"
	"BillSync/internal/normalize"
)

// SyncLegislators reconciles the sponsors of a bill and returns their record
// ids in input order. Stubs are deduplicated by person id before the details
// lookup; when the lookup fails entirely every person is written from stub
// data. Stubs without a person id (organization sponsors) are skipped.
func (p *Pipeline) SyncLegislators(ctx context.Context, stubs []domain.PersonStub) []string {
	unique := make([]domain.PersonStub, 0, len(stubs))
	seen := make(map[string]struct{}, len(stubs))
	for _, stub := range stubs {
		if stub.ID == "" {
			continue
		}
		if _, ok := seen[stub.ID]; ok {
			continue
		}
		seen[stub.ID] = struct{}{}
		unique = append(unique, stub)
	}
	if len(unique) == 0 {
		return []string{}
	}

	ids := make([]string, len(unique))
	for i, stub := range unique {
		ids[i] = stub.ID
	}

	details, err := p.source.PeopleDetails(ctx, ids)
	if err != nil {
		p.logger.Warn("legislator details unavailable, using sponsor data", "count", len(ids), "error", err)
		details = nil
	}

	recordIDs := make([]string, 0, len(unique))
	for _, stub := range unique {
		detail, ok := details[stub.ID]
		fields := legislatorFields(stub, detail, ok)

		recordID, err := p.reconciler.Reconcile(ctx, p.tables.Legislators, FieldLegislatorID, stub.ID, fields)
		if err != nil {
			metrics.SyncFailures.WithLabelValues("legislator").Inc()
			p.logger.Warn("legislator sync failed", "person_id", stub.ID, "error", err)
			continue
		}
		recordIDs = append(recordIDs, recordID)
	}
	return recordIDs
}

// legislatorFields builds a sparse field set: attributes missing upstream are
// omitted so they never overwrite stored values with blanks.
func legislatorFields(stub domain.PersonStub, detail domain.Legislator, hasDetail bool) domain.Fields {
	fields := domain.Fields{}

	pick := func(preferred, fallback string) string {
		if hasDetail && preferred != "" {
			return preferred
		}
		return fallback
	}

	setIf(fields, FieldName, pick(detail.Name, stub.Name))
	setIf(fields, FieldParty, pick(detail.Party, stub.Party))
	setIf(fields, FieldChamber, normalize.Chamber(pick(detail.Chamber, stub.Chamber)))
	setIf(fields, FieldDistrict, pick(detail.District, stub.District))
	setIf(fields, FieldTitle, pick(detail.Title, stub.Title))

	if hasDetail {
		setIf(fields, FieldFirstName, detail.GivenName)
		setIf(fields, FieldLastName, detail.FamilyName)
		setIf(fields, FieldState, detail.Jurisdiction)
		setIf(fields, FieldPhone, detail.Phone)
		setIf(fields, FieldAddress, detail.Address)
		setIf(fields, FieldEmail, detail.Email)
		if len(detail.Links) > 0 {
			setIf(fields, FieldWebsite, detail.Links[0])
		}
	}
	return fields
}
