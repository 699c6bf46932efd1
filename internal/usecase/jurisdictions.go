package usecase

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"BillSync/internal/domain"
	"BillSync/internal/normalize"
)

// SyncJurisdiction fetches one state and reconciles its record.
func (p *Pipeline) SyncJurisdiction(ctx context.Context, code string) (string, error) {
	j, err := p.source.Jurisdiction(ctx, code)
	if err != nil {
		return "", fmt.Errorf("fetch jurisdiction: %w", err)
	}
	return p.ReconcileJurisdiction(ctx, j)
}

// ReconcileJurisdiction keys the state record by its two-letter abbreviation,
// or by display name when the identifier carries none.
func (p *Pipeline) ReconcileJurisdiction(ctx context.Context, j domain.Jurisdiction) (string, error) {
	sessions := j.Sessions
	if sessions == nil {
		sessions = []domain.Session{}
	}
	rawSessions, err := json.Marshal(sessions)
	if err != nil {
		return "", fmt.Errorf("encode sessions: %w", err)
	}

	fields := domain.Fields{FieldSessions: string(rawSessions)}
	setIf(fields, FieldName, j.Name)
	setIf(fields, FieldLegislatureType, normalize.LegislatureType(j.Chambers))

	if abbr, ok := normalize.StateAbbreviation(j.ID); ok {
		fields[FieldAbbreviation] = abbr
		return p.reconciler.Reconcile(ctx, p.tables.States, FieldAbbreviation, abbr, fields)
	}
	return p.reconciler.Reconcile(ctx, p.tables.States, FieldName, j.Name, fields)
}
