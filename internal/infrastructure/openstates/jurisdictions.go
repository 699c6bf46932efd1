package openstates

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"BillSync/internal/domain"
)

// JurisdictionID builds the structured identifier of a state government.
func JurisdictionID(abbr string) string {
	return fmt.Sprintf("ocd-jurisdiction/country:us/state:%s/government", strings.ToLower(strings.TrimSpace(abbr)))
}

// Jurisdiction looks a single state up with its sessions and chambers.
func (c *Client) Jurisdiction(ctx context.Context, abbr string) (domain.Jurisdiction, error) {
	raw, err := c.fetchScoped(ctx, abbr, "/jurisdictions/"+JurisdictionID(abbr), Params{
		"include": "legislative_sessions,organizations",
	})
	if err != nil {
		return domain.Jurisdiction{}, fmt.Errorf("fetch jurisdiction %s: %w", abbr, err)
	}

	var resp jurisdictionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return domain.Jurisdiction{}, fmt.Errorf("decode jurisdiction %s: %w", abbr, err)
	}

	j := domain.Jurisdiction{ID: resp.ID, Name: resp.Name}
	hasLegislature := false
	for _, org := range resp.Organizations {
		switch org.Classification {
		case "upper", "lower":
			j.Chambers++
		case "legislature":
			hasLegislature = true
		}
	}
	if j.Chambers == 0 && hasLegislature {
		j.Chambers = 1
	}
	for _, s := range resp.LegislativeSessions {
		j.Sessions = append(j.Sessions, domain.Session{
			Identifier:     s.Identifier,
			Name:           s.Name,
			Classification: s.Classification,
			StartDate:      s.StartDate,
			EndDate:        s.EndDate,
		})
	}
	return j, nil
}
