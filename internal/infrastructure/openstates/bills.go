package openstates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"BillSync/internal/domain"
	"BillSync/internal/normalize"
	"BillSync/internal/ports"
)

// ListBills fetches up to q.Limit bills of one jurisdiction with their
// sponsorships and abstracts, walking pages until the limit or the last page.
// Without UpdatedSince the newest bills come first; with it, the oldest
// changes come first so a watermark taken from the batch never skips bills.
func (c *Client) ListBills(ctx context.Context, q ports.BillQuery) ([]domain.Bill, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = c.pageSize
	}
	perPage := min(limit, c.pageSize)

	bills := make([]domain.Bill, 0, limit)
	for page := 1; len(bills) < limit; page++ {
		params := Params{
			"jurisdiction": q.Jurisdiction,
			"page":         page,
			"per_page":     perPage,
			"sort":         "updated_desc",
			"include":      "sponsorships,abstracts",
		}
		if !q.UpdatedSince.IsZero() {
			params["updated_since"] = q.UpdatedSince
			params["sort"] = "updated_asc"
		}

		raw, err := c.fetchScoped(ctx, q.Jurisdiction, "/bills", params)
		if err != nil {
			return nil, fmt.Errorf("list bills %s page %d: %w", q.Jurisdiction, page, err)
		}

		var resp billsResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("decode bills %s page %d: %w", q.Jurisdiction, page, err)
		}

		for _, b := range resp.Results {
			if len(bills) == limit {
				break
			}
			bills = append(bills, b.toDomain(q.Jurisdiction))
		}

		if len(resp.Results) == 0 || page >= resp.Pagination.MaxPage {
			break
		}
	}

	c.logger.Debug("bills fetched", "jurisdiction", q.Jurisdiction, "count", len(bills))
	return bills, nil
}

func (b apiBill) toDomain(fallbackJurisdiction string) domain.Bill {
	jurisdiction, ok := normalize.StateAbbreviation(b.Jurisdiction.ID)
	if !ok {
		jurisdiction = strings.ToUpper(fallbackJurisdiction)
	}

	bill := domain.Bill{
		ID:               b.ID,
		Identifier:       b.Identifier,
		Title:            b.Title,
		Session:          b.Session,
		Jurisdiction:     jurisdiction,
		Classification:   b.Classification,
		Subjects:         b.Subject,
		OriginChamber:    b.FromOrganization.Classification,
		LatestAction:     b.LatestActionDescription,
		LatestActionDate: b.LatestActionDate,
		FirstActionDate:  b.FirstActionDate,
		SourceURL:        b.OpenstatesURL,
		UpdatedAt:        parseTimestamp(b.UpdatedAt),
	}

	for _, a := range b.Abstracts {
		if strings.TrimSpace(a.Abstract) != "" {
			bill.Abstract = a.Abstract
			break
		}
	}

	for _, s := range b.Sponsorships {
		stub := domain.PersonStub{Name: s.Name}
		if s.Person != nil {
			stub.ID = s.Person.ID
			if stub.Name == "" {
				stub.Name = s.Person.Name
			}
			stub.Party = s.Person.Party
			if role := s.Person.CurrentRole; role != nil {
				stub.Chamber = role.OrgClassification
				stub.District = string(role.District)
				stub.Title = role.Title
			}
		}
		bill.Sponsors = append(bill.Sponsors, stub)
	}

	return bill
}

func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
