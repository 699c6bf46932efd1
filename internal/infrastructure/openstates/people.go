package openstates

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"BillSync/internal/domain"
)

// PeopleByID fetches full person records for ids in a single request.
func (c *Client) PeopleByID(ctx context.Context, ids []string) (map[string]domain.Legislator, error) {
	out := make(map[string]domain.Legislator, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	raw, err := c.Fetch(ctx, "/people", Params{
		"id":       ids,
		"per_page": len(ids),
		"include":  "offices,links",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch people: %w", err)
	}

	var resp peopleResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode people: %w", err)
	}

	for _, p := range resp.Results {
		out[p.ID] = p.toDomain()
	}
	return out, nil
}

// PeopleDetails looks ids up in fixed-size chunks. A failed chunk is logged and
// skipped so the remaining chunks still contribute; an error is returned only
// when every chunk failed.
func (c *Client) PeopleDetails(ctx context.Context, ids []string) (map[string]domain.Legislator, error) {
	out := make(map[string]domain.Legislator, len(ids))
	var errs []error

	chunks := chunk(ids, c.chunkSize)
	for i, part := range chunks {
		people, err := c.PeopleByID(ctx, part)
		if err != nil {
			c.logger.Warn("people chunk failed", "chunk", i+1, "chunks", len(chunks), "size", len(part), "error", err)
			errs = append(errs, err)
			continue
		}
		for id, p := range people {
			out[id] = p
		}
	}

	if len(chunks) > 0 && len(errs) == len(chunks) {
		return out, fmt.Errorf("all %d people chunks failed: %w", len(chunks), errors.Join(errs...))
	}
	return out, nil
}

func chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = defaultChunkSize
	}
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

func (p apiPerson) toDomain() domain.Legislator {
	l := domain.Legislator{
		ID:         p.ID,
		Name:       p.Name,
		GivenName:  p.GivenName,
		FamilyName: p.FamilyName,
		Party:      p.Party,
		Email:      p.Email,
	}
	if p.CurrentRole != nil {
		l.Chamber = p.CurrentRole.OrgClassification
		l.District = string(p.CurrentRole.District)
		l.Title = p.CurrentRole.Title
	}
	if p.Jurisdiction != nil {
		l.Jurisdiction = p.Jurisdiction.Name
	}
	for _, o := range p.Offices {
		if l.Phone == "" && o.Voice != "" {
			l.Phone = o.Voice
		}
		if l.Address == "" && o.Address != "" {
			l.Address = o.Address
		}
	}
	for _, link := range p.Links {
		if link.URL != "" {
			l.Links = append(l.Links, link.URL)
		}
	}
	return l
}
