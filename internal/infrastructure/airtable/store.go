package airtable

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"BillSync/internal/config"
	"BillSync/internal/domain"
	"BillSync/internal/logging"
	"BillSync/internal/metrics"
	"BillSync/internal/ports"
)

const maxErrorBodySize = 4 * 1024

// Store implements ports.RecordStore on top of the Airtable REST API. Every
// request waits on a shared limiter to stay under the per-base rate limit.
type Store struct {
	baseURL string
	apiKey  string
	baseID  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.RecordStore = (*Store)(nil)

type apiRecord struct {
	ID          string        `json:"id"`
	Fields      domain.Fields `json:"fields"`
	CreatedTime string        `json:"createdTime,omitempty"`
}

type listResponse struct {
	Records []apiRecord `json:"records"`
	Offset  string      `json:"offset,omitempty"`
}

type writeRequest struct {
	Fields   domain.Fields `json:"fields"`
	Typecast bool          `json:"typecast"`
}

// NewStore builds a store bound to one base.
func NewStore(cfg config.AirtableConfig, httpClient *http.Client, logger *slog.Logger) *Store {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	return &Store{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		baseID:  cfg.BaseID,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logging.OrDiscard(logger),
	}
}

// FindByField returns the first record whose field equals value.
func (s *Store) FindByField(ctx context.Context, collection, field, value string) (domain.Record, bool, error) {
	query := url.Values{}
	query.Set("filterByFormula", Formula(field, value))
	query.Set("maxRecords", "1")
	query.Set("pageSize", "1")

	var resp listResponse
	err := s.do(ctx, http.MethodGet, s.tableURL(collection)+"?"+query.Encode(), nil, &resp)
	metrics.StoreRequests.WithLabelValues("find", metrics.Outcome(err)).Inc()
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("find %s: %w", field, err)
	}

	if len(resp.Records) == 0 {
		return domain.Record{}, false, nil
	}
	rec := resp.Records[0]
	return domain.Record{ID: rec.ID, Fields: rec.Fields}, true, nil
}

// Create inserts a record with fields.
func (s *Store) Create(ctx context.Context, collection string, fields domain.Fields) (domain.Record, error) {
	var rec apiRecord
	err := s.do(ctx, http.MethodPost, s.tableURL(collection), writeRequest{Fields: fields, Typecast: true}, &rec)
	metrics.StoreRequests.WithLabelValues("create", metrics.Outcome(err)).Inc()
	if err != nil {
		return domain.Record{}, fmt.Errorf("create: %w", err)
	}
	return domain.Record{ID: rec.ID, Fields: rec.Fields}, nil
}

// Update patches only the given fields of record id.
func (s *Store) Update(ctx context.Context, collection, id string, fields domain.Fields) (domain.Record, error) {
	var rec apiRecord
	endpoint := s.tableURL(collection) + "/" + url.PathEscape(id)
	err := s.do(ctx, http.MethodPatch, endpoint, writeRequest{Fields: fields, Typecast: true}, &rec)
	metrics.StoreRequests.WithLabelValues("update", metrics.Outcome(err)).Inc()
	if err != nil {
		return domain.Record{}, fmt.Errorf("update %s: %w", id, err)
	}
	return domain.Record{ID: rec.ID, Fields: rec.Fields}, nil
}

// Formula builds an equality filterByFormula expression.
func Formula(field, value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return fmt.Sprintf("{%s} = '%s'", field, escaped)
}

func (s *Store) tableURL(collection string) string {
	return s.baseURL + "/" + url.PathEscape(s.baseID) + "/" + url.PathEscape(collection)
}

func (s *Store) do(ctx context.Context, method, endpoint string, payload any, v any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
