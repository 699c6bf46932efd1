package openstates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"BillSync/internal/config"
	"BillSync/internal/domain"
	"BillSync/internal/logging"
	"BillSync/internal/metrics"
	"BillSync/internal/ports"
)

const (
	apiKeyHeader     = "X-API-KEY"
	maxErrorBodySize = 64 * 1024
	defaultPageSize  = 20
	defaultChunkSize = 10
)

// Params is a query parameter map. Slice values are sent as repeated keys, and
// a string "include" value is split on commas for the same reason.
type Params map[string]any

// Client talks to the Open States v3 API.
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	pageSize  int
	chunkSize int
	logger    *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[json.RawMessage]
}

var _ ports.LegislativeSource = (*Client)(nil)

// NewClient builds a client from configuration. A nil httpClient gets the
// configured timeout.
func NewClient(cfg config.SourceConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	logger = logging.OrDiscard(logger)
	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		http:      httpClient,
		pageSize:  pageSize,
		chunkSize: chunkSize,
		logger:    logger,
		breakers:  make(map[string]*gobreaker.CircuitBreaker[json.RawMessage]),
	}
}

// fetchScoped runs Fetch behind the breaker of one jurisdiction, so a failing
// state cannot short-circuit calls made for another.
func (c *Client) fetchScoped(ctx context.Context, scope, path string, params Params) (json.RawMessage, error) {
	return c.breakerFor(scope).Execute(func() (json.RawMessage, error) {
		return c.Fetch(ctx, path, params)
	})
}

func (c *Client) breakerFor(scope string) *gobreaker.CircuitBreaker[json.RawMessage] {
	scope = strings.ToLower(strings.TrimSpace(scope))

	c.mu.Lock()
	defer c.mu.Unlock()

	cb, ok := c.breakers[scope]
	if !ok {
		cb = newBreaker("openstates-api:"+scope, c.logger)
		c.breakers[scope] = cb
	}
	return cb
}

// Fetch performs a GET against path and returns the raw JSON document.
// Non-2xx responses fail with *domain.SourceAPIError. Fetch never retries
// and is not guarded by a breaker.
func (c *Client) Fetch(ctx context.Context, path string, params Params) (json.RawMessage, error) {
	endpoint := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if query := EncodeParams(params); query != "" {
		endpoint += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.SourceAPIError{Status: resp.StatusCode, Body: readBodyForError(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return json.RawMessage(body), nil
}

// EncodeParams serializes params with repeated keys for multi-value filters.
func EncodeParams(params Params) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, key := range keys {
		switch v := params[key].(type) {
		case nil:
		case []string:
			for _, item := range v {
				values.Add(key, item)
			}
		case string:
			if key == "include" {
				for _, part := range strings.Split(v, ",") {
					if part = strings.TrimSpace(part); part != "" {
						values.Add(key, part)
					}
				}
				continue
			}
			values.Add(key, v)
		default:
			rv := reflect.ValueOf(v)
			if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
				for i := 0; i < rv.Len(); i++ {
					if item := rv.Index(i).Interface(); item != nil {
						values.Add(key, formatParam(item))
					}
				}
				continue
			}
			values.Add(key, formatParam(v))
		}
	}
	return values.Encode()
}

func formatParam(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	return strings.TrimSpace(string(body))
}

// isBreakerSuccess keeps client errors (4xx) from tripping the breaker; only
// transport failures and server errors count.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *domain.SourceAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < http.StatusInternalServerError && apiErr.Status != http.StatusTooManyRequests
	}
	return errors.Is(err, context.Canceled)
}
