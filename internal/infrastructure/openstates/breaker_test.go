package openstates

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"

	"BillSync/internal/ports"
)

func TestBreakerOpensAfterConsecutiveServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	q := ports.BillQuery{Jurisdiction: "ca", Limit: 5}

	for i := 0; i < breakerConsecutiveFailures; i++ {
		if _, err := client.ListBills(context.Background(), q); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	_, err := client.ListBills(context.Background(), q)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if got := calls.Load(); got != breakerConsecutiveFailures {
		t.Fatalf("open breaker must not reach upstream: %d calls", got)
	}
}

func TestBreakerIsScopedPerJurisdiction(t *testing.T) {
	t.Parallel()

	var txCalls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("jurisdiction") == "ca" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		txCalls.Add(1)
		_, _ = w.Write([]byte(`{"results":[],"pagination":{"max_page":1}}`))
	})
	ctx := context.Background()

	for i := 0; i <= breakerConsecutiveFailures; i++ {
		_, _ = client.ListBills(ctx, ports.BillQuery{Jurisdiction: "ca", Limit: 5})
	}
	if _, err := client.ListBills(ctx, ports.BillQuery{Jurisdiction: "CA", Limit: 5}); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ca breaker open, got %v", err)
	}

	if _, err := client.ListBills(ctx, ports.BillQuery{Jurisdiction: "tx", Limit: 5}); err != nil {
		t.Fatalf("another jurisdiction must not be short-circuited: %v", err)
	}
	if txCalls.Load() != 1 {
		t.Fatalf("expected tx request to reach upstream, got %d", txCalls.Load())
	}
}

func TestPeopleFailuresDoNotTripBreaker(t *testing.T) {
	t.Parallel()

	var billCalls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/people" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		billCalls.Add(1)
		_, _ = w.Write([]byte(`{"results":[],"pagination":{"max_page":1}}`))
	})
	ctx := context.Background()

	for i := 0; i < breakerConsecutiveFailures*2; i++ {
		_, err := client.PeopleDetails(ctx, []string{"ocd-person/1"})
		if err == nil {
			t.Fatalf("call %d: expected people error", i)
		}
		if errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("call %d: people lookups must not be short-circuited", i)
		}
	}

	if _, err := client.ListBills(ctx, ports.BillQuery{Jurisdiction: "tx", Limit: 5}); err != nil {
		t.Fatalf("bill listing after people failures: %v", err)
	}
	if _, err := client.ListBills(ctx, ports.BillQuery{Jurisdiction: "ca", Limit: 5}); err != nil {
		t.Fatalf("bill listing after people failures: %v", err)
	}
	if billCalls.Load() != 2 {
		t.Fatalf("expected both listings to reach upstream, got %d", billCalls.Load())
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < breakerConsecutiveFailures*2; i++ {
		_, err := client.Jurisdiction(context.Background(), "zz")
		if errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("call %d: 404 must not trip the breaker", i)
		}
	}
	if got := calls.Load(); got != breakerConsecutiveFailures*2 {
		t.Fatalf("expected every call to reach upstream, got %d", got)
	}
}
