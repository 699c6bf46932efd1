package httpapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"BillSync/internal/config"
	"BillSync/internal/domain"
	"BillSync/internal/logging"
)

const maxBodyBytes = 1 << 16

// Syncer runs the sync batches behind the trigger endpoints.
type Syncer interface {
	SyncStates(ctx context.Context, codes []string, limit int, full bool) domain.BatchSummary
	SyncScheduled(ctx context.Context) domain.ScheduledSummary
	DefaultLimit() int
}

type handler struct {
	lifetime context.Context
	syncer   Syncer
	logger   *slog.Logger
}

// NewRouter mounts the trigger, health and metrics endpoints. Sync runs
// outlive the triggering request and are cancelled only when ctx is.
func NewRouter(ctx context.Context, syncer Syncer, auth config.AuthConfig, logger *slog.Logger) http.Handler {
	h := &handler{lifetime: ctx, syncer: syncer, logger: logging.OrDiscard(logger)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/sync", func(r chi.Router) {
		r.With(requireBearer(auth.ManualToken, h.logger)).Post("/", h.manualSync)
		r.With(requireBearer(auth.CronToken, h.logger)).Post("/scheduled", h.scheduledSync)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		_ = ErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "not found")
	})
	return r
}

// requireBearer admits requests whose bearer token equals secret. An empty
// secret admits nothing.
func requireBearer(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				logger.Warn("unauthorized trigger", "path", r.URL.Path, "remote", r.RemoteAddr)
				_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", domain.ErrUnauthorized.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) manualSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "request body must be a JSON object")
		return
	}

	if err := validateSyncRequest(req); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", verr.Error())
			return
		}
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = h.syncer.DefaultLimit()
	}

	h.logger.Info("manual sync requested", "states", req.codes(), "limit", limit, "full", req.Full, "request_id", middleware.GetReqID(r.Context()))
	ctx, cancel := h.runContext(r)
	defer cancel()

	summary := h.syncer.SyncStates(ctx, req.codes(), limit, req.Full)
	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("write response", "error", err)
	}
}

func (h *handler) scheduledSync(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("scheduled sync requested", "request_id", middleware.GetReqID(r.Context()))
	ctx, cancel := h.runContext(r)
	defer cancel()

	summary := h.syncer.SyncScheduled(ctx)
	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("write response", "error", err)
	}
}

// runContext detaches a sync run from the client connection: a caller that
// disconnects does not abort the run, shutting the process down does.
func (h *handler) runContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	stop := context.AfterFunc(h.lifetime, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Server owns the listening HTTP server.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer binds router to cfg.Addr.
func NewServer(cfg config.HTTPConfig, router http.Handler, logger *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logging.OrDiscard(logger),
	}
}

// ListenAndServe blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
