package usecase

import (
	"log/slog"
	"strings"
	"time"

	"BillSync/internal/logging"
	"BillSync/internal/normalize"
	"BillSync/internal/ports"
)

const (
	defaultLimit      = 50
	defaultBatchSize  = 5
	defaultBatchDelay = 2 * time.Second
)

// Options tunes the orchestrators.
type Options struct {
	DefaultLimit int
	BatchSize    int
	// BatchDelay separates scheduled batches; a negative value disables it.
	BatchDelay time.Duration
	States     []string
}

// PipelineDeps wires all driven adapters into the sync pipeline.
type PipelineDeps struct {
	Source     ports.LegislativeSource
	Reconciler ports.Reconciler
	Watermarks ports.WatermarkStore
	Subjects   *normalize.SubjectCanonicalizer
	Tables     Tables
	Options    Options
	Logger     *slog.Logger
}

// Pipeline implements the entity sync units and the batch orchestrators.
type Pipeline struct {
	source     ports.LegislativeSource
	reconciler ports.Reconciler
	watermarks ports.WatermarkStore
	subjects   *normalize.SubjectCanonicalizer
	tables     Tables
	limit      int
	batchSize  int
	batchDelay time.Duration
	states     []string
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:     deps.Source,
		reconciler: deps.Reconciler,
		watermarks: deps.Watermarks,
		subjects:   deps.Subjects,
		tables:     deps.Tables.withDefaults(),
		limit:      deps.Options.DefaultLimit,
		batchSize:  deps.Options.BatchSize,
		batchDelay: deps.Options.BatchDelay,
		states:     NormalizeStates(deps.Options.States),
		logger:     logging.OrDiscard(deps.Logger),
	}

	if p.subjects == nil {
		p.subjects = normalize.NewSubjectCanonicalizer(nil)
	}
	if p.limit <= 0 {
		p.limit = defaultLimit
	}
	if p.batchSize <= 0 {
		p.batchSize = defaultBatchSize
	}
	if p.batchDelay == 0 {
		p.batchDelay = defaultBatchDelay
	}
	return p
}

// DefaultLimit is the bill limit applied when a request gives none.
func (p *Pipeline) DefaultLimit() int {
	return p.limit
}

// NormalizeStates lower-cases, trims and dedupes jurisdiction codes, keeping
// first-seen order.
func NormalizeStates(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
