package domain

import "time"

// BillSyncResult summarizes one jurisdiction's bill sync.
type BillSyncResult struct {
	Synced int
	Total  int
	Failed int
}

// StateResult is the per-jurisdiction entry of a batch summary.
type StateResult struct {
	State   string `json:"state"`
	Success bool   `json:"success"`
	Synced  *int   `json:"synced,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchSummary is returned by the manual trigger.
type BatchSummary struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message"`
	TotalStates int           `json:"totalStates"`
	TotalSynced int           `json:"totalSynced"`
	TotalBills  int           `json:"totalBills"`
	Results     []StateResult `json:"results"`
}

// ScheduledResults splits scheduled results by outcome.
type ScheduledResults struct {
	Success []StateResult `json:"success"`
	Failed  []StateResult `json:"failed"`
}

// ScheduledSummary is returned by the scheduled trigger.
type ScheduledSummary struct {
	Message      string           `json:"message"`
	SuccessCount int              `json:"successCount"`
	FailedCount  int              `json:"failedCount"`
	Results      ScheduledResults `json:"results"`
}

// Watermark marks how far a jurisdiction has been synced.
type Watermark struct {
	Jurisdiction string
	UpdatedAt    time.Time
	LastBillID   string
	SyncedAt     time.Time
}
