package models

import "time"

// BatchState tracks the bulk coordinator lifecycle.
type BatchState string

const (
	BatchIdle                BatchState = "IDLE"
	BatchValidating          BatchState = "VALIDATING"
	BatchSubmitting          BatchState = "SUBMITTING"
	BatchCompleted           BatchState = "COMPLETED"
	BatchCompletedWithErrors BatchState = "COMPLETED_WITH_ERRORS"
	BatchFailed              BatchState = "FAILED"
)

// Terminal reports whether no further progress will be made.
func (s BatchState) Terminal() bool {
	return s == BatchCompleted || s == BatchCompletedWithErrors || s == BatchFailed
}

// EntryFailure explains why a single batch entry was not committed.
type EntryFailure struct {
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	Conflict *LessonConflict `json:"conflict,omitempty"`
}

// BatchEntryResult is the outcome of one candidate in a batch, in input order.
type BatchEntryResult struct {
	Index   int           `json:"index"`
	Entry   *LessonEntry  `json:"entry,omitempty"`
	Failure *EntryFailure `json:"failure,omitempty"`
}

// BatchResult aggregates the outcome and progress of a bulk submission.
type BatchResult struct {
	BatchID    string             `json:"batch_id"`
	Kind       string             `json:"kind"`
	State      BatchState         `json:"state"`
	Total      int                `json:"total"`
	Processed  int                `json:"processed"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	Error      *EntryFailure      `json:"error,omitempty"`
	Results    []BatchEntryResult `json:"results"`
	Template   *WeekTemplate      `json:"template,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}
