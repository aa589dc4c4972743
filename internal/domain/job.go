package domain

import (
	"math"
	"strings"
	"time"
)

// JobStatus represents the lifecycle state of a reminder dispatch job.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

func (s JobStatus) String() string { return string(s) }

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// DeliveryStatus is the outcome of a single recipient within a job.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

func (s DeliveryStatus) String() string { return string(s) }

// RecipientResult is one per-tenant outcome recorded on a job. Entries are append-only.
type RecipientResult struct {
	TenantID string
	Name     string
	Status   DeliveryStatus
	Cost     float64
	Error    string
}

func SentResult(tenantID, name string, cost float64) RecipientResult {
	return RecipientResult{
		TenantID: tenantID,
		Name:     name,
		Status:   DeliverySent,
		Cost:     cost,
	}
}

func FailedResult(tenantID, name string, reason string) RecipientResult {
	if strings.TrimSpace(reason) == "" {
		reason = "unknown error"
	}
	return RecipientResult{
		TenantID: tenantID,
		Name:     name,
		Status:   DeliveryFailed,
		Error:    reason,
	}
}

// Job tracks one bulk reminder dispatch. It lives only in the job registry.
type Job struct {
	ID          string
	UserID      string
	Method      Method
	Period      string
	Status      JobStatus
	Total       int
	Sent        int
	Failed      int
	TotalCost   float64
	Details     []RecipientResult
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// Clone returns a deep copy safe to hand out to readers.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}

	cp := *j
	cp.Details = make([]RecipientResult, len(j.Details))
	copy(cp.Details, j.Details)
	if j.CompletedAt != nil {
		completedAt := *j.CompletedAt
		cp.CompletedAt = &completedAt
	}
	return &cp
}

// Processed is the number of recipients attempted so far.
func (j *Job) Processed() int {
	return j.Sent + j.Failed
}

// Progress reports completion as a whole percentage in [0, 100].
func (j *Job) Progress() int {
	if j.Total <= 0 {
		if j.Status.IsTerminal() {
			return 100
		}
		return 0
	}

	pct := int(math.Round(float64(j.Processed()) / float64(j.Total) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Record appends a recipient outcome and advances the counters.
func (j *Job) Record(result RecipientResult) {
	j.Details = append(j.Details, result)
	switch result.Status {
	case DeliverySent:
		j.Sent++
		j.TotalCost += result.Cost
	default:
		j.Failed++
	}
}

// Complete moves the job into completed. Terminal jobs are left untouched.
func (j *Job) Complete(now time.Time) {
	if j.Status.IsTerminal() {
		return
	}
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
}

// Fail moves the job into failed with a top-level reason. Terminal jobs are left untouched.
func (j *Job) Fail(now time.Time, reason string) {
	if j.Status.IsTerminal() {
		return
	}
	j.Status = JobStatusFailed
	j.Error = reason
	j.CompletedAt = &now
}
