package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
)

// JobCompletedEvent is the broker payload emitted when a reminder job reaches a terminal status.
type JobCompletedEvent struct {
	JobID       string           `json:"jobId"`
	LandlordID  string           `json:"landlordId"`
	Method      domain.Method    `json:"method"`
	Period      string           `json:"period"`
	Status      domain.JobStatus `json:"status"`
	Total       int              `json:"total"`
	Sent        int              `json:"sent"`
	Failed      int              `json:"failed"`
	TotalCost   float64          `json:"totalCost"`
	Error       string           `json:"error,omitempty"`
	CompletedAt time.Time        `json:"completedAt"`
}

// NewJobCompletedEvent builds the event from a terminal job snapshot.
func NewJobCompletedEvent(job *domain.Job) (JobCompletedEvent, error) {
	if job == nil {
		return JobCompletedEvent{}, fmt.Errorf("job is required")
	}
	if !job.Status.IsTerminal() || job.CompletedAt == nil {
		return JobCompletedEvent{}, fmt.Errorf("job %s is not finished", job.ID)
	}

	return JobCompletedEvent{
		JobID:       job.ID,
		LandlordID:  job.UserID,
		Method:      job.Method,
		Period:      job.Period,
		Status:      job.Status,
		Total:       job.Total,
		Sent:        job.Sent,
		Failed:      job.Failed,
		TotalCost:   job.TotalCost,
		Error:       job.Error,
		CompletedAt: job.CompletedAt.UTC(),
	}, nil
}

func (e JobCompletedEvent) Validate() error {
	if strings.TrimSpace(e.JobID) == "" {
		return fmt.Errorf("jobId is required")
	}
	if !e.Method.IsValid() {
		return fmt.Errorf("invalid method %q", e.Method)
	}
	if !e.Status.IsTerminal() {
		return fmt.Errorf("status %q is not terminal", e.Status)
	}
	return nil
}
