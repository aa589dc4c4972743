package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ReminderService interface {
	SubmitBulk(ctx context.Context, userID string, req service.BulkRequest) (*service.BulkAccepted, error)
	GetJobStatus(ctx context.Context, userID string, jobID string) (*service.JobSummary, error)
	GetJobDetails(ctx context.Context, userID string, jobID string) (*service.JobDetails, error)
}

type ReminderHandler struct {
	service ReminderService
}

func NewReminderHandler(service ReminderService) (*ReminderHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("reminder service is required")
	}
	return &ReminderHandler{service: service}, nil
}

// RegisterReminderRoutes mounts the reminder API behind auth.
func RegisterReminderRoutes(router fiber.Router, service ReminderService, auth fiber.Handler) error {
	h, err := NewReminderHandler(service)
	if err != nil {
		return err
	}
	if auth == nil {
		return fmt.Errorf("auth middleware is required")
	}

	reminders := router.Group("/v1/reminders", auth)
	reminders.Post("/bulk", h.SendBulk)
	reminders.Get("/jobs/:jobId", h.GetJobStatus)
	reminders.Get("/jobs/:jobId/details", h.GetJobDetails)

	return nil
}

type bulkReminderRequest struct {
	TenantIDs []string `json:"tenantIds"`
	Method    string   `json:"method"`
	Period    string   `json:"period"`
}

type bulkReminderResponse struct {
	JobID    string `json:"jobId"`
	Eligible int    `json:"eligible"`
	Method   string `json:"method"`
	Period   string `json:"period"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

type jobSummaryResponse struct {
	JobID       string     `json:"jobId"`
	Status      string     `json:"status"`
	Method      string     `json:"method"`
	Period      string     `json:"period"`
	Total       int        `json:"total"`
	Sent        int        `json:"sent"`
	Failed      int        `json:"failed"`
	TotalCost   float64    `json:"totalCost"`
	Progress    int        `json:"progress"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type jobDetailsResponse struct {
	jobSummaryResponse
	Details []recipientResultResponse `json:"details"`
}

type recipientResultResponse struct {
	TenantID string  `json:"tenantId"`
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	Cost     float64 `json:"cost"`
	Error    string  `json:"error,omitempty"`
}

func (h *ReminderHandler) SendBulk(c *fiber.Ctx) error {
	var req bulkReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	accepted, err := h.service.SubmitBulk(c.UserContext(), UserID(c), service.BulkRequest{
		TenantIDs: req.TenantIDs,
		Method:    req.Method,
		Period:    req.Period,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusAccepted).JSON(bulkReminderResponse{
		JobID:    accepted.JobID,
		Eligible: accepted.Eligible,
		Method:   accepted.Method.String(),
		Period:   accepted.Period,
		Status:   accepted.Status.String(),
		Message:  accepted.Message,
	})
}

func (h *ReminderHandler) GetJobStatus(c *fiber.Ctx) error {
	summary, err := h.service.GetJobStatus(c.UserContext(), UserID(c), c.Params("jobId"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toJobSummaryResponse(summary))
}

func (h *ReminderHandler) GetJobDetails(c *fiber.Ctx) error {
	details, err := h.service.GetJobDetails(c.UserContext(), UserID(c), c.Params("jobId"))
	if err != nil {
		return toHTTPError(err)
	}

	results := make([]recipientResultResponse, 0, len(details.Details))
	for _, r := range details.Details {
		results = append(results, recipientResultResponse{
			TenantID: r.TenantID,
			Name:     r.Name,
			Status:   r.Status.String(),
			Cost:     r.Cost,
			Error:    r.Error,
		})
	}

	return c.Status(fiber.StatusOK).JSON(jobDetailsResponse{
		jobSummaryResponse: toJobSummaryResponse(&details.JobSummary),
		Details:            results,
	})
}

func toJobSummaryResponse(s *service.JobSummary) jobSummaryResponse {
	if s == nil {
		return jobSummaryResponse{}
	}

	return jobSummaryResponse{
		JobID:       s.JobID,
		Status:      s.Status.String(),
		Method:      s.Method.String(),
		Period:      s.Period,
		Total:       s.Total,
		Sent:        s.Sent,
		Failed:      s.Failed,
		TotalCost:   s.TotalCost,
		Progress:    s.Progress,
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
		Error:       s.Error,
	}
}

// toHTTPError maps domain errors to HTTP status codes. Feature-disabled errors pass through so the
// error handler can render their suggestion.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "job not found")
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
