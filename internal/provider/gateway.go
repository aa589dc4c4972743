package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/go-resty/resty/v2"
)

const defaultGatewayTimeout = 10 * time.Second

type gatewayRequest struct {
	To      string `json:"to"`
	Channel string `json:"channel"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// GatewaySender delivers reminders through an HTTP JSON gateway (SMS aggregator or mail relay).
type GatewaySender struct {
	client         *resty.Client
	endpoint       string
	method         domain.Method
	costPerMessage float64
}

func NewGatewaySender(method domain.Method, endpoint string, costPerMessage float64) (*GatewaySender, error) {
	client := resty.New()
	client.SetTimeout(defaultGatewayTimeout)
	client.SetRetryCount(0)

	return NewGatewaySenderWithClient(method, endpoint, costPerMessage, client)
}

func NewGatewaySenderWithClient(
	method domain.Method,
	endpoint string,
	costPerMessage float64,
	client *resty.Client,
) (*GatewaySender, error) {
	if !method.IsValid() {
		return nil, fmt.Errorf("invalid gateway method %q", method)
	}
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("%s gateway endpoint is required", method)
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid %s gateway endpoint: %w", method, err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if costPerMessage < 0 {
		return nil, fmt.Errorf("%s cost per message must be >= 0", method)
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultGatewayTimeout)
	}
	client.SetRetryCount(0)

	return &GatewaySender{
		client:         client,
		endpoint:       trimmedEndpoint,
		method:         method,
		costPerMessage: costPerMessage,
	}, nil
}

func (p *GatewaySender) Send(ctx context.Context, msg domain.Message) (*Outcome, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("gateway sender is not initialized")
	}
	if msg.Method != p.method {
		return nil, fmt.Errorf("%w: %s gateway cannot send %s message", domain.ErrValidation, p.method, msg.Method)
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}

	reqBody := gatewayRequest{
		To:      msg.Recipient,
		Channel: msg.Method.String(),
		Subject: msg.Subject,
		Message: msg.Body,
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post(p.endpoint)
	if err != nil {
		return nil, &GatewayError{
			Method:    p.method,
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return nil, &GatewayError{
			Method:    p.method,
			Detail:    "empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	responseBody := strings.TrimSpace(response.String())

	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return &Outcome{
			StatusCode: statusCode,
			Body:       responseBody,
			MessageID:  gatewayMessageID(response),
			Cost:       p.costPerMessage,
		}, nil
	}

	return nil, &GatewayError{
		Method:     p.method,
		StatusCode: statusCode,
		Detail:     truncateDetail(responseBody),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

// truncateDetail keeps gateway bodies short enough for the reminder log.
func truncateDetail(body string) string {
	const maxDetail = 200
	if len(body) <= maxDetail {
		return body
	}
	return body[:maxDetail] + "..."
}

func gatewayMessageID(response *resty.Response) string {
	if response == nil {
		return ""
	}

	for _, key := range []string{"X-Message-ID", "X-Request-ID", "X-Correlation-ID"} {
		if value := strings.TrimSpace(response.Header().Get(key)); value != "" {
			return value
		}
	}

	return ""
}
