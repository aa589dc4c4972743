package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
)

// Failure labels recorded on metrics.
const (
	ReasonTimeout     = "timeout"
	ReasonUnavailable = "gateway_unavailable"
	ReasonRejected    = "gateway_rejected"
	ReasonSendError   = "send_error"
)

// GatewayError describes a failed gateway call. Transient failures (5xx, 429,
// network trouble) are distinguished from the gateway refusing the message.
type GatewayError struct {
	Method     domain.Method
	StatusCode int
	Detail     string
	Transient  bool
	Cause      error
}

func (e *GatewayError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	if e.Method != "" {
		fmt.Fprintf(&b, "%s gateway", e.Method)
	} else {
		b.WriteString("gateway")
	}

	switch {
	case e.StatusCode > 0:
		fmt.Fprintf(&b, " returned status %d", e.StatusCode)
	case e.Cause != nil:
		b.WriteString(" unreachable")
	default:
		b.WriteString(" failed")
	}

	if detail := strings.TrimSpace(e.Detail); detail != "" {
		b.WriteString(": ")
		b.WriteString(detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *GatewayError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsTransient reports whether the gateway might accept the same message later.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var gatewayErr *GatewayError
	if errors.As(err, &gatewayErr) {
		return gatewayErr.Transient
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// FailureReason maps a send error to one of the Reason labels.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	if IsTransient(err) {
		return ReasonUnavailable
	}

	var gatewayErr *GatewayError
	if errors.As(err, &gatewayErr) && gatewayErr.StatusCode > 0 {
		return ReasonRejected
	}
	return ReasonSendError
}
