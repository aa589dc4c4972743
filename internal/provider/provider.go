package provider

import (
	"context"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
)

// Sender is the outbound reminder delivery port for one channel.
type Sender interface {
	Send(ctx context.Context, msg domain.Message) (*Outcome, error)
}

// Outcome stores gateway call metadata for audit and cost accounting.
type Outcome struct {
	StatusCode int
	Body       string
	MessageID  string
	Cost       float64
}

// Registry resolves the sender for a delivery method.
type Registry map[domain.Method]Sender

func (r Registry) For(method domain.Method) (Sender, bool) {
	sender, ok := r[method]
	if !ok || sender == nil {
		return nil, false
	}
	return sender, true
}
