package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrFeatureDisabled = errors.New("feature disabled")
)

// FeatureDisabledError is returned when a reminder channel is switched off.
type FeatureDisabledError struct {
	Feature    string
	Message    string
	Suggestion string
}

func (e *FeatureDisabledError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	return e.Feature + " is currently disabled"
}

func (e *FeatureDisabledError) Is(target error) bool {
	return target == ErrFeatureDisabled
}
