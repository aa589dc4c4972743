package domain

import (
	"fmt"
	"strings"
)

// Method is the delivery channel used for a reminder.
type Method string

const (
	MethodSMS   Method = "sms"
	MethodEmail Method = "email"
)

func (m Method) String() string { return string(m) }

func (m Method) IsValid() bool {
	switch m {
	case MethodSMS, MethodEmail:
		return true
	}
	return false
}

// FeatureKey returns the feature toggle guarding the method.
func (m Method) FeatureKey() string {
	return string(m) + "_reminders"
}

// Alternative returns the other supported method.
func (m Method) Alternative() Method {
	if m == MethodSMS {
		return MethodEmail
	}
	return MethodSMS
}

func ParseMethodFromString(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: invalid method %q, must be sms or email", ErrValidation, s)
	}
	return m, nil
}

// Content limits per method (in characters). SMS allows three concatenated segments.
const (
	MaxSMSContent   = 459
	MaxEmailContent = 10000
)

// Message is a rendered reminder ready to hand to a channel sender.
type Message struct {
	Method    Method
	Recipient string
	Subject   string
	Body      string
}

func (m *Message) Validate() error {
	if strings.TrimSpace(m.Recipient) == "" {
		return fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrValidation)
	}
	if !m.Method.IsValid() {
		return fmt.Errorf("%w: invalid method %q", ErrValidation, m.Method)
	}

	bodyLen := len([]rune(m.Body))
	switch m.Method {
	case MethodSMS:
		if bodyLen > MaxSMSContent {
			return fmt.Errorf("%w: SMS body exceeds %d characters (got %d)", ErrValidation, MaxSMSContent, bodyLen)
		}
	case MethodEmail:
		if strings.TrimSpace(m.Subject) == "" {
			return fmt.Errorf("%w: email subject is required", ErrValidation)
		}
		if bodyLen > MaxEmailContent {
			return fmt.Errorf("%w: email body exceeds %d characters (got %d)", ErrValidation, MaxEmailContent, bodyLen)
		}
	}

	return nil
}
