package domain

import "time"

// Landlord is the user who owns properties and initiates reminders.
type Landlord struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// Tenant is a reminder recipient belonging to a landlord.
type Tenant struct {
	ID                 string
	LandlordID         string
	Name               string
	Phone              string
	Email              string
	UnitNumber         string
	PropertyName       string
	RentAmount         int64
	Currency           string
	RentDueDay         int
	LastReminderSentAt *time.Time
}

// Address returns the tenant contact used for the given method.
func (t *Tenant) Address(method Method) string {
	if method == MethodEmail {
		return t.Email
	}
	return t.Phone
}

// ReminderLog is the durable audit entry written for every reminder attempt.
type ReminderLog struct {
	ID         string
	JobID      string
	LandlordID string
	TenantID   string
	Method     Method
	Period     string
	Status     DeliveryStatus
	Cost       float64
	MessageID  *string
	Error      *string
	CreatedAt  time.Time
}

// EventLog is a landlord-scoped audit event, e.g. a bulk reminder summary.
type EventLog struct {
	ID         string
	LandlordID string
	Action     string
	Details    string
	CreatedAt  time.Time
}

const EventBulkReminderSent = "bulk_reminder_sent"
