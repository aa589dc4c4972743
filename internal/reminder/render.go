// Package reminder renders rent reminder messages for each delivery method.
package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultCurrency = "UGX"
	dueDateLayout   = "2 Jan 2006"
	periodLayout    = "January 2006"
)

var amountPrinter = message.NewPrinter(language.English)

// Input carries everything a reminder mentions.
type Input struct {
	Method   domain.Method
	Tenant   domain.Tenant
	Landlord domain.Landlord
	Period   string
}

// Render builds the channel-specific reminder. It has no side effects.
func Render(in Input) (domain.Message, error) {
	dueDate, err := domain.DueDate(in.Period, in.Tenant.RentDueDay)
	if err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		Method:    in.Method,
		Recipient: strings.TrimSpace(in.Tenant.Address(in.Method)),
	}

	switch in.Method {
	case domain.MethodSMS:
		msg.Body = renderSMS(in, dueDate)
	case domain.MethodEmail:
		msg.Subject = fmt.Sprintf("Rent reminder for %s", periodLabel(in.Period))
		msg.Body = renderEmail(in, dueDate)
	default:
		return domain.Message{}, fmt.Errorf("%w: invalid method %q", domain.ErrValidation, in.Method)
	}

	if err := msg.Validate(); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func renderSMS(in Input, dueDate time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, your rent of %s", firstName(in.Tenant.Name), FormatAmount(in.Tenant.RentAmount, in.Tenant.Currency))
	if unit := unitLabel(in.Tenant); unit != "" {
		fmt.Fprintf(&b, " for %s", unit)
	}
	fmt.Fprintf(&b, " is due on %s.", dueDate.Format(dueDateLayout))
	if contact := landlordContact(in.Landlord); contact != "" {
		fmt.Fprintf(&b, " Questions? Contact %s.", contact)
	}

	body := b.String()
	if runes := []rune(body); len(runes) > domain.MaxSMSContent {
		body = string(runes[:domain.MaxSMSContent])
	}
	return body
}

func renderEmail(in Input, dueDate time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", strings.TrimSpace(in.Tenant.Name))
	fmt.Fprintf(&b, "This is a friendly reminder that your rent for %s is due on %s.\n\n",
		periodLabel(in.Period), dueDate.Format(dueDateLayout))
	fmt.Fprintf(&b, "Amount due: %s\n", FormatAmount(in.Tenant.RentAmount, in.Tenant.Currency))
	if unit := unitLabel(in.Tenant); unit != "" {
		fmt.Fprintf(&b, "Unit: %s\n", unit)
	}
	b.WriteString("\n")
	if contact := landlordContact(in.Landlord); contact != "" {
		fmt.Fprintf(&b, "If you have already paid or have any questions, please contact %s.\n\n", contact)
	}
	b.WriteString("Thank you,\n")
	if name := strings.TrimSpace(in.Landlord.Name); name != "" {
		b.WriteString(name)
	} else {
		b.WriteString("Your landlord")
	}
	return b.String()
}

// FormatAmount renders an amount with thousands separators, e.g. "UGX 1,200,000".
func FormatAmount(amount int64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = defaultCurrency
	}
	return amountPrinter.Sprintf("%s %d", currency, amount)
}

func unitLabel(t domain.Tenant) string {
	unit := strings.TrimSpace(t.UnitNumber)
	property := strings.TrimSpace(t.PropertyName)
	switch {
	case unit != "" && property != "":
		return fmt.Sprintf("Unit %s, %s", unit, property)
	case unit != "":
		return "Unit " + unit
	default:
		return property
	}
}

func landlordContact(l domain.Landlord) string {
	name := strings.TrimSpace(l.Name)
	phone := strings.TrimSpace(l.Phone)
	switch {
	case name != "" && phone != "":
		return fmt.Sprintf("%s on %s", name, phone)
	case phone != "":
		return phone
	case name != "":
		if email := strings.TrimSpace(l.Email); email != "" {
			return fmt.Sprintf("%s at %s", name, email)
		}
		return name
	}
	return ""
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

func periodLabel(period string) string {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return period
	}
	return t.Format(periodLayout)
}
