// Package messaging renders SMS notification templates over a fixed set of
// driver fields. Rendering is a pure string operation; no ledger behavior
// depends on it.
package messaging

import (
	"strings"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

// Placeholders recognized in message templates, written as {name}.
const (
	FieldDriverName     = "driver_name"
	FieldCurrentBalance = "current_balance"
	FieldLeftToTarget   = "left_to_target"
	FieldDailyTarget    = "daily_target"
	FieldDepositBalance = "deposit_balance"
)

// Render substitutes {placeholder} occurrences in template with the given
// field values. Unknown placeholders are left intact so a malformed template
// is visible in the delivered message rather than silently blanked.
func Render(template string, fields map[string]string) string {
	out := template
	for name, value := range fields {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// DriverFields builds the template field set from a driver record.
func DriverFields(d *domain.Driver) map[string]string {
	return SummaryFields(d.Summarize())
}

// SummaryFields builds the template field set from a driver's summary
// projection. Amounts are formatted with two decimal places.
func SummaryFields(s domain.DriverSummary) map[string]string {
	return map[string]string{
		FieldDriverName:     s.Name,
		FieldCurrentBalance: s.CurrentBalance.StringFixed(2),
		FieldLeftToTarget:   s.LeftToTarget.StringFixed(2),
		FieldDailyTarget:    s.DailyTarget.StringFixed(2),
		FieldDepositBalance: s.DepositBalance.StringFixed(2),
	}
}
