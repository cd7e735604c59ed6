package messaging

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		fields   map[string]string
		want     string
	}{
		{
			name:     "all placeholders substituted",
			template: "Hi {driver_name}, you are {left_to_target} KSH from your {daily_target} target.",
			fields: map[string]string{
				"driver_name":   "Wanjiku",
				"left_to_target": "1200.00",
				"daily_target":  "3000.00",
			},
			want: "Hi Wanjiku, you are 1200.00 KSH from your 3000.00 target.",
		},
		{
			name:     "unknown placeholder left intact",
			template: "Balance: {current_balance}, code: {promo_code}",
			fields:   map[string]string{"current_balance": "450.00"},
			want:     "Balance: 450.00, code: {promo_code}",
		},
		{
			name:     "no placeholders",
			template: "Karibu!",
			fields:   map[string]string{"driver_name": "Otieno"},
			want:     "Karibu!",
		},
		{
			name:     "repeated placeholder",
			template: "{driver_name} {driver_name}",
			fields:   map[string]string{"driver_name": "Baraka"},
			want:     "Baraka Baraka",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.template, tt.fields))
		})
	}
}

func TestDriverFields(t *testing.T) {
	d := &domain.Driver{
		DriverID:              "drv-1",
		Name:                  "Wanjiku",
		CurrentBalance:        decimal.NewFromInt(1800),
		DailyTarget:           decimal.NewFromInt(3000),
		DepositRequired:       true,
		InitialDepositAmount:  decimal.NewFromInt(5000),
		CurrentDepositBalance: decimal.NewFromInt(3000),
	}

	fields := DriverFields(d)
	assert.Equal(t, "Wanjiku", fields[FieldDriverName])
	assert.Equal(t, "1800.00", fields[FieldCurrentBalance])
	assert.Equal(t, "1200.00", fields[FieldLeftToTarget])
	assert.Equal(t, "3000.00", fields[FieldDailyTarget])
	assert.Equal(t, "3000.00", fields[FieldDepositBalance])
}
