package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func TestComputeBudgetStatus(t *testing.T) {
	tests := []struct {
		name       string
		totalSpent decimal.Decimal
		budget     decimal.NullDecimal
		wantPct    string
		wantAlerts []string
	}{
		{
			name:       "no budget set",
			totalSpent: dec("500"),
			budget:     decimal.NullDecimal{},
			wantPct:    "0",
			wantAlerts: []string{},
		},
		{
			name:       "zero budget treated as unset",
			totalSpent: dec("500"),
			budget:     nullDec("0"),
			wantPct:    "0",
			wantAlerts: []string{},
		},
		{
			name:       "below every threshold",
			totalSpent: dec("499.99"),
			budget:     nullDec("1000"),
			wantPct:    "49.999",
			wantAlerts: []string{},
		},
		{
			name:       "half the budget used",
			totalSpent: dec("500"),
			budget:     nullDec("1000"),
			wantPct:    "50",
			wantAlerts: []string{"50% of budget used"},
		},
		{
			name:       "nearing the limit emits exactly one alert",
			totalSpent: dec("850"),
			budget:     nullDec("1000"),
			wantPct:    "85",
			wantAlerts: []string{"80% of budget used - nearing limit"},
		},
		{
			name:       "budget exceeded",
			totalSpent: dec("1200"),
			budget:     nullDec("1000"),
			wantPct:    "120",
			wantAlerts: []string{"Budget exceeded by 20.0%"},
		},
		{
			name:       "exactly on the budget counts as exceeded by zero",
			totalSpent: dec("1000"),
			budget:     nullDec("1000"),
			wantPct:    "100",
			wantAlerts: []string{"Budget exceeded by 0.0%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBudgetStatus(tt.totalSpent, tt.budget)

			if !got.PercentageUsed.Equal(dec(tt.wantPct)) {
				t.Errorf("PercentageUsed = %s, want %s", got.PercentageUsed, tt.wantPct)
			}
			if len(got.Alerts) != len(tt.wantAlerts) {
				t.Fatalf("Alerts = %v, want %v", got.Alerts, tt.wantAlerts)
			}
			for i, alert := range got.Alerts {
				if alert != tt.wantAlerts[i] {
					t.Errorf("alert %d = %q, want %q", i, alert, tt.wantAlerts[i])
				}
			}
			if !got.TotalSpent.Equal(tt.totalSpent) {
				t.Errorf("TotalSpent = %s, want %s", got.TotalSpent, tt.totalSpent)
			}
		})
	}
}
