package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name      string
		amount    decimal.Decimal
		policy    SplitPolicy
		inputs    map[int]SplitInput
		memberIDs []int
		wantErr   error
		want      map[int]string
	}{
		{
			name:   "equal split among all selected",
			amount: dec("200"),
			policy: SplitEqual,
			inputs: map[int]SplitInput{
				1: {Selected: true},
				2: {Selected: true},
			},
			memberIDs: []int{1, 2},
			want:      map[int]string{1: "100", 2: "100"},
		},
		{
			name:   "equal split skips unselected members entirely",
			amount: dec("90"),
			policy: SplitEqual,
			inputs: map[int]SplitInput{
				1: {Selected: true},
				2: {Selected: true},
				3: {Selected: false},
			},
			memberIDs: []int{1, 2, 3},
			want:      map[int]string{1: "45", 2: "45"},
		},
		{
			name:      "equal split with nobody selected fails",
			amount:    dec("50"),
			policy:    SplitEqual,
			inputs:    map[int]SplitInput{},
			memberIDs: []int{1, 2},
			wantErr:   ErrInvalidSplit,
		},
		{
			name:   "unequal split gives every member an entry",
			amount: dec("100"),
			policy: SplitUnequal,
			inputs: map[int]SplitInput{
				1: {Value: dec("70")},
				2: {Value: dec("30")},
			},
			memberIDs: []int{1, 2, 3},
			want:      map[int]string{1: "70", 2: "30", 3: "0"},
		},
		{
			name:   "percentage split",
			amount: dec("200"),
			policy: SplitPercentage,
			inputs: map[int]SplitInput{
				1: {Value: dec("50")},
				2: {Value: dec("30")},
				3: {Value: dec("20")},
			},
			memberIDs: []int{1, 2, 3},
			want:      map[int]string{1: "100", 2: "60", 3: "40"},
		},
		{
			name:   "shares split",
			amount: dec("100"),
			policy: SplitShares,
			inputs: map[int]SplitInput{
				1: {Value: dec("2")},
				2: {Value: dec("1")},
				3: {Value: dec("1")},
			},
			memberIDs: []int{1, 2, 3},
			want:      map[int]string{1: "50", 2: "25", 3: "25"},
		},
		{
			name:      "shares split with zero total produces no splits",
			amount:    dec("100"),
			policy:    SplitShares,
			inputs:    map[int]SplitInput{1: {Value: dec("0")}},
			memberIDs: []int{1, 2},
			want:      map[int]string{},
		},
		{
			name:      "unknown policy fails",
			amount:    dec("10"),
			policy:    SplitPolicy("Random"),
			inputs:    map[int]SplitInput{},
			memberIDs: []int{1},
			wantErr:   ErrInvalidSplit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.amount, tt.policy, tt.inputs, tt.memberIDs)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Allocate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Allocate() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Allocate() produced %d splits, want %d", len(got), len(tt.want))
			}
			for id, wantStr := range tt.want {
				owed, ok := got[id]
				if !ok {
					t.Errorf("member %d missing from allocation", id)
					continue
				}
				if !owed.Equal(dec(wantStr)) {
					t.Errorf("member %d owes %s, want %s", id, owed, wantStr)
				}
			}
		})
	}
}

func TestAllocateConservation(t *testing.T) {
	// Equal and Percentage splits must add back up to the expense amount.
	tests := []struct {
		name      string
		amount    decimal.Decimal
		policy    SplitPolicy
		inputs    map[int]SplitInput
		memberIDs []int
	}{
		{
			name:   "equal split with awkward division",
			amount: dec("100"),
			policy: SplitEqual,
			inputs: map[int]SplitInput{
				1: {Selected: true}, 2: {Selected: true}, 3: {Selected: true},
			},
			memberIDs: []int{1, 2, 3},
		},
		{
			name:   "percentage split with fractional percentages",
			amount: dec("149.99"),
			policy: SplitPercentage,
			inputs: map[int]SplitInput{
				1: {Value: dec("33.33")},
				2: {Value: dec("33.33")},
				3: {Value: dec("33.34")},
			},
			memberIDs: []int{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.amount, tt.policy, tt.inputs, tt.memberIDs)
			if err != nil {
				t.Fatalf("Allocate() unexpected error: %v", err)
			}
			total := decimal.Zero
			for _, owed := range got {
				total = total.Add(owed)
			}
			if total.Sub(tt.amount).Abs().GreaterThan(dec("0.01")) {
				t.Errorf("splits add up to %s, want %s within 0.01", total, tt.amount)
			}
		})
	}
}

func TestValidateUnequalTotal(t *testing.T) {
	inputs := map[int]SplitInput{
		1: {Value: dec("60")},
		2: {Value: dec("40.05")},
	}
	if err := ValidateUnequalTotal(dec("100"), inputs); err != nil {
		t.Errorf("total within tolerance rejected: %v", err)
	}
	if err := ValidateUnequalTotal(dec("101"), inputs); !errors.Is(err, ErrInvalidSplit) {
		t.Errorf("total outside tolerance accepted, err = %v", err)
	}
	// Exactly 0.1 off is still acceptable.
	if err := ValidateUnequalTotal(dec("100.15"), inputs); err != nil {
		t.Errorf("total exactly at tolerance rejected: %v", err)
	}
}

func TestValidatePercentageTotal(t *testing.T) {
	ok := map[int]SplitInput{
		1: {Value: dec("33.33")},
		2: {Value: dec("33.33")},
		3: {Value: dec("33.34")},
	}
	if err := ValidatePercentageTotal(ok); err != nil {
		t.Errorf("valid percentages rejected: %v", err)
	}

	bad := map[int]SplitInput{
		1: {Value: dec("50")},
		2: {Value: dec("40")},
	}
	if err := ValidatePercentageTotal(bad); !errors.Is(err, ErrInvalidSplit) {
		t.Errorf("invalid percentages accepted, err = %v", err)
	}
}
