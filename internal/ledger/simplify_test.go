package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSimplify(t *testing.T) {
	tests := []struct {
		name     string
		balances map[int]decimal.Decimal
		want     []Transfer
	}{
		{
			name: "single debtor single creditor",
			balances: map[int]decimal.Decimal{
				1: dec("100"),
				2: dec("-100"),
			},
			want: []Transfer{
				{PayerID: 2, ReceiverID: 1, Amount: dec("100")},
			},
		},
		{
			name: "two equal debtors pay one creditor in id order",
			balances: map[int]decimal.Decimal{
				1: dec("60"),
				2: dec("-30"),
				3: dec("-30"),
			},
			want: []Transfer{
				{PayerID: 2, ReceiverID: 1, Amount: dec("30")},
				{PayerID: 3, ReceiverID: 1, Amount: dec("30")},
			},
		},
		{
			name: "largest debt matched against largest credit first",
			balances: map[int]decimal.Decimal{
				1: dec("70"),
				2: dec("10"),
				3: dec("-50"),
				4: dec("-30"),
			},
			want: []Transfer{
				{PayerID: 3, ReceiverID: 1, Amount: dec("50")},
				{PayerID: 4, ReceiverID: 1, Amount: dec("20")},
				{PayerID: 4, ReceiverID: 2, Amount: dec("10")},
			},
		},
		{
			name: "balances within a cent of zero are already settled",
			balances: map[int]decimal.Decimal{
				1: dec("0.004"),
				2: dec("-0.004"),
			},
			want: nil,
		},
		{
			name:     "empty balances",
			balances: map[int]decimal.Decimal{},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.balances)
			if len(got) != len(tt.want) {
				t.Fatalf("Simplify() = %v, want %v", got, tt.want)
			}
			for i, tr := range got {
				want := tt.want[i]
				if tr.PayerID != want.PayerID || tr.ReceiverID != want.ReceiverID || !tr.Amount.Equal(want.Amount) {
					t.Errorf("transfer %d = (%d -> %d, %s), want (%d -> %d, %s)",
						i, tr.PayerID, tr.ReceiverID, tr.Amount,
						want.PayerID, want.ReceiverID, want.Amount)
				}
			}
		})
	}
}

func TestSimplifyTransactionBound(t *testing.T) {
	balances := map[int]decimal.Decimal{
		1: dec("100.10"),
		2: dec("55.45"),
		3: dec("-20"),
		4: dec("-60.55"),
		5: dec("-25"),
		6: dec("-50"),
	}

	transfers := Simplify(balances)

	debtors, creditors := 0, 0
	for _, bal := range balances {
		if bal.LessThan(dec("-0.01")) {
			debtors++
		} else if bal.GreaterThan(dec("0.01")) {
			creditors++
		}
	}
	if max := debtors + creditors - 1; len(transfers) > max {
		t.Errorf("emitted %d transfers, bound is %d", len(transfers), max)
	}
}

// Applying every suggested transfer back onto the balances must leave
// everyone settled.
func TestSimplifyZeroesBalances(t *testing.T) {
	balances := map[int]decimal.Decimal{
		1: dec("33.33"),
		2: dec("41.67"),
		3: dec("-25"),
		4: dec("-50"),
	}

	remaining := make(map[int]decimal.Decimal, len(balances))
	for id, bal := range balances {
		remaining[id] = bal
	}

	for _, tr := range Simplify(balances) {
		remaining[tr.PayerID] = remaining[tr.PayerID].Add(tr.Amount)
		remaining[tr.ReceiverID] = remaining[tr.ReceiverID].Sub(tr.Amount)
	}

	for id, bal := range remaining {
		if bal.Abs().GreaterThan(dec("0.01")) {
			t.Errorf("member %d left with %s after applying plan", id, bal)
		}
	}
}
