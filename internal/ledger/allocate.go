package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitPolicy selects how an expense amount is divided among group members.
type SplitPolicy string

const (
	SplitEqual      SplitPolicy = "Equal"
	SplitUnequal    SplitPolicy = "Unequal"
	SplitPercentage SplitPolicy = "Percentage"
	SplitShares     SplitPolicy = "Shares"
)

// SplitInput is the per-member input for one allocation. Equal splits read
// Selected; the other policies read Value (an amount, a percentage or a
// share count depending on the policy).
type SplitInput struct {
	Selected bool            `json:"selected,omitempty"`
	Value    decimal.Decimal `json:"value,omitempty"`
}

var (
	hundred = decimal.NewFromInt(100)

	// splitTolerance is the caller-level tolerance when checking that
	// Unequal amounts or Percentage inputs add up to their target.
	splitTolerance = decimal.New(1, -1) // 0.1
)

// Allocate divides an expense amount among the group's members under the
// given policy and returns the owed amount per member id.
//
// Equal allocates only to selected members; unselected members get no entry
// at all. The other policies produce an entry for every member of the group,
// zero-valued where no input was supplied. Allocate is pure: persisting the
// result (and discarding any previous splits on edit) is the caller's job.
func Allocate(amount decimal.Decimal, policy SplitPolicy, inputs map[int]SplitInput, memberIDs []int) (map[int]decimal.Decimal, error) {
	switch policy {
	case SplitEqual:
		return allocateEqual(amount, inputs, memberIDs)
	case SplitUnequal:
		return allocateUnequal(inputs, memberIDs), nil
	case SplitPercentage:
		return allocatePercentage(amount, inputs, memberIDs), nil
	case SplitShares:
		return allocateShares(amount, inputs, memberIDs), nil
	default:
		return nil, fmt.Errorf("%w: unknown split policy %q", ErrInvalidSplit, policy)
	}
}

func allocateEqual(amount decimal.Decimal, inputs map[int]SplitInput, memberIDs []int) (map[int]decimal.Decimal, error) {
	var selected []int
	for _, id := range memberIDs {
		if inputs[id].Selected {
			selected = append(selected, id)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: equal split needs at least one selected member", ErrInvalidSplit)
	}

	share := amount.Div(decimal.NewFromInt(int64(len(selected))))
	owed := make(map[int]decimal.Decimal, len(selected))
	for _, id := range selected {
		owed[id] = share
	}
	return owed, nil
}

func allocateUnequal(inputs map[int]SplitInput, memberIDs []int) map[int]decimal.Decimal {
	owed := make(map[int]decimal.Decimal, len(memberIDs))
	for _, id := range memberIDs {
		owed[id] = inputs[id].Value
	}
	return owed
}

func allocatePercentage(amount decimal.Decimal, inputs map[int]SplitInput, memberIDs []int) map[int]decimal.Decimal {
	owed := make(map[int]decimal.Decimal, len(memberIDs))
	for _, id := range memberIDs {
		owed[id] = inputs[id].Value.Div(hundred).Mul(amount)
	}
	return owed
}

func allocateShares(amount decimal.Decimal, inputs map[int]SplitInput, memberIDs []int) map[int]decimal.Decimal {
	totalShares := decimal.Zero
	for _, id := range memberIDs {
		totalShares = totalShares.Add(inputs[id].Value)
	}

	owed := make(map[int]decimal.Decimal)
	if totalShares.IsZero() {
		// Zero total shares produces no splits rather than an error,
		// matching the historical behavior callers rely on.
		return owed
	}

	costPerShare := amount.Div(totalShares)
	for _, id := range memberIDs {
		owed[id] = inputs[id].Value.Mul(costPerShare)
	}
	return owed
}

// ValidateUnequalTotal checks that the supplied per-member amounts add up to
// the expense amount within the 0.1 tolerance. Callers run this before
// Allocate; the allocator itself does not re-validate.
func ValidateUnequalTotal(amount decimal.Decimal, inputs map[int]SplitInput) error {
	total := decimal.Zero
	for _, in := range inputs {
		total = total.Add(in.Value)
	}
	if total.Sub(amount).Abs().GreaterThan(splitTolerance) {
		return fmt.Errorf("%w: amounts add up to %s, expected %s", ErrInvalidSplit, total, amount)
	}
	return nil
}

// ValidatePercentageTotal checks that the supplied percentages add up to 100
// within the 0.1 tolerance.
func ValidatePercentageTotal(inputs map[int]SplitInput) error {
	total := decimal.Zero
	for _, in := range inputs {
		total = total.Add(in.Value)
	}
	if total.Sub(hundred).Abs().GreaterThan(splitTolerance) {
		return fmt.Errorf("%w: percentages add up to %s, expected 100", ErrInvalidSplit, total)
	}
	return nil
}
