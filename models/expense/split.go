// Package expense holds the split, settlement and balance rules for shared
// expenses. Nothing here touches storage; callers load and persist records.
package expense

import (
	"fmt"

	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/shopspring/decimal"
)

var (
	// Tolerance is the largest accepted gap between a sum and its target.
	Tolerance = decimal.New(1, -2)

	hundred = decimal.NewFromInt(100)
)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// SumAmounts adds up participant amounts.
func SumAmounts(participants []types.Participant) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range participants {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// CalculateSplit returns a copy of participants with amounts derived from total
// and method. The input slice is not modified.
func CalculateSplit(total decimal.Decimal, method types.SplitMethod, participants []types.Participant) ([]types.Participant, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if err := checkUnique(participants); err != nil {
		return nil, err
	}

	out := make([]types.Participant, len(participants))
	copy(out, participants)

	switch method {
	case types.SplitMethodEqual:
		splitEqual(total, out)
	case types.SplitMethodExact:
		for _, p := range out {
			if p.Amount.IsNegative() {
				return nil, fmt.Errorf("%w: %s", ErrNegativeAmount, p.UserID)
			}
		}
	case types.SplitMethodPercentage:
		if err := splitPercentage(total, out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitMethod, method)
	}

	if err := ValidateAmounts(total, out); err != nil {
		return nil, err
	}
	return out, nil
}

// splitEqual gives everyone the rounded share and puts the rounding dust on
// the first participant.
func splitEqual(total decimal.Decimal, participants []types.Participant) {
	n := decimal.NewFromInt(int64(len(participants)))
	share := round2(total.Div(n))

	sum := decimal.Zero
	for i := range participants {
		participants[i].Amount = share
		participants[i].Percentage = nil
		sum = sum.Add(share)
	}

	if diff := round2(total.Sub(sum)); !diff.IsZero() {
		participants[0].Amount = participants[0].Amount.Add(diff)
	}
}

// splitPercentage converts percentages into amounts. Residual cents are left
// as they fall.
func splitPercentage(total decimal.Decimal, participants []types.Participant) error {
	sumPct := decimal.Zero
	for _, p := range participants {
		pct := decimal.Zero
		if p.Percentage != nil {
			pct = *p.Percentage
		}
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s has %s%%", ErrInvalidPercentage, p.UserID, pct.String())
		}
		sumPct = sumPct.Add(pct)
	}
	if !withinTolerance(sumPct, hundred) {
		return fmt.Errorf("%w: got %s", ErrInvalidPercentage, sumPct.String())
	}

	for i := range participants {
		pct := decimal.Zero
		if participants[i].Percentage != nil {
			pct = *participants[i].Percentage
		}
		participants[i].Amount = round2(total.Mul(pct).Div(hundred))
	}
	return nil
}

// ValidateAmounts checks that participant amounts add up to total within Tolerance.
func ValidateAmounts(total decimal.Decimal, participants []types.Participant) error {
	sum := SumAmounts(participants)
	if !withinTolerance(sum, total) {
		return fmt.Errorf("%w: participants %s, total %s", ErrAmountMismatch, sum.String(), total.String())
	}
	return nil
}

func checkUnique(participants []types.Participant) error {
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, ok := seen[p.UserID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.UserID)
		}
		seen[p.UserID] = struct{}{}
	}
	return nil
}
