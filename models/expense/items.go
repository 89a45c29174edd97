package expense

import (
	"fmt"

	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/shopspring/decimal"
)

// ResolveItems derives participant shares from itemized lines. A line with no
// assignees is borne by the payer, or by the creator when there is no payer.
// Shares are rounded per user after accumulation, in first-seen order.
//
// When total is not positive it becomes the unrounded sum of the lines, rounded
// once; otherwise the shares must match it within Tolerance.
func ResolveItems(items []types.Item, payerID, creatorID string, total decimal.Decimal) ([]types.Participant, decimal.Decimal, error) {
	fallback := payerID
	if fallback == "" {
		fallback = creatorID
	}

	shares := make(map[string]decimal.Decimal)
	rawSum := decimal.Zero
	var order []string
	credit := func(userID string, amount decimal.Decimal) {
		if _, ok := shares[userID]; !ok {
			order = append(order, userID)
		}
		shares[userID] = shares[userID].Add(amount)
	}

	for _, it := range items {
		if it.Quantity < 0 || it.UnitPrice.IsNegative() {
			return nil, total, fmt.Errorf("%w: item %q", ErrNegativeAmount, it.Name)
		}
		line := it.LineTotal()
		rawSum = rawSum.Add(line)
		if len(it.AssigneeIDs) == 0 {
			credit(fallback, line)
			continue
		}
		per := line.Div(decimal.NewFromInt(int64(len(it.AssigneeIDs))))
		for _, id := range it.AssigneeIDs {
			credit(id, per)
		}
	}

	if len(order) == 0 {
		return nil, total, ErrNoParticipants
	}

	participants := make([]types.Participant, 0, len(order))
	for _, id := range order {
		participants = append(participants, types.Participant{
			UserID: id,
			Amount: round2(shares[id]),
		})
	}

	if !total.IsPositive() {
		total = round2(rawSum)
	}
	if err := ValidateAmounts(total, participants); err != nil {
		return nil, total, err
	}
	return participants, total, nil
}
