package types

import "github.com/shopspring/decimal"

// GroupBalance is a user's position within one group. A positive balance means
// the others owe the user.
type GroupBalance struct {
	UserID    string          `json:"userId"`
	GroupID   string          `json:"groupId,omitempty"`
	GroupName string          `json:"groupName,omitempty"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
	TotalOwed decimal.Decimal `json:"totalOwed"`
	Balance   decimal.Decimal `json:"balance"`
}

// DirectBalanceKey identifies the bucket of transactions that belong to no group.
const DirectBalanceKey = "direct"

type BalanceSummary struct {
	TotalOwedToMe decimal.Decimal `json:"totalOwedToMe"`
	TotalIOwe     decimal.Decimal `json:"totalIOwe"`
	NetBalance    decimal.Decimal `json:"netBalance"`
}

// UserBalances is the overall position of a user across groups and direct expenses.
type UserBalances struct {
	Summary       BalanceSummary `json:"summary"`
	GroupBalances []GroupBalance `json:"groupBalances"`
	Direct        GroupBalance   `json:"direct"`
}
