package expense

import (
	"context"
	"fmt"

	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/shopspring/decimal"
)

// TransactionLister loads the non-cancelled transactions in which a user is payer
// or participant. A nil groupID selects direct transactions that have no group.
type TransactionLister interface {
	ListForBalance(ctx context.Context, userID string, groupID *string) ([]*types.Transaction, error)
}

// GroupLister lists the groups a user belongs to. A non-positive limit returns all.
type GroupLister interface {
	ListByMember(ctx context.Context, userID string, offset, limit int) ([]*types.Group, int, error)
}

// ComputeBalance folds txs into the balance of userID for groupID. Records that
// are cancelled, belong elsewhere or do not involve the user are skipped, so the
// caller may pass a superset.
func ComputeBalance(userID string, groupID *string, txs []*types.Transaction) types.GroupBalance {
	b := types.GroupBalance{
		UserID:    userID,
		TotalPaid: decimal.Zero,
		TotalOwed: decimal.Zero,
	}
	if groupID != nil {
		b.GroupID = *groupID
	}

	for _, t := range txs {
		if t == nil || t.Status == types.TransactionStatusCancelled || !sameGroup(t.GroupID, groupID) {
			continue
		}
		if t.PayerID == userID {
			b.TotalPaid = b.TotalPaid.Add(t.TotalAmount)
		}
		if p := t.Participant(userID); p != nil {
			b.TotalOwed = b.TotalOwed.Add(p.Amount)
		}
	}

	b.Balance = b.TotalPaid.Sub(b.TotalOwed)
	return b
}

func sameGroup(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Summarize nets per-group and direct balances. Positive and negative balances
// are totalled separately, so a user can be owed in one group while owing in another.
func Summarize(balances ...types.GroupBalance) types.BalanceSummary {
	s := types.BalanceSummary{
		TotalOwedToMe: decimal.Zero,
		TotalIOwe:     decimal.Zero,
		NetBalance:    decimal.Zero,
	}
	for _, b := range balances {
		s.NetBalance = s.NetBalance.Add(b.Balance)
		switch {
		case b.Balance.IsPositive():
			s.TotalOwedToMe = s.TotalOwedToMe.Add(b.Balance)
		case b.Balance.IsNegative():
			s.TotalIOwe = s.TotalIOwe.Add(b.Balance.Abs())
		}
	}
	return s
}

// BalanceAggregator computes balances on read from stored transactions.
type BalanceAggregator struct {
	transactions TransactionLister
	groups       GroupLister
}

func NewBalanceAggregator(transactions TransactionLister, groups GroupLister) *BalanceAggregator {
	return &BalanceAggregator{transactions: transactions, groups: groups}
}

// UserGroupBalance returns the balance of userID in groupID. No records yields zeros.
func (a *BalanceAggregator) UserGroupBalance(ctx context.Context, userID, groupID string) (types.GroupBalance, error) {
	txs, err := a.transactions.ListForBalance(ctx, userID, &groupID)
	if err != nil {
		return types.GroupBalance{}, fmt.Errorf("failed to load group transactions: %w", err)
	}
	return ComputeBalance(userID, &groupID, txs), nil
}

// DirectBalance returns the balance of userID across transactions with no group.
func (a *BalanceAggregator) DirectBalance(ctx context.Context, userID string) (types.GroupBalance, error) {
	txs, err := a.transactions.ListForBalance(ctx, userID, nil)
	if err != nil {
		return types.GroupBalance{}, fmt.Errorf("failed to load direct transactions: %w", err)
	}
	b := ComputeBalance(userID, nil, txs)
	b.GroupID = types.DirectBalanceKey
	return b, nil
}

// UserOverallSummary aggregates every group of the user plus direct expenses.
func (a *BalanceAggregator) UserOverallSummary(ctx context.Context, userID string) (*types.UserBalances, error) {
	groups, _, err := a.groups.ListByMember(ctx, userID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load user groups: %w", err)
	}

	groupBalances := make([]types.GroupBalance, 0, len(groups))
	for _, g := range groups {
		b, err := a.UserGroupBalance(ctx, userID, g.ID)
		if err != nil {
			return nil, err
		}
		b.GroupName = g.Name
		groupBalances = append(groupBalances, b)
	}

	direct, err := a.DirectBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	all := append(append([]types.GroupBalance(nil), groupBalances...), direct)
	return &types.UserBalances{
		Summary:       Summarize(all...),
		GroupBalances: groupBalances,
		Direct:        direct,
	}, nil
}
