package expense

import (
	"time"

	"github.com/NomadCrew/nomad-split-backend/types"
)

// MarkParticipantPaid records a payment flag and re-derives the settlement
// status with SyncSettlement.
func MarkParticipantPaid(t *types.Transaction, userID string, paid bool, now time.Time) error {
	p := t.Participant(userID)
	if p == nil {
		return ErrParticipantNotFound
	}

	p.Paid = paid
	if paid {
		paidAt := now
		p.PaidAt = &paidAt
	} else {
		p.PaidAt = nil
	}

	SyncSettlement(t, now)
	return nil
}

// SyncSettlement derives the status from the paid flags: everyone paid settles
// the transaction, anyone unpaid on a settled one drops it back to approved.
// A cancelled transaction keeps its status.
func SyncSettlement(t *types.Transaction, now time.Time) {
	if t.Status == types.TransactionStatusCancelled {
		return
	}

	allPaid := true
	for _, part := range t.Participants {
		if !part.Paid {
			allPaid = false
			break
		}
	}

	switch {
	case allPaid && t.Status != types.TransactionStatusSettled:
		settledAt := now
		t.Status = types.TransactionStatusSettled
		t.SettledAt = &settledAt
	case !allPaid && t.Status == types.TransactionStatusSettled:
		t.Status = types.TransactionStatusApproved
		t.SettledAt = nil
	}
}

// AddApproval records userID's vote, replacing any earlier one. A pending
// transaction becomes approved once every participant has an approving vote.
// Declines never move the status back.
func AddApproval(t *types.Transaction, userID string, approved bool, comment string, now time.Time) {
	kept := t.Approvals[:0]
	for _, a := range t.Approvals {
		if a.UserID != userID {
			kept = append(kept, a)
		}
	}
	t.Approvals = append(kept, types.Approval{
		UserID:     userID,
		Approved:   approved,
		Comment:    comment,
		ApprovedAt: now,
	})

	if !approved || t.Status != types.TransactionStatusPending {
		return
	}

	votes := make(map[string]bool, len(t.Approvals))
	for _, a := range t.Approvals {
		votes[a.UserID] = a.Approved
	}
	for _, p := range t.Participants {
		if !votes[p.UserID] {
			return
		}
	}
	t.Status = types.TransactionStatusApproved
}
