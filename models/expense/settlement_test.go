package expense

import (
	"errors"
	"testing"
	"time"

	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransaction(status types.TransactionStatus, ids ...string) *types.Transaction {
	return &types.Transaction{
		ID:           "tx-1",
		TotalAmount:  dec("30"),
		PayerID:      ids[0],
		Participants: people(ids...),
		Status:       status,
	}
}

func TestMarkParticipantPaid_SettlesAndReverts(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tx := newTransaction(types.TransactionStatusApproved, "a", "b")

	require.NoError(t, MarkParticipantPaid(tx, "a", true, now))
	assert.Equal(t, types.TransactionStatusApproved, tx.Status)
	assert.Nil(t, tx.SettledAt)
	require.NotNil(t, tx.Participants[0].PaidAt)

	require.NoError(t, MarkParticipantPaid(tx, "b", true, now))
	assert.Equal(t, types.TransactionStatusSettled, tx.Status)
	require.NotNil(t, tx.SettledAt)
	assert.Equal(t, now, *tx.SettledAt)

	require.NoError(t, MarkParticipantPaid(tx, "a", false, now.Add(time.Hour)))
	assert.Equal(t, types.TransactionStatusApproved, tx.Status)
	assert.Nil(t, tx.SettledAt)
	assert.False(t, tx.Participants[0].Paid)
	assert.Nil(t, tx.Participants[0].PaidAt)
}

func TestMarkParticipantPaid_PendingSettlesDirectly(t *testing.T) {
	tx := newTransaction(types.TransactionStatusPending, "a")
	require.NoError(t, MarkParticipantPaid(tx, "a", true, time.Now()))
	assert.Equal(t, types.TransactionStatusSettled, tx.Status)
}

func TestMarkParticipantPaid_UnknownParticipant(t *testing.T) {
	tx := newTransaction(types.TransactionStatusPending, "a", "b")
	err := MarkParticipantPaid(tx, "stranger", true, time.Now())
	assert.True(t, errors.Is(err, ErrParticipantNotFound))
}

func TestMarkParticipantPaid_CancelledKeepsStatus(t *testing.T) {
	tx := newTransaction(types.TransactionStatusCancelled, "a")
	require.NoError(t, MarkParticipantPaid(tx, "a", true, time.Now()))
	assert.Equal(t, types.TransactionStatusCancelled, tx.Status)
	assert.Nil(t, tx.SettledAt)
	assert.True(t, tx.Participants[0].Paid)
}

func TestSyncSettlement_FollowsParticipantSet(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	settled := newTransaction(types.TransactionStatusSettled, "a", "b")
	settled.Participants[0].Paid = true
	settled.SettledAt = &now
	SyncSettlement(settled, now)
	assert.Equal(t, types.TransactionStatusApproved, settled.Status)
	assert.Nil(t, settled.SettledAt)

	approved := newTransaction(types.TransactionStatusApproved, "a")
	approved.Participants[0].Paid = true
	SyncSettlement(approved, now)
	assert.Equal(t, types.TransactionStatusSettled, approved.Status)
	require.NotNil(t, approved.SettledAt)
	assert.Equal(t, now, *approved.SettledAt)

	cancelled := newTransaction(types.TransactionStatusCancelled, "a")
	cancelled.Participants[0].Paid = true
	SyncSettlement(cancelled, now)
	assert.Equal(t, types.TransactionStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.SettledAt)
}

func TestAddApproval_AllApproveThenDecline(t *testing.T) {
	now := time.Now()
	tx := newTransaction(types.TransactionStatusPending, "a", "b", "c")

	AddApproval(tx, "a", true, "", now)
	AddApproval(tx, "b", true, "", now)
	assert.Equal(t, types.TransactionStatusPending, tx.Status)

	AddApproval(tx, "c", true, "looks right", now)
	assert.Equal(t, types.TransactionStatusApproved, tx.Status)

	AddApproval(tx, "b", false, "changed my mind", now)
	assert.Equal(t, types.TransactionStatusApproved, tx.Status)
	assert.Len(t, tx.Approvals, 3)
}

func TestAddApproval_LastVoteWins(t *testing.T) {
	now := time.Now()
	tx := newTransaction(types.TransactionStatusPending, "a", "b")

	AddApproval(tx, "a", true, "", now)
	AddApproval(tx, "a", true, "", now)
	require.Len(t, tx.Approvals, 1)
	assert.Equal(t, "a", tx.Approvals[0].UserID)

	AddApproval(tx, "b", false, "wrong amount", now)
	AddApproval(tx, "b", true, "", now)
	assert.Len(t, tx.Approvals, 2)
	assert.Equal(t, types.TransactionStatusApproved, tx.Status)
}

func TestAddApproval_NonParticipantVoteDoesNotCount(t *testing.T) {
	tx := newTransaction(types.TransactionStatusPending, "a", "b")

	AddApproval(tx, "a", true, "", time.Now())
	AddApproval(tx, "outsider", true, "", time.Now())
	assert.Equal(t, types.TransactionStatusPending, tx.Status)
}

func TestAddApproval_DoesNotTouchSettled(t *testing.T) {
	tx := newTransaction(types.TransactionStatusSettled, "a")
	AddApproval(tx, "a", true, "", time.Now())
	assert.Equal(t, types.TransactionStatusSettled, tx.Status)
}
