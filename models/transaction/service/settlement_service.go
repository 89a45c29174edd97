package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/models/expense"
	"github.com/NomadCrew/nomad-split-backend/models/shared"
	"github.com/NomadCrew/nomad-split-backend/types"
)

// MarkParticipantPaid flips the paid flag of targetUserID. The participant
// themselves or the payer may record it. An empty target means the caller.
func (s *TransactionService) MarkParticipantPaid(ctx context.Context, userID, id, targetUserID string, paid bool) (*types.Transaction, error) {
	if targetUserID == "" {
		targetUserID = userID
	}

	tx, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != targetUserID && userID != tx.PayerID {
		return nil, apperrors.Forbidden("Only the participant or the payer can record this payment", targetUserID)
	}

	previous := tx.Status
	if err := expense.MarkParticipantPaid(tx, targetUserID, paid, s.now()); err != nil {
		return nil, splitError(err)
	}

	tx.UpdatedAt = s.now()
	if err := s.store.Transactions().Update(ctx, tx); err != nil {
		return nil, shared.FromStore(err, "Transaction", tx.ID)
	}

	s.refreshGroup(ctx, tx.GroupID)
	s.emit(ctx, types.EventTypeTransactionPaid, tx, userID, targetUserID)
	if tx.Status == types.TransactionStatusSettled && previous != types.TransactionStatusSettled {
		s.metrics.settlements.Inc()
		s.emit(ctx, types.EventTypeTransactionSettled, tx, userID, "")
	}

	logger.GetLogger().Infow("Participant payment recorded",
		"transactionID", tx.ID,
		"participantID", targetUserID,
		"paid", paid,
		"status", tx.Status)
	s.signReceipt(ctx, tx)
	return tx, nil
}

// AddApproval records the caller's vote. Only participants may vote.
func (s *TransactionService) AddApproval(ctx context.Context, userID, id string, approved bool, comment string) (*types.Transaction, error) {
	if utf8.RuneCountInString(comment) > maxNotesLength {
		return nil, apperrors.ValidationFailed("Comment is too long", fmt.Sprintf("at most %d characters", maxNotesLength))
	}

	tx, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tx.IsParticipant(userID) {
		return nil, apperrors.Forbidden("Only participants can approve this transaction", tx.ID)
	}
	if tx.Status == types.TransactionStatusCancelled {
		return nil, apperrors.ValidationFailed("Cancelled transactions cannot be approved", tx.ID)
	}

	previous := tx.Status
	expense.AddApproval(tx, userID, approved, comment, s.now())

	tx.UpdatedAt = s.now()
	if err := s.store.Transactions().Update(ctx, tx); err != nil {
		return nil, shared.FromStore(err, "Transaction", tx.ID)
	}

	if tx.Status != previous {
		s.emit(ctx, types.EventTypeTransactionApproved, tx, userID, "")
		if s.notifier != nil {
			var unpaid []string
			for _, p := range tx.Participants {
				if !p.Paid && p.UserID != tx.PayerID {
					unpaid = append(unpaid, p.UserID)
				}
			}
			if len(unpaid) > 0 {
				s.notifier.PaymentRequested(ctx, tx, unpaid)
			}
		}
	}
	s.signReceipt(ctx, tx)
	return tx, nil
}
