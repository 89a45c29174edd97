package service

import (
	"context"
	"time"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/models/expense"
	"github.com/NomadCrew/nomad-split-backend/models/shared"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// Notifier sends out-of-band notifications about expenses.
type Notifier interface {
	// ExpenseAdded tells recipients that actorID added them to tx.
	ExpenseAdded(ctx context.Context, tx *types.Transaction, actorID string, recipientIDs []string)
	// PaymentRequested reminds recipients to pay their share of an approved tx.
	PaymentRequested(ctx context.Context, tx *types.Transaction, recipientIDs []string)
}

// TransactionService implements the expense operations on top of the store and
// the split, settlement and balance rules.
type TransactionService struct {
	store    store.Store
	balances *expense.BalanceAggregator
	events   *shared.EventEmitter
	notifier Notifier
	receipts ReceiptStorage
	metrics  *metrics
	now      func() time.Time
}

// NewTransactionService creates a transaction service. receipts may be nil when
// receipt uploads are disabled.
func NewTransactionService(st store.Store, publisher types.EventPublisher, notifier Notifier, receipts ReceiptStorage) *TransactionService {
	return &TransactionService{
		store:    st,
		balances: expense.NewBalanceAggregator(st.Transactions(), st.Groups()),
		events:   shared.NewEventEmitter(publisher, "transaction-service"),
		notifier: notifier,
		receipts: receipts,
		metrics:  newMetrics(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateTransaction validates req, computes the participant shares and stores
// the new transaction on behalf of userID.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID string, req *types.CreateTransactionRequest) (*types.Transaction, error) {
	description, err := validateDescription(req.Description)
	if err != nil {
		return nil, err
	}
	notes, err := validateNotes(req.Notes)
	if err != nil {
		return nil, err
	}
	category, err := validateCategory(req.Category)
	if err != nil {
		return nil, err
	}
	currency, err := validateCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	if err := validateRecurring(req.Recurring); err != nil {
		return nil, err
	}
	if req.TotalAmount.IsNegative() {
		return nil, apperrors.ValidationFailed("Total amount cannot be negative", req.TotalAmount.String())
	}

	payerID := req.PayerID
	if payerID == "" {
		payerID = userID
	}

	var group *types.Group
	if req.GroupID != nil && *req.GroupID != "" {
		group, err = s.store.Groups().GetByID(ctx, *req.GroupID)
		if err != nil {
			return nil, shared.FromStore(err, "Group", *req.GroupID)
		}
		if err := shared.RequireMember(group, userID); err != nil {
			return nil, err
		}
		if !group.IsMember(payerID) {
			return nil, apperrors.ValidationFailed("Payer must be a member of the group", payerID)
		}
	}

	method := req.SplitMethod
	if method == "" {
		method = types.SplitMethodEqual
		if group != nil && group.Settings.DefaultSplitMethod.IsValid() {
			method = group.Settings.DefaultSplitMethod
		}
	}

	var (
		participants []types.Participant
		total        = req.TotalAmount
	)
	if len(req.Items) > 0 {
		// Itemized receipts define the shares themselves.
		participants, total, err = expense.ResolveItems(req.Items, payerID, userID, req.TotalAmount)
		if err != nil {
			return nil, splitError(err)
		}
		if !total.IsPositive() {
			return nil, apperrors.ValidationFailed("Total amount must be positive", total.String())
		}
		method = types.SplitMethodExact
	} else {
		if !total.IsPositive() {
			return nil, apperrors.ValidationFailed("Total amount must be positive", total.String())
		}
		inputs, err := toParticipants(req.Participants)
		if err != nil {
			return nil, err
		}
		if len(inputs) == 0 && group != nil && method == types.SplitMethodEqual {
			for _, id := range group.MemberIDs() {
				inputs = append(inputs, types.Participant{UserID: id})
			}
		}
		participants, err = expense.CalculateSplit(total, method, inputs)
		if err != nil {
			return nil, splitError(err)
		}
	}

	if err := s.checkParticipants(ctx, group, payerID, participants); err != nil {
		return nil, err
	}

	now := s.now()
	tx := &types.Transaction{
		ID:           uuid.NewString(),
		Description:  description,
		TotalAmount:  total,
		Currency:     currency,
		PayerID:      payerID,
		Category:     category,
		SplitMethod:  method,
		Participants: participants,
		Items:        req.Items,
		Status:       types.TransactionStatusPending,
		Approvals:    []types.Approval{},
		Notes:        notes,
		Tags:         normalizeTags(req.Tags),
		Location:     req.Location,
		Recurring:    req.Recurring,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if group != nil {
		tx.GroupID = &group.ID
	}

	if err := s.store.Transactions().Create(ctx, tx); err != nil {
		return nil, shared.FromStore(err, "Transaction", tx.ID)
	}

	s.metrics.transactions.WithLabelValues(string(method)).Inc()
	s.refreshGroup(ctx, tx.GroupID)
	s.emit(ctx, types.EventTypeTransactionCreated, tx, userID, "")

	if s.notifier != nil {
		var recipients []string
		for _, id := range tx.ParticipantIDs() {
			if id != userID {
				recipients = append(recipients, id)
			}
		}
		if len(recipients) > 0 {
			s.notifier.ExpenseAdded(ctx, tx, userID, recipients)
		}
	}

	logger.GetLogger().Infow("Transaction created",
		"transactionID", tx.ID,
		"groupID", tx.GroupID,
		"method", method,
		"participants", len(participants))
	return tx, nil
}

// checkParticipants makes sure every share belongs to a group member, or for
// direct expenses to an existing user.
func (s *TransactionService) checkParticipants(ctx context.Context, group *types.Group, payerID string, participants []types.Participant) error {
	if group != nil {
		for _, p := range participants {
			if !group.IsMember(p.UserID) {
				return apperrors.ValidationFailed("Participants must be members of the group", p.UserID)
			}
		}
		return nil
	}

	ids := []string{payerID}
	for _, p := range participants {
		if p.UserID != payerID {
			ids = append(ids, p.UserID)
		}
	}
	users, err := s.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return shared.FromStore(err, "User", "")
	}
	found := make(map[string]bool, len(users))
	for _, u := range users {
		found[u.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return apperrors.ValidationFailed("Unknown participant", id)
		}
	}
	return nil
}

// ListTransactions returns one page of transactions visible to userID. With a
// group filter the caller must belong to the group and sees all of its records.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string, filter types.TransactionFilter) (*types.TransactionPage, error) {
	filter.Page, filter.Limit = shared.Page(filter.Page, filter.Limit, defaultPageSize, maxPageSize)

	if filter.GroupID != "" {
		group, err := s.store.Groups().GetByID(ctx, filter.GroupID)
		if err != nil {
			return nil, shared.FromStore(err, "Group", filter.GroupID)
		}
		if err := shared.RequireMember(group, userID); err != nil {
			return nil, err
		}
		filter.VisibleTo = ""
	} else {
		filter.VisibleTo = userID
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperrors.ValidationFailed("Invalid status filter", string(filter.Status))
	}
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, apperrors.ValidationFailed("Invalid category filter", string(filter.Category))
	}

	txs, total, err := s.store.Transactions().List(ctx, filter)
	if err != nil {
		return nil, shared.FromStore(err, "Transaction", "")
	}
	for _, tx := range txs {
		s.signReceipt(ctx, tx)
	}

	return &types.TransactionPage{
		Total:        total,
		Page:         filter.Page,
		Pages:        types.PageCount(total, filter.Limit),
		Transactions: txs,
	}, nil
}

// GetTransaction returns a transaction to anyone involved in it or any member of its group.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, id string) (*types.Transaction, error) {
	tx, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireVisible(ctx, tx, userID); err != nil {
		return nil, err
	}
	s.signReceipt(ctx, tx)
	return tx, nil
}

// UpdateTransaction applies a partial update. Only the creator or the payer may
// change a transaction, and cancelled transactions are frozen.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id string, req *types.UpdateTransactionRequest) (*types.Transaction, error) {
	tx, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(tx, userID); err != nil {
		return nil, err
	}
	if tx.Status == types.TransactionStatusCancelled {
		return nil, apperrors.ValidationFailed("Cancelled transactions cannot be changed", tx.ID)
	}

	if req.Description != nil {
		if tx.Description, err = validateDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		if tx.Notes, err = validateNotes(*req.Notes); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		if tx.Category, err = validateCategory(*req.Category); err != nil {
			return nil, err
		}
	}
	if req.Currency != nil {
		if tx.Currency, err = validateCurrency(*req.Currency); err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		tx.Tags = normalizeTags(req.Tags)
	}
	if req.Location != nil {
		tx.Location = req.Location
	}
	if req.Recurring != nil {
		if err := validateRecurring(req.Recurring); err != nil {
			return nil, err
		}
		tx.Recurring = req.Recurring
	}
	if req.Receipt != nil {
		tx.Receipt = mergeReceipt(tx.Receipt, req.Receipt)
	}

	if req.RecomputesSplit() {
		if err := s.recomputeSplit(ctx, tx, req); err != nil {
			return nil, err
		}
	}

	if req.Status != nil && *req.Status != tx.Status {
		if *req.Status != types.TransactionStatusCancelled {
			return nil, apperrors.ValidationFailed("Only cancellation can be requested directly",
				"status follows payments and approvals")
		}
		tx.Status = types.TransactionStatusCancelled
	}

	tx.UpdatedAt = s.now()
	if err := s.store.Transactions().Update(ctx, tx); err != nil {
		return nil, shared.FromStore(err, "Transaction", tx.ID)
	}

	s.refreshGroup(ctx, tx.GroupID)
	s.emit(ctx, types.EventTypeTransactionUpdated, tx, userID, "")
	s.signReceipt(ctx, tx)
	return tx, nil
}

// recomputeSplit re-runs the split with the patched amount, method and
// participants. Paid flags survive for participants that stay on the expense
// and the settlement status follows the new set.
func (s *TransactionService) recomputeSplit(ctx context.Context, tx *types.Transaction, req *types.UpdateTransactionRequest) error {
	total := tx.TotalAmount
	if req.TotalAmount != nil {
		if !req.TotalAmount.IsPositive() {
			return apperrors.ValidationFailed("Total amount must be positive", req.TotalAmount.String())
		}
		total = *req.TotalAmount
	}
	method := tx.SplitMethod
	if req.SplitMethod != nil {
		method = *req.SplitMethod
	}

	inputs := make([]types.Participant, len(tx.Participants))
	copy(inputs, tx.Participants)
	if req.Participants != nil {
		var err error
		if inputs, err = toParticipants(req.Participants); err != nil {
			return err
		}
	}

	participants, err := expense.CalculateSplit(total, method, inputs)
	if err != nil {
		return splitError(err)
	}

	var group *types.Group
	if tx.GroupID != nil {
		if group, err = s.store.Groups().GetByID(ctx, *tx.GroupID); err != nil {
			return shared.FromStore(err, "Group", *tx.GroupID)
		}
	}
	if err := s.checkParticipants(ctx, group, tx.PayerID, participants); err != nil {
		return err
	}

	for i := range participants {
		if prev := tx.Participant(participants[i].UserID); prev != nil {
			participants[i].Paid = prev.Paid
			participants[i].PaidAt = prev.PaidAt
		}
	}

	tx.TotalAmount = total
	tx.SplitMethod = method
	tx.Participants = participants
	// Explicit shares replace any itemization.
	tx.Items = nil
	expense.SyncSettlement(tx, s.now())
	return nil
}

// DeleteTransaction removes a transaction for good. Only the creator or the payer may delete it.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id string) error {
	tx, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(tx, userID); err != nil {
		return err
	}

	if err := s.store.Transactions().Delete(ctx, id); err != nil {
		return shared.FromStore(err, "Transaction", id)
	}

	if tx.Receipt != nil && tx.Receipt.ObjectKey != "" && s.receipts != nil {
		if err := s.receipts.Delete(ctx, tx.Receipt.ObjectKey); err != nil {
			logger.GetLogger().Warnw("Failed to delete receipt object", "key", tx.Receipt.ObjectKey, "error", err)
		}
	}

	s.refreshGroup(ctx, tx.GroupID)
	s.emit(ctx, types.EventTypeTransactionDeleted, tx, userID, "")
	return nil
}

// GetUserGroupBalance returns the caller's balance within a group they belong to.
func (s *TransactionService) GetUserGroupBalance(ctx context.Context, userID, groupID string) (types.GroupBalance, error) {
	group, err := s.store.Groups().GetByID(ctx, groupID)
	if err != nil {
		return types.GroupBalance{}, shared.FromStore(err, "Group", groupID)
	}
	if err := shared.RequireMember(group, userID); err != nil {
		return types.GroupBalance{}, err
	}

	b, err := s.balances.UserGroupBalance(ctx, userID, groupID)
	if err != nil {
		return types.GroupBalance{}, apperrors.NewDatabaseError(err)
	}
	b.GroupName = group.Name
	return b, nil
}

// GetUserBalances returns the caller's balances across all groups and direct expenses.
func (s *TransactionService) GetUserBalances(ctx context.Context, userID string) (*types.UserBalances, error) {
	balances, err := s.balances.UserOverallSummary(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return balances, nil
}

func (s *TransactionService) load(ctx context.Context, id string) (*types.Transaction, error) {
	tx, err := s.store.Transactions().GetByID(ctx, id)
	if err != nil {
		return nil, shared.FromStore(err, "Transaction", id)
	}
	return tx, nil
}

func (s *TransactionService) requireVisible(ctx context.Context, tx *types.Transaction, userID string) error {
	if tx.Involves(userID) {
		return nil
	}
	if tx.GroupID != nil {
		group, err := s.store.Groups().GetByID(ctx, *tx.GroupID)
		if err == nil && group.IsMember(userID) {
			return nil
		}
	}
	return apperrors.Forbidden("You do not have access to this transaction", tx.ID)
}

func requireOwner(tx *types.Transaction, userID string) error {
	if tx.CreatedBy != userID && tx.PayerID != userID {
		return apperrors.Forbidden("Only the creator or payer can change this transaction", tx.ID)
	}
	return nil
}

// refreshGroup recomputes the derived totals of groupID. Totals are derived
// data, so a failure is logged rather than returned.
func (s *TransactionService) refreshGroup(ctx context.Context, groupID *string) {
	if groupID == nil {
		return
	}
	log := logger.GetLogger()
	totals, err := s.store.Transactions().GroupTotals(ctx, *groupID)
	if err != nil {
		log.Warnw("Failed to compute group totals", "groupID", *groupID, "error", err)
		return
	}
	if err := s.store.Groups().UpdateTotals(ctx, *groupID, totals, s.now()); err != nil {
		log.Warnw("Failed to update group totals", "groupID", *groupID, "error", err)
	}
}

func (s *TransactionService) emit(ctx context.Context, eventType types.EventType, tx *types.Transaction, actorID, participantID string) {
	groupID := ""
	if tx.GroupID != nil {
		groupID = *tx.GroupID
	}
	s.events.Emit(ctx, eventType, groupID, actorID, types.TransactionEventPayload{
		TransactionID: tx.ID,
		Description:   tx.Description,
		Amount:        tx.TotalAmount.StringFixed(2),
		Currency:      tx.Currency,
		Status:        tx.Status,
		ActorID:       actorID,
		ParticipantID: participantID,
	})
}

func mergeReceipt(current, patch *types.Receipt) *types.Receipt {
	if current == nil {
		current = &types.Receipt{}
	}
	merged := *current
	if patch.ScannedData != nil {
		merged.ScannedData = patch.ScannedData
	}
	if patch.ImageURL != "" && merged.ObjectKey == "" {
		merged.ImageURL = patch.ImageURL
	}
	return &merged
}
