package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/jackc/pgx/v5"
)

// Ensure TransactionStore implements store.TransactionStore interface.
var _ store.TransactionStore = (*TransactionStore)(nil)

const transactionColumns = `
	id::text, description, total_amount::text, currency, payer_id::text,
	COALESCE(group_id::text, ''), category, split_method, participants, items, status,
	approvals, receipt, notes, tags, location, recurring, settled_at,
	created_by::text, created_at, updated_at`

// participantMatch is true when the user holding the given placeholder owes a share.
// It is served by the GIN index on participants.
const participantMatch = `participants @> jsonb_build_array(jsonb_build_object('userId', %s::text))`

type TransactionStore struct {
	db DBTX
}

func NewTransactionStore(db DBTX) *TransactionStore {
	return &TransactionStore{db: db}
}

func scanTransaction(row pgx.Row) (*types.Transaction, error) {
	var (
		t            types.Transaction
		groupID      string
		participants []byte
		items        []byte
		approvals    []byte
		receipt      []byte
		location     []byte
		recurring    []byte
	)
	err := row.Scan(
		&t.ID,
		&t.Description,
		&t.TotalAmount,
		&t.Currency,
		&t.PayerID,
		&groupID,
		&t.Category,
		&t.SplitMethod,
		&participants,
		&items,
		&t.Status,
		&approvals,
		&receipt,
		&t.Notes,
		&t.Tags,
		&location,
		&recurring,
		&t.SettledAt,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if groupID != "" {
		t.GroupID = &groupID
	}

	decoders := []struct {
		name string
		data []byte
		dst  any
	}{
		{"participants", participants, &t.Participants},
		{"items", items, &t.Items},
		{"approvals", approvals, &t.Approvals},
		{"receipt", receipt, &t.Receipt},
		{"location", location, &t.Location},
		{"recurring", recurring, &t.Recurring},
	}
	for _, d := range decoders {
		if err := decodeJSON(d.data, d.dst); err != nil {
			return nil, fmt.Errorf("failed to decode transaction %s: %w", d.name, err)
		}
	}
	if t.Participants == nil {
		t.Participants = []types.Participant{}
	}
	if t.Approvals == nil {
		t.Approvals = []types.Approval{}
	}
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]*types.Transaction, error) {
	defer rows.Close()

	txs := []*types.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// transactionArgs encodes the JSONB columns of t.
type transactionArgs struct {
	participants []byte
	items        []byte
	approvals    []byte
	receipt      []byte
	location     []byte
	recurring    []byte
	tags         []string
}

func encodeTransaction(t *types.Transaction) (*transactionArgs, error) {
	var (
		a   transactionArgs
		err error
	)
	participants := t.Participants
	if participants == nil {
		participants = []types.Participant{}
	}
	if a.participants, err = json.Marshal(participants); err != nil {
		return nil, err
	}
	items := t.Items
	if items == nil {
		items = []types.Item{}
	}
	if a.items, err = json.Marshal(items); err != nil {
		return nil, err
	}
	approvals := t.Approvals
	if approvals == nil {
		approvals = []types.Approval{}
	}
	if a.approvals, err = json.Marshal(approvals); err != nil {
		return nil, err
	}
	if a.receipt, err = nullableJSON(t.Receipt); err != nil {
		return nil, err
	}
	if a.location, err = nullableJSON(t.Location); err != nil {
		return nil, err
	}
	if a.recurring, err = nullableJSON(t.Recurring); err != nil {
		return nil, err
	}
	a.tags = t.Tags
	if a.tags == nil {
		a.tags = []string{}
	}
	return &a, nil
}

func (s *TransactionStore) Create(ctx context.Context, t *types.Transaction) error {
	a, err := encodeTransaction(t)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO transactions (
			id, description, total_amount, currency, payer_id, group_id, category, split_method,
			participants, items, status, approvals, receipt, notes, tags, location, recurring,
			settled_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		t.ID,
		t.Description,
		t.TotalAmount,
		t.Currency,
		t.PayerID,
		t.GroupID,
		t.Category,
		t.SplitMethod,
		a.participants,
		a.items,
		t.Status,
		a.approvals,
		a.receipt,
		t.Notes,
		a.tags,
		a.location,
		a.recurring,
		t.SettledAt,
		t.CreatedBy,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return mapError(err)
}

func (s *TransactionStore) GetByID(ctx context.Context, id string) (*types.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (s *TransactionStore) Update(ctx context.Context, t *types.Transaction) error {
	a, err := encodeTransaction(t)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE transactions
		SET description = $2, total_amount = $3, currency = $4, category = $5, split_method = $6,
		    participants = $7, items = $8, status = $9, approvals = $10, receipt = $11, notes = $12,
		    tags = $13, location = $14, recurring = $15, settled_at = $16, updated_at = $17
		WHERE id = $1`,
		t.ID,
		t.Description,
		t.TotalAmount,
		t.Currency,
		t.Category,
		t.SplitMethod,
		a.participants,
		a.items,
		t.Status,
		a.approvals,
		a.receipt,
		t.Notes,
		a.tags,
		a.location,
		a.recurring,
		t.SettledAt,
		t.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *TransactionStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// filterClause builds the WHERE clause of a listing and its positional args.
func filterClause(f types.TransactionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.VisibleTo != "" {
		p := next(f.VisibleTo)
		conds = append(conds, fmt.Sprintf("(payer_id = %s OR created_by = %s OR "+participantMatch+")", p, p, p))
	}
	if f.GroupID != "" {
		conds = append(conds, "group_id = "+next(f.GroupID))
	}
	if f.PayerID != "" {
		conds = append(conds, "payer_id = "+next(f.PayerID))
	}
	if f.ParticipantID != "" {
		conds = append(conds, fmt.Sprintf(participantMatch, next(f.ParticipantID)))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+next(string(f.Status)))
	}
	if f.Category != "" {
		conds = append(conds, "category = "+next(string(f.Category)))
	}
	if f.StartDate != nil {
		conds = append(conds, "created_at >= "+next(*f.StartDate))
	}
	if f.EndDate != nil {
		conds = append(conds, "created_at <= "+next(*f.EndDate))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *TransactionStore) List(ctx context.Context, f types.TransactionFilter) ([]*types.Transaction, int, error) {
	where, args := filterClause(f)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
		args = append(args, f.Offset(), f.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	txs, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (s *TransactionStore) ListForBalance(ctx context.Context, userID string, groupID *string) ([]*types.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status <> 'cancelled'
		  AND (payer_id = $1 OR ` + fmt.Sprintf(participantMatch, "$1") + `)`
	args := []any{userID}
	if groupID != nil {
		query += ` AND group_id = $2`
		args = append(args, *groupID)
	} else {
		query += ` AND group_id IS NULL`
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance transactions: %w", err)
	}
	return collectTransactions(rows)
}

func (s *TransactionStore) ListRecentByGroup(ctx context.Context, groupID string, limit int) ([]*types.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE group_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.Query(ctx, query, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	return collectTransactions(rows)
}

func (s *TransactionStore) GroupTotals(ctx context.Context, groupID string) (store.GroupTotals, error) {
	var totals store.GroupTotals
	err := s.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total_amount) FILTER (WHERE status <> 'cancelled'), 0)::text,
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'settled'), 0)::text,
			COUNT(*) FILTER (WHERE status <> 'cancelled')
		FROM transactions
		WHERE group_id = $1`, groupID).Scan(&totals.Total, &totals.Settled, &totals.Count)
	if err != nil {
		return store.GroupTotals{}, fmt.Errorf("failed to compute group totals: %w", err)
	}
	return totals, nil
}

func (s *TransactionStore) CountUnsettled(ctx context.Context, groupID, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE group_id = $1 AND status IN ('pending', 'approved')`
	args := []any{groupID}
	if userID != "" {
		query += ` AND (payer_id = $2 OR ` + fmt.Sprintf(participantMatch, "$2") + `)`
		args = append(args, userID)
	}

	var n int
	if err := s.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unsettled transactions: %w", err)
	}
	return n, nil
}
