package postgres

import (
	"strings"
	"testing"

	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionCols = []string{
	"id", "description", "total_amount", "currency", "payer_id", "group_id", "category",
	"split_method", "participants", "items", "status", "approvals", "receipt", "notes", "tags",
	"location", "recurring", "settled_at", "created_by", "created_at", "updated_at",
}

func transactionRow(rows *pgxmock.Rows, id, groupID string) *pgxmock.Rows {
	return rows.AddRow(id, "Dinner", "90.00", "USD", "u1", groupID, "food", "equal",
		[]byte(`[{"userId":"u1","amount":"30.00","paid":true},{"userId":"u2","amount":"30.00","paid":false},{"userId":"u3","amount":"30.00","paid":false}]`),
		[]byte(`[]`), "pending", []byte(`[]`), nil, "", []string{"friday"},
		[]byte(`{"name":"Tasca"}`), nil, nil, "u1", fixedTime, fixedTime)
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestTransactionStore_GetByID(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("FROM transactions WHERE id = \\$1").
		WithArgs("t1").
		WillReturnRows(transactionRow(pgxmock.NewRows(transactionCols), "t1", "g1"))

	tx, err := NewTransactionStore(mock).GetByID(t.Context(), "t1")
	require.NoError(t, err)
	require.NotNil(t, tx.GroupID)
	assert.Equal(t, "g1", *tx.GroupID)
	assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(90)))
	require.Len(t, tx.Participants, 3)
	assert.True(t, tx.Participants[0].Paid)
	assert.Nil(t, tx.Receipt)
	assert.Nil(t, tx.Recurring)
	require.NotNil(t, tx.Location)
	assert.Equal(t, "Tasca", tx.Location.Name)
	assert.Equal(t, []string{"friday"}, tx.Tags)
	assert.True(t, tx.RemainingAmount().Equal(decimal.NewFromInt(60)))
}

func TestTransactionStore_GetByID_Direct(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("FROM transactions WHERE id = \\$1").
		WithArgs("t2").
		WillReturnRows(transactionRow(pgxmock.NewRows(transactionCols), "t2", ""))

	tx, err := NewTransactionStore(mock).GetByID(t.Context(), "t2")
	require.NoError(t, err)
	assert.Nil(t, tx.GroupID)
}

func TestTransactionStore_CreateAndUpdate(t *testing.T) {
	groupID := "g1"
	tx := &types.Transaction{
		ID:          "t1",
		Description: "Dinner",
		TotalAmount: decimal.NewFromInt(90),
		Currency:    "USD",
		PayerID:     "u1",
		GroupID:     &groupID,
		Category:    types.CategoryFood,
		SplitMethod: types.SplitMethodEqual,
		Participants: []types.Participant{
			{UserID: "u1", Amount: decimal.NewFromInt(45)},
			{UserID: "u2", Amount: decimal.NewFromInt(45)},
		},
		Status:    types.TransactionStatusPending,
		CreatedBy: "u1",
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
	}

	t.Run("create", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("INSERT INTO transactions").
			WithArgs(anyArgs(21)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		assert.NoError(t, NewTransactionStore(mock).Create(t.Context(), tx))
	})

	t.Run("update missing row", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("UPDATE transactions").
			WithArgs(anyArgs(17)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		assert.ErrorIs(t, NewTransactionStore(mock).Update(t.Context(), tx), store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("DELETE FROM transactions WHERE id = \\$1").
			WithArgs("t1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		assert.NoError(t, NewTransactionStore(mock).Delete(t.Context(), "t1"))
	})
}

func TestFilterClause(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		where, args := filterClause(types.TransactionFilter{})
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("visibility reuses one placeholder", func(t *testing.T) {
		where, args := filterClause(types.TransactionFilter{
			VisibleTo: "u1",
			GroupID:   "g1",
			Status:    types.TransactionStatusPending,
		})
		assert.Equal(t, []any{"u1", "g1", "pending"}, args)
		assert.Contains(t, where, "payer_id = $1 OR created_by = $1 OR participants @>")
		assert.Contains(t, where, "group_id = $2")
		assert.Contains(t, where, "status = $3")
		assert.Equal(t, 2, strings.Count(where, " AND "))
	})
}

func TestTransactionStore_List(t *testing.T) {
	mock := newMock(t)
	filter := types.TransactionFilter{GroupID: "g1", Page: 2, Limit: 1}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM transactions WHERE group_id = \\$1").
		WithArgs("g1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("ORDER BY created_at DESC OFFSET \\$2 LIMIT \\$3").
		WithArgs("g1", 1, 1).
		WillReturnRows(transactionRow(pgxmock.NewRows(transactionCols), "t1", "g1"))

	txs, total, err := NewTransactionStore(mock).List(t.Context(), filter)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, txs, 1)
}

func TestTransactionStore_ListForBalance(t *testing.T) {
	t.Run("group scope", func(t *testing.T) {
		mock := newMock(t)
		groupID := "g1"
		mock.ExpectQuery("status <> 'cancelled' (.+) AND group_id = \\$2").
			WithArgs("u2", "g1").
			WillReturnRows(transactionRow(pgxmock.NewRows(transactionCols), "t1", "g1"))

		txs, err := NewTransactionStore(mock).ListForBalance(t.Context(), "u2", &groupID)
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})

	t.Run("direct scope", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("AND group_id IS NULL").
			WithArgs("u2").
			WillReturnRows(pgxmock.NewRows(transactionCols))

		txs, err := NewTransactionStore(mock).ListForBalance(t.Context(), "u2", nil)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})
}

func TestTransactionStore_Aggregates(t *testing.T) {
	t.Run("group totals", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("FILTER \\(WHERE status = 'settled'\\)").
			WithArgs("g1").
			WillReturnRows(pgxmock.NewRows([]string{"total", "settled", "count"}).AddRow("150.25", "50.00", 3))

		totals, err := NewTransactionStore(mock).GroupTotals(t.Context(), "g1")
		require.NoError(t, err)
		assert.True(t, totals.Total.Equal(decimal.RequireFromString("150.25")))
		assert.True(t, totals.Settled.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, 3, totals.Count)
	})

	t.Run("unsettled for one user", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("status IN \\('pending', 'approved'\\) AND \\(payer_id = \\$2").
			WithArgs("g1", "u2").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

		n, err := NewTransactionStore(mock).CountUnsettled(t.Context(), "g1", "u2")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("recent", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("WHERE group_id = \\$1 ORDER BY created_at DESC LIMIT \\$2").
			WithArgs("g1", 5).
			WillReturnRows(transactionRow(pgxmock.NewRows(transactionCols), "t1", "g1"))

		txs, err := NewTransactionStore(mock).ListRecentByGroup(t.Context(), "g1", 5)
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})
}
