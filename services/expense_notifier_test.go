package services

import (
	"context"
	"errors"
	"testing"

	"github.com/NomadCrew/nomad-split-backend/config"
	"github.com/NomadCrew/nomad-split-backend/internal/store/mocks"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMailer struct {
	mock.Mock
	enabled bool
}

func (m *mockMailer) Enabled() bool { return m.enabled }

func (m *mockMailer) SendExpenseAdded(ctx context.Context, to string, data ExpenseEmailData) error {
	return m.Called(ctx, to, data).Error(0)
}

func (m *mockMailer) SendPaymentReminder(ctx context.Context, to string, data PaymentReminderData) error {
	return m.Called(ctx, to, data).Error(0)
}

type notifierFixture struct {
	notifier *ExpenseNotifier
	store    *mocks.Store
	mailer   *mockMailer
	pool     *WorkerPool
}

func newNotifierFixture(t *testing.T, enabled bool) *notifierFixture {
	t.Helper()
	resetWorkerPoolMetricsForTesting()
	f := &notifierFixture{
		store:  mocks.NewStore(),
		mailer: &mockMailer{enabled: enabled},
		pool:   NewWorkerPool(config.WorkerPoolConfig{MaxWorkers: 1, QueueSize: 10}),
	}
	f.pool.Start()
	f.notifier = NewExpenseNotifier(f.store, f.mailer, f.pool, "https://split.example.com/")
	return f
}

// drain waits for every submitted job, then checks the expectations.
func (f *notifierFixture) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, f.pool.Shutdown(context.Background()))
	f.store.AssertAll(t)
	f.mailer.AssertExpectations(t)
}

func withPrefs(u *types.User, email, expenseAdded, reminder bool) *types.User {
	u.Preferences = types.DefaultUserPreferences()
	u.Preferences.Notifications.Email = email
	u.Preferences.Notifications.ExpenseAdded = expenseAdded
	u.Preferences.Notifications.PaymentReminder = reminder
	return u
}

func groupExpense() *types.Transaction {
	groupID := "g1"
	return &types.Transaction{
		ID:          "tx-1",
		Description: "Dinner",
		TotalAmount: decimal.NewFromInt(60),
		Currency:    "EUR",
		PayerID:     "alice",
		GroupID:     &groupID,
		Participants: []types.Participant{
			{UserID: "alice", Amount: decimal.NewFromInt(20)},
			{UserID: "bob", Amount: decimal.NewFromInt(20)},
			{UserID: "carol", Amount: decimal.NewFromInt(20)},
		},
	}
}

func TestExpenseNotifier_ExpenseAddedRespectsPreferences(t *testing.T) {
	f := newNotifierFixture(t, true)

	f.store.UserStore.On("GetByIDs", mock.Anything, []string{"alice", "bob", "carol"}).Return([]*types.User{
		withPrefs(&types.User{ID: "alice", Name: "Alice", Email: "alice@example.com"}, true, true, true),
		withPrefs(&types.User{ID: "bob", Name: "Bob", Email: "bob@example.com"}, true, true, true),
		withPrefs(&types.User{ID: "carol", Name: "Carol", Email: "carol@example.com"}, true, false, true),
	}, nil).Once()
	f.store.GroupStore.On("GetByID", mock.Anything, "g1").Return(&types.Group{ID: "g1", Name: "Lisbon"}, nil).Once()
	f.mailer.On("SendExpenseAdded", mock.Anything, "bob@example.com", ExpenseEmailData{
		RecipientName: "Bob",
		ActorName:     "Alice",
		Description:   "Dinner",
		GroupName:     "Lisbon",
		Share:         "20.00 EUR",
		Total:         "60.00 EUR",
		ExpenseURL:    "https://split.example.com/transactions/tx-1",
	}).Return(nil).Once()

	f.notifier.ExpenseAdded(context.Background(), groupExpense(), "alice", []string{"bob", "carol"})
	f.drain(t)
}

func TestExpenseNotifier_PaymentReminderListsPayerMethods(t *testing.T) {
	f := newNotifierFixture(t, true)

	alice := withPrefs(&types.User{ID: "alice", Name: "Alice", Email: "alice@example.com"}, true, true, true)
	alice.PaymentMethods = []types.PaymentMethod{{Type: types.PaymentMethodVenmo, Handle: "@alice", IsDefault: true}}
	f.store.UserStore.On("GetByIDs", mock.Anything, []string{"alice", "bob", "carol"}).Return([]*types.User{
		alice,
		withPrefs(&types.User{ID: "bob", Name: "Bob", Email: "bob@example.com"}, true, true, true),
		withPrefs(&types.User{ID: "carol", Name: "Carol", Email: "carol@example.com"}, false, true, true),
	}, nil).Once()
	f.mailer.On("SendPaymentReminder", mock.Anything, "bob@example.com", mock.MatchedBy(func(d PaymentReminderData) bool {
		return d.PayerName == "Alice" && d.Share == "20.00 EUR" &&
			len(d.PaymentMethods) == 1 && d.PaymentMethods[0] == "venmo: @alice"
	})).Return(errors.New("provider down")).Once()

	f.notifier.PaymentRequested(context.Background(), groupExpense(), []string{"bob", "carol"})
	f.drain(t)
}

func TestExpenseNotifier_DisabledMailerSkipsWork(t *testing.T) {
	f := newNotifierFixture(t, false)

	f.notifier.ExpenseAdded(context.Background(), groupExpense(), "alice", []string{"bob"})
	f.notifier.PaymentRequested(context.Background(), groupExpense(), []string{"bob"})
	assert.Equal(t, 0, f.pool.QueueDepth())
	f.drain(t)
}
