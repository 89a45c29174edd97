package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/types"
	"go.uber.org/zap"
)

// expenseMailer sends the expense emails. *EmailService implements it.
type expenseMailer interface {
	Enabled() bool
	SendExpenseAdded(ctx context.Context, to string, data ExpenseEmailData) error
	SendPaymentReminder(ctx context.Context, to string, data PaymentReminderData) error
}

// ExpenseNotifier emails participants about expenses. Delivery runs on the
// worker pool, so callers never wait on the mail provider; each recipient's
// notification preferences decide whether they get mail at all.
type ExpenseNotifier struct {
	users       store.UserStore
	groups      store.GroupStore
	mailer      expenseMailer
	pool        *WorkerPool
	frontendURL string
	log         *zap.SugaredLogger
}

func NewExpenseNotifier(st store.Store, mailer expenseMailer, pool *WorkerPool, frontendURL string) *ExpenseNotifier {
	return &ExpenseNotifier{
		users:       st.Users(),
		groups:      st.Groups(),
		mailer:      mailer,
		pool:        pool,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         logger.GetLogger().Named("expense-notifier"),
	}
}

// ExpenseAdded tells recipients that actorID put them on tx.
func (n *ExpenseNotifier) ExpenseAdded(_ context.Context, tx *types.Transaction, actorID string, recipientIDs []string) {
	if !n.mailer.Enabled() || len(recipientIDs) == 0 {
		return
	}
	snapshot := *tx
	recipients := append([]string(nil), recipientIDs...)
	n.pool.Submit(Job{
		Name: "expense-added:" + tx.ID,
		Execute: func(ctx context.Context) error {
			return n.sendExpenseAdded(ctx, &snapshot, actorID, recipients)
		},
	})
}

// PaymentRequested reminds recipients to pay the payer of tx back.
func (n *ExpenseNotifier) PaymentRequested(_ context.Context, tx *types.Transaction, recipientIDs []string) {
	if !n.mailer.Enabled() || len(recipientIDs) == 0 {
		return
	}
	snapshot := *tx
	recipients := append([]string(nil), recipientIDs...)
	n.pool.Submit(Job{
		Name: "payment-reminder:" + tx.ID,
		Execute: func(ctx context.Context) error {
			return n.sendPaymentReminders(ctx, &snapshot, recipients)
		},
	})
}

func (n *ExpenseNotifier) loadUsers(ctx context.Context, ids []string) (map[string]*types.User, error) {
	users, err := n.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipients: %w", err)
	}
	byID := make(map[string]*types.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (n *ExpenseNotifier) expenseURL(tx *types.Transaction) string {
	if n.frontendURL == "" {
		return ""
	}
	return n.frontendURL + "/transactions/" + tx.ID
}

func formatAmount(tx *types.Transaction, userID string) string {
	p := tx.Participant(userID)
	if p == nil {
		return ""
	}
	return p.Amount.StringFixed(2) + " " + tx.Currency
}

func (n *ExpenseNotifier) sendExpenseAdded(ctx context.Context, tx *types.Transaction, actorID string, recipientIDs []string) error {
	users, err := n.loadUsers(ctx, append([]string{actorID}, recipientIDs...))
	if err != nil {
		return err
	}

	actorName := "Someone"
	if actor, ok := users[actorID]; ok {
		actorName = actor.Name
	}
	var groupName string
	if tx.GroupID != nil {
		if g, err := n.groups.GetByID(ctx, *tx.GroupID); err == nil {
			groupName = g.Name
		}
	}

	var errs []error
	for _, id := range recipientIDs {
		u, ok := users[id]
		if !ok || u.Email == "" {
			continue
		}
		prefs := u.Preferences.Notifications
		if !prefs.Email || !prefs.ExpenseAdded {
			continue
		}
		err := n.mailer.SendExpenseAdded(ctx, u.Email, ExpenseEmailData{
			RecipientName: u.Name,
			ActorName:     actorName,
			Description:   tx.Description,
			GroupName:     groupName,
			Share:         formatAmount(tx, id),
			Total:         tx.TotalAmount.StringFixed(2) + " " + tx.Currency,
			ExpenseURL:    n.expenseURL(tx),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (n *ExpenseNotifier) sendPaymentReminders(ctx context.Context, tx *types.Transaction, recipientIDs []string) error {
	users, err := n.loadUsers(ctx, append([]string{tx.PayerID}, recipientIDs...))
	if err != nil {
		return err
	}

	payerName := "the payer"
	var methods []string
	if payer, ok := users[tx.PayerID]; ok {
		payerName = payer.Name
		for _, m := range payer.PaymentMethods {
			methods = append(methods, fmt.Sprintf("%s: %s", m.Type, m.Handle))
		}
	}

	var errs []error
	for _, id := range recipientIDs {
		u, ok := users[id]
		if !ok || u.Email == "" {
			continue
		}
		prefs := u.Preferences.Notifications
		if !prefs.Email || !prefs.PaymentReminder {
			continue
		}
		err := n.mailer.SendPaymentReminder(ctx, u.Email, PaymentReminderData{
			RecipientName:  u.Name,
			PayerName:      payerName,
			Description:    tx.Description,
			Share:          formatAmount(tx, id),
			PaymentMethods: methods,
			ExpenseURL:     n.expenseURL(tx),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
