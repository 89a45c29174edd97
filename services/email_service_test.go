package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/NomadCrew/nomad-split-backend/config"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/resend/resend-go/v2"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.SendEmailResponse), args.Error(1)
}

func testEmailConfig() *config.EmailConfig {
	return &config.EmailConfig{
		Enabled:               true,
		FromAddress:           "noreply@split.example.com",
		FromName:              "Nomad Split",
		BreakerMaxFailures:    2,
		BreakerTimeoutSeconds: 60,
	}
}

func newTestEmailService(t *testing.T) (*EmailService, *mockEmailSender) {
	t.Helper()
	resetEmailMetricsForTesting()
	sender := &mockEmailSender{}
	t.Cleanup(func() { sender.AssertExpectations(t) })
	return newEmailService(testEmailConfig(), sender), sender
}

func TestEmailService_SendExpenseAdded(t *testing.T) {
	svc, sender := newTestEmailService(t)

	sender.On("SendWithContext", mock.Anything, mock.MatchedBy(func(p *resend.SendEmailRequest) bool {
		return p.From == "Nomad Split <noreply@split.example.com>" &&
			len(p.To) == 1 && p.To[0] == "bob@example.com" &&
			p.Subject == `Alice added you to "Dinner"` &&
			strings.Contains(p.Html, "20.00 EUR") &&
			strings.Contains(p.Html, "in Lisbon")
	})).Return(&resend.SendEmailResponse{Id: "em_1"}, nil).Once()

	err := svc.SendExpenseAdded(context.Background(), "bob@example.com", ExpenseEmailData{
		RecipientName: "Bob",
		ActorName:     "Alice",
		Description:   "Dinner",
		GroupName:     "Lisbon",
		Share:         "20.00 EUR",
		Total:         "60.00 EUR",
	})
	require.NoError(t, err)
}

func TestEmailService_EscapesUserContent(t *testing.T) {
	svc, sender := newTestEmailService(t)

	sender.On("SendWithContext", mock.Anything, mock.MatchedBy(func(p *resend.SendEmailRequest) bool {
		return !strings.Contains(p.Html, "<script>") && strings.Contains(p.Html, "&lt;script&gt;")
	})).Return(&resend.SendEmailResponse{}, nil).Once()

	err := svc.SendPaymentReminder(context.Background(), "bob@example.com", PaymentReminderData{
		RecipientName:  "Bob",
		PayerName:      "Alice",
		Description:    "<script>alert(1)</script>",
		Share:          "10.00 USD",
		PaymentMethods: []string{"venmo: @alice"},
	})
	require.NoError(t, err)
}

func TestEmailService_Disabled(t *testing.T) {
	resetEmailMetricsForTesting()
	cfg := testEmailConfig()
	cfg.Enabled = false
	svc := NewEmailService(cfg)

	assert.False(t, svc.Enabled())
	assert.ErrorIs(t, svc.SendExpenseAdded(context.Background(), "bob@example.com", ExpenseEmailData{}), errEmailDisabled)
}

func TestEmailService_CircuitOpensAfterFailures(t *testing.T) {
	svc, sender := newTestEmailService(t)
	sender.On("SendWithContext", mock.Anything, mock.Anything).Return(nil, errors.New("502 bad gateway")).Twice()

	data := ExpenseEmailData{ActorName: "Alice", Description: "Taxi"}
	for i := 0; i < 2; i++ {
		err := svc.SendExpenseAdded(context.Background(), "bob@example.com", data)
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	// The provider is not called again while the breaker is open.
	err := svc.SendExpenseAdded(context.Background(), "bob@example.com", data)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, gobreaker.StateOpen, svc.breaker.State())
}
