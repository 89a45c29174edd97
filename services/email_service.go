package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/NomadCrew/nomad-split-backend/config"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/resend/resend-go/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// emailSender is the part of the Resend client used here.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ExpenseEmailData fills the "expense added" email.
type ExpenseEmailData struct {
	RecipientName string
	ActorName     string
	Description   string
	GroupName     string
	Share         string
	Total         string
	ExpenseURL    string
}

// PaymentReminderData fills the payment reminder email.
type PaymentReminderData struct {
	RecipientName  string
	PayerName      string
	Description    string
	Share          string
	PaymentMethods []string
	ExpenseURL     string
}

type emailMetrics struct {
	sendLatency  prometheus.Histogram
	errorCount   prometheus.Counter
	sentCount    prometheus.Counter
	breakerState prometheus.Gauge
}

var (
	emailMetricsInstance *emailMetrics
	emailMetricsOnce     sync.Once
	emailRegistry        = prometheus.DefaultRegisterer
)

func newEmailMetrics() *emailMetrics {
	emailMetricsOnce.Do(func() {
		factory := promauto.With(emailRegistry)
		emailMetricsInstance = &emailMetrics{
			sendLatency: factory.NewHistogram(prometheus.HistogramOpts{
				Name:    "split_email_send_duration_seconds",
				Help:    "Time taken to send emails",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
			}),
			errorCount: factory.NewCounter(prometheus.CounterOpts{
				Name: "split_email_errors_total",
				Help: "Total number of email sending errors",
			}),
			sentCount: factory.NewCounter(prometheus.CounterOpts{
				Name: "split_emails_sent_total",
				Help: "Total number of emails sent",
			}),
			breakerState: factory.NewGauge(prometheus.GaugeOpts{
				Name: "split_email_circuit_state",
				Help: "State of the email circuit breaker (0 closed, 1 half-open, 2 open)",
			}),
		}
	})
	return emailMetricsInstance
}

func resetEmailMetricsForTesting() {
	emailRegistry = prometheus.NewRegistry()
	emailMetricsInstance = nil
	emailMetricsOnce = sync.Once{}
}

var (
	expenseAddedTmpl    = template.Must(template.New("expense-added").Parse(expenseAddedTemplate))
	paymentReminderTmpl = template.Must(template.New("payment-reminder").Parse(paymentReminderTemplate))
)

// EmailService delivers transactional email through Resend. Sends go through
// a circuit breaker so an outage fails fast instead of tying up workers.
type EmailService struct {
	config  *config.EmailConfig
	sender  emailSender
	breaker *gobreaker.CircuitBreaker
	metrics *emailMetrics
	log     *zap.SugaredLogger
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	var sender emailSender
	if cfg.Enabled {
		sender = resend.NewClient(cfg.ResendAPIKey).Emails
	}
	return newEmailService(cfg, sender)
}

func newEmailService(cfg *config.EmailConfig, sender emailSender) *EmailService {
	log := logger.GetLogger().Named("email")
	metrics := newEmailMetrics()

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := time.Duration(cfg.BreakerTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "resend",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("Email circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			metrics.breakerState.Set(float64(to))
		},
	})

	if cfg.Enabled {
		log.Infow("Initializing email service", "from", logger.MaskEmail(cfg.FromAddress))
	} else {
		log.Info("Email delivery disabled")
	}

	return &EmailService{
		config:  cfg,
		sender:  sender,
		breaker: breaker,
		metrics: metrics,
		log:     log,
	}
}

// Enabled reports whether emails are actually delivered.
func (s *EmailService) Enabled() bool {
	return s.config.Enabled && s.sender != nil
}

func (s *EmailService) SendExpenseAdded(ctx context.Context, to string, data ExpenseEmailData) error {
	subject := fmt.Sprintf("%s added you to \"%s\"", data.ActorName, data.Description)
	return s.render(ctx, to, subject, expenseAddedTmpl, data)
}

func (s *EmailService) SendPaymentReminder(ctx context.Context, to string, data PaymentReminderData) error {
	subject := fmt.Sprintf("You owe %s for \"%s\"", data.Share, data.Description)
	return s.render(ctx, to, subject, paymentReminderTmpl, data)
}

func (s *EmailService) render(ctx context.Context, to, subject string, tmpl *template.Template, data any) error {
	var html bytes.Buffer
	if err := tmpl.Execute(&html, data); err != nil {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("failed to execute template %s: %w", tmpl.Name(), err)
	}
	return s.send(ctx, to, subject, html.String())
}

func (s *EmailService) send(ctx context.Context, to, subject, html string) error {
	if !s.Enabled() {
		return errEmailDisabled
	}

	start := time.Now()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(start).Seconds())
	}()

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return s.sender.SendWithContext(ctx, params)
	})
	if err != nil {
		s.metrics.errorCount.Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("email provider unavailable: %w", err)
		}
		s.log.Errorw("Failed to send email", "to", logger.MaskEmail(to), "subject", subject, "error", err)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	s.log.Infow("Email sent", "to", logger.MaskEmail(to), "subject", subject)
	return nil
}

const emailLayoutHead = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: sans-serif; background-color: #f5f7f6; color: #2d3436; margin: 0; padding: 20px; }
        .container { max-width: 560px; margin: 20px auto; background-color: #ffffff; padding: 28px; border-radius: 12px; }
        h1 { color: #1aa179; font-size: 24px; }
        .amount { font-size: 28px; font-weight: bold; }
        .button { display: inline-block; padding: 12px 24px; background-color: #1aa179; color: #ffffff; border-radius: 8px; text-decoration: none; }
    </style>
</head>
<body>
    <div class="container">`

const emailLayoutFoot = `
    </div>
</body>
</html>`

const expenseAddedTemplate = emailLayoutHead + `
        <h1>New expense</h1>
        <p>Hi {{.RecipientName}},</p>
        <p>{{.ActorName}} added "{{.Description}}"{{if .GroupName}} in {{.GroupName}}{{end}} for {{.Total}}.</p>
        <p>Your share</p>
        <p class="amount">{{.Share}}</p>
        {{if .ExpenseURL}}<p><a href="{{.ExpenseURL}}" class="button">View expense</a></p>{{end}}` + emailLayoutFoot

const paymentReminderTemplate = emailLayoutHead + `
        <h1>Time to settle up</h1>
        <p>Hi {{.RecipientName}},</p>
        <p>"{{.Description}}" has been approved. You owe {{.PayerName}}</p>
        <p class="amount">{{.Share}}</p>
        {{if .PaymentMethods}}<p>{{.PayerName}} can be paid with:</p>
        <ul>{{range .PaymentMethods}}<li>{{.}}</li>{{end}}</ul>{{end}}
        {{if .ExpenseURL}}<p><a href="{{.ExpenseURL}}" class="button">Mark as paid</a></p>{{end}}` + emailLayoutFoot
