package email

import (
	"context"
	"fmt"
	"html"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/gomail.v2"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/config"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	Currency    string
	Locale      string
}

// SMTPNotifier emails delinquency notices to subscribers.
type SMTPNotifier struct {
	config  SMTPConfig
	send    func(m ...*gomail.Message) error
	printer *message.Printer
	unit    currency.Unit
	title   cases.Caser
	logger  logger.Interface
}

// NewNotifier returns the SMTP notifier, or a no-op notifier when email is disabled.
func NewNotifier(emailCfg *config.EmailConfig, billingCfg *config.BillingConfig, log logger.Interface) (billing.DelinquencyNotifier, error) {
	if !emailCfg.Enabled || emailCfg.SMTPHost == "" {
		log.Infow("email notices disabled")
		return NopNotifier{}, nil
	}
	return NewSMTPNotifier(SMTPConfig{
		Host:        emailCfg.SMTPHost,
		Port:        emailCfg.SMTPPort,
		Username:    emailCfg.SMTPUser,
		Password:    emailCfg.SMTPPassword,
		FromAddress: emailCfg.FromAddress,
		FromName:    emailCfg.FromName,
		Currency:    billingCfg.Currency,
		Locale:      billingCfg.Locale,
	}, log)
}

func NewSMTPNotifier(cfg SMTPConfig, log logger.Interface) (*SMTPNotifier, error) {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return newSMTPNotifier(cfg, dialer.DialAndSend, log)
}

func newSMTPNotifier(cfg SMTPConfig, send func(m ...*gomail.Message) error, log logger.Interface) (*SMTPNotifier, error) {
	if cfg.Currency == "" {
		cfg.Currency = "BRL"
	}
	if cfg.Locale == "" {
		cfg.Locale = "pt-BR"
	}
	unit, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid billing currency %q: %w", cfg.Currency, err)
	}
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid billing locale %q: %w", cfg.Locale, err)
	}

	return &SMTPNotifier{
		config:  cfg,
		send:    send,
		printer: message.NewPrinter(tag),
		unit:    unit,
		title:   cases.Title(tag),
		logger:  log,
	}, nil
}

func (n *SMTPNotifier) NotifyDelinquency(ctx context.Context, notice billing.DelinquencyNotice) error {
	if notice.Contact.Email == "" {
		n.logger.Warnw("subscriber has no email, notice skipped",
			"scope", notice.Scope.String(),
			"subscriber_id", notice.SubscriberID,
		)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := n.compose(notice)
	if err := n.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Infow("delinquency notice sent",
		"scope", notice.Scope.String(),
		"subscriber_id", notice.SubscriberID,
		"status", notice.Status.String(),
	)
	return nil
}

func (n *SMTPNotifier) formatAmount(notice billing.DelinquencyNotice) string {
	return n.printer.Sprint(currency.Symbol(n.unit.Amount(notice.Outstanding.InexactFloat64())))
}

func (n *SMTPNotifier) compose(notice billing.DelinquencyNotice) *gomail.Message {
	amount := n.formatAmount(notice)
	name := n.title.String(notice.Contact.Name)

	var subject, headline string
	if notice.Status == vo.SubscriptionCancelled {
		subject = "Your subscription has been blocked"
		headline = fmt.Sprintf("Your subscription was blocked after %d days without payment.", notice.DaysLate)
	} else {
		subject = "Payment overdue"
		headline = fmt.Sprintf("Your payment is %d day(s) overdue.", notice.DaysLate)
	}

	plainBody := fmt.Sprintf(`Hello %s,

%s
Outstanding amount: %s

Please settle the open installments to keep your access.
`, name, headline, amount)

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<p>Hello %s,</p>
			<p>%s</p>
			<p>Outstanding amount: <strong>%s</strong></p>
			<p>Please settle the open installments to keep your access.</p>
		</body>
		</html>
	`, html.EscapeString(name), html.EscapeString(headline), html.EscapeString(amount))

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.config.FromAddress, n.config.FromName)
	m.SetHeader("To", notice.Contact.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)
	return m
}

// NopNotifier drops notices when email is not configured.
type NopNotifier struct{}

func (NopNotifier) NotifyDelinquency(context.Context, billing.DelinquencyNotice) error { return nil }
