package email

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/config"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

func newTestNotifier(t *testing.T, sent *[]*gomail.Message) *SMTPNotifier {
	t.Helper()
	n, err := newSMTPNotifier(SMTPConfig{
		FromAddress: "billing@boxdesk.test",
		FromName:    "Boxdesk",
	}, func(m ...*gomail.Message) error {
		*sent = append(*sent, m...)
		return nil
	}, logger.NewLogger())
	require.NoError(t, err)
	return n
}

func TestSMTPNotifier_BlockedNotice(t *testing.T) {
	var sent []*gomail.Message
	n := newTestNotifier(t, &sent)

	err := n.NotifyDelinquency(context.Background(), billing.DelinquencyNotice{
		Scope:        vo.AcademyScope(7),
		SubscriberID: 42,
		Contact:      billing.SubscriberContact{Name: "ana souza", Email: "ana@example.test"},
		Status:       vo.SubscriptionCancelled,
		DaysLate:     6,
		Outstanding:  decimal.RequireFromString("150.00"),
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"ana@example.test"}, sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Your subscription has been blocked"}, sent[0].GetHeader("Subject"))
}

func TestSMTPNotifier_SkipsMissingEmail(t *testing.T) {
	var sent []*gomail.Message
	n := newTestNotifier(t, &sent)

	err := n.NotifyDelinquency(context.Background(), billing.DelinquencyNotice{
		Scope:  vo.PlatformScope(),
		Status: vo.SubscriptionOverdue,
	})
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestSMTPNotifier_FormatsCurrency(t *testing.T) {
	var sent []*gomail.Message
	n := newTestNotifier(t, &sent)

	formatted := n.formatAmount(billing.DelinquencyNotice{Outstanding: decimal.RequireFromString("150")})
	assert.Contains(t, formatted, "150")
	assert.NotEqual(t, "150", formatted)
}

func TestNewSMTPNotifier_RejectsUnknownCurrency(t *testing.T) {
	_, err := newSMTPNotifier(SMTPConfig{Currency: "XX1"}, nil, logger.NewLogger())
	assert.Error(t, err)
}

func TestNewNotifier_DisabledIsNop(t *testing.T) {
	n, err := NewNotifier(&config.EmailConfig{}, &config.BillingConfig{}, logger.NewLogger())
	require.NoError(t, err)
	assert.IsType(t, NopNotifier{}, n)
}
