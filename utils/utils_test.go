package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestToMinorUnits(t *testing.T) {
	assert.EqualValues(t, 2500, ToMinorUnits(25))
	assert.EqualValues(t, 1999, ToMinorUnits(19.99))
	assert.EqualValues(t, 1, ToMinorUnits(0.005))
	assert.EqualValues(t, 0, ToMinorUnits(0))
}

type capturedRequest struct {
	Path   string
	Header http.Header
	Form   url.Values
}

func stripeServer(t *testing.T, status int, body string, seen *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		seen.Path = r.URL.Path
		seen.Header = r.Header.Clone()
		seen.Form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStripeGatewaySucceeded(t *testing.T) {
	var seen capturedRequest
	srv := stripeServer(t, http.StatusOK,
		`{"id":"pi_123","amount":2500,"currency":"usd","status":"succeeded"}`, &seen)

	g := NewStripeGateway(srv.URL, "sk_test", 5*time.Second)
	pi, err := g.CreatePaymentIntent(context.Background(), PaymentIntentParams{
		AmountMinor:     2500,
		Currency:        "usd",
		PaymentMethodID: "pm_card_visa",
		IdempotencyKey:  "intent-1",
		Metadata:        map[string]string{"selected_class_id": "sel-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", pi.ID)
	assert.EqualValues(t, 2500, pi.Amount)
	assert.Contains(t, string(pi.Raw), "pi_123")

	assert.Equal(t, "/v1/payment_intents", seen.Path)
	assert.Equal(t, "Bearer sk_test", seen.Header.Get("Authorization"))
	assert.Equal(t, "intent-1", seen.Header.Get("Idempotency-Key"))
	assert.Equal(t, "2500", seen.Form.Get("amount"))
	assert.Equal(t, "usd", seen.Form.Get("currency"))
	assert.Equal(t, "pm_card_visa", seen.Form.Get("payment_method"))
	assert.Equal(t, "true", seen.Form.Get("confirm"))
	assert.Equal(t, "sel-1", seen.Form.Get("metadata[selected_class_id]"))
}

func TestStripeGatewayDecline(t *testing.T) {
	var seen capturedRequest
	srv := stripeServer(t, http.StatusPaymentRequired,
		`{"error":{"type":"card_error","code":"card_declined","decline_code":"insufficient_funds","message":"Your card has insufficient funds."}}`, &seen)

	g := NewStripeGateway(srv.URL, "sk_test", 5*time.Second)
	_, err := g.CreatePaymentIntent(context.Background(), PaymentIntentParams{AmountMinor: 100, Currency: "usd", PaymentMethodID: "pm"})
	require.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestStripeGatewayRequiresAction(t *testing.T) {
	var seen capturedRequest
	srv := stripeServer(t, http.StatusOK, `{"id":"pi_9","status":"requires_action"}`, &seen)

	g := NewStripeGateway(srv.URL, "sk_test", 5*time.Second)
	pi, err := g.CreatePaymentIntent(context.Background(), PaymentIntentParams{AmountMinor: 100, Currency: "usd", PaymentMethodID: "pm"})
	assert.ErrorIs(t, err, ErrPaymentDeclined)
	require.NotNil(t, pi)
	assert.Equal(t, "requires_action", pi.Status)
}

func TestStripeGatewayProviderFailure(t *testing.T) {
	var seen capturedRequest
	srv := stripeServer(t, http.StatusInternalServerError, `{"error":{"type":"api_error","message":"boom"}}`, &seen)

	g := NewStripeGateway(srv.URL, "sk_test", 5*time.Second)
	_, err := g.CreatePaymentIntent(context.Background(), PaymentIntentParams{AmountMinor: 100, Currency: "usd", PaymentMethodID: "pm"})
	assert.ErrorIs(t, err, ErrPaymentProvider)
}

func TestStripeGatewayRejectsZeroAmount(t *testing.T) {
	g := NewStripeGateway("http://127.0.0.1:0", "sk", time.Second)
	_, err := g.CreatePaymentIntent(context.Background(), PaymentIntentParams{AmountMinor: 0})
	assert.ErrorIs(t, err, ErrPaymentDeclined)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	done chan struct{}
}

func (m *recordingMailer) Send(to, subject, html string) error {
	m.mu.Lock()
	m.sent = append(m.sent, to+"|"+subject)
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func TestNotifierDispatchesAsync(t *testing.T) {
	m := &recordingMailer{done: make(chan struct{}, 1)}
	n := &Notifier{Mailer: m, Log: zap.NewNop()}

	n.SendEnrollmentReceipt("kid@camp.io", "Judo", 25)
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("mail was not sent")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Equal(t, []string{"kid@camp.io|Enrollment confirmed: Judo"}, m.sent)
}

func TestNotifierSkipsEmptyRecipient(t *testing.T) {
	m := &recordingMailer{done: make(chan struct{}, 1)}
	n := &Notifier{Mailer: m, Log: zap.NewNop()}
	n.SendClassRejectedEmail("", "Judo", "")
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, m.sent)
}
