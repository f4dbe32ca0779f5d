package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrPaymentDeclined means the provider refused the charge (card error, authentication required).
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrPaymentProvider means the provider could not be reached or answered unexpectedly.
	ErrPaymentProvider = errors.New("payment provider error")
)

const StatusSucceeded = "succeeded"

// PaymentIntentParams describes a charge to create and confirm in one call.
type PaymentIntentParams struct {
	AmountMinor     int64
	Currency        string
	PaymentMethodID string
	IdempotencyKey  string
	ReceiptEmail    string
	Metadata        map[string]string
}

// PaymentIntent is the provider's view of a charge.
type PaymentIntent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	// Raw is the provider body as received.
	Raw json.RawMessage `json:"-"`
}

// PaymentGateway creates confirmed payment intents.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (*PaymentIntent, error)
}

type stripeErrorBody struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"error"`
}

// StripeGateway talks to the Stripe payment intents API.
type StripeGateway struct {
	client *resty.Client
}

func NewStripeGateway(baseURL, secretKey string, timeout time.Duration) *StripeGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(secretKey).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &StripeGateway{client: client}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (*PaymentIntent, error) {
	if p.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrPaymentDeclined)
	}

	form := map[string]string{
		"amount":         strconv.FormatInt(p.AmountMinor, 10),
		"currency":       p.Currency,
		"payment_method": p.PaymentMethodID,
		"confirm":        "true",
		// Card-only confirmation; no redirect-based methods.
		"automatic_payment_methods[enabled]":         "true",
		"automatic_payment_methods[allow_redirects]": "never",
	}
	if p.ReceiptEmail != "" {
		form["receipt_email"] = p.ReceiptEmail
	}
	for k, v := range p.Metadata {
		form["metadata["+k+"]"] = v
	}

	req := g.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetError(&stripeErrorBody{})
	if p.IdempotencyKey != "" {
		req.SetHeader("Idempotency-Key", p.IdempotencyKey)
	}

	resp, err := req.Post("/v1/payment_intents")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	if resp.IsError() {
		body, _ := resp.Error().(*stripeErrorBody)
		msg := resp.Status()
		if body != nil && body.Error.Message != "" {
			msg = body.Error.Message
		}
		// 402 and card errors are declines; everything else is the provider's fault.
		if resp.StatusCode() == 402 || (body != nil && body.Error.Type == "card_error") {
			return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, msg)
		}
		return nil, fmt.Errorf("%w: %s", ErrPaymentProvider, msg)
	}

	var pi PaymentIntent
	if err := json.Unmarshal(resp.Body(), &pi); err != nil {
		return nil, fmt.Errorf("%w: decode payment intent: %v", ErrPaymentProvider, err)
	}
	pi.Raw = append(json.RawMessage(nil), resp.Body()...)

	if pi.Status != StatusSucceeded {
		return &pi, fmt.Errorf("%w: payment intent status %q", ErrPaymentDeclined, pi.Status)
	}
	return &pi, nil
}

// ToMinorUnits converts a major-unit price (dollars) to cents.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
