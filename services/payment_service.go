package services

import (
	"bytes"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
)

// PaymentService wraps the payment gateway: intent creation at
// checkout and signature-verified webhook parsing for the
// payment-confirmation callback.
type PaymentService struct {
	webhookKey string
}

func NewPaymentService(secretKey, webhookKey string) *PaymentService {
	stripe.Key = secretKey
	return &PaymentService{webhookKey: webhookKey}
}

// CreateIntent opens a payment intent for an order. The order id rides
// in the metadata so the webhook can find its way back.
func (s *PaymentService) CreateIntent(amount int64, currency, orderID, userID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("order_id", orderID)
	params.AddMetadata("user_id", userID)
	return paymentintent.New(params)
}

// ParseWebhook reads and verifies a gateway callback. An invalid
// signature is an error; the callback body is replaced so later
// handlers can re-read it.
func (s *PaymentService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.webhookKey)
}
