package payments

import (
	"fmt"

	"github.com/krishisetu/krishisetu/pkg/config"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Processor creates payment intents for consultation and workshop fees.
// Amounts are in rupees; Stripe wants paise.
type Processor interface {
	CreateIntent(amountRupees int64, description string) (intentID, clientSecret string, err error)
	CancelIntent(intentID string) error
}

type stripeProcessor struct {
	api      *client.API
	currency string
}

func NewStripe(cfg config.StripeConfig) Processor {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &stripeProcessor{api: api, currency: cfg.Currency}
}

func (p *stripeProcessor) CreateIntent(amountRupees int64, description string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amountRupees * 100),
		Currency:    stripe.String(p.currency),
		Description: stripe.String(description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return "", "", fmt.Errorf("create payment intent: %w", err)
	}
	return intent.ID, intent.ClientSecret, nil
}

func (p *stripeProcessor) CancelIntent(intentID string) error {
	if intentID == "" {
		return nil
	}
	_, err := p.api.PaymentIntents.Cancel(intentID, nil)
	if err != nil {
		return fmt.Errorf("cancel payment intent: %w", err)
	}
	return nil
}

// NopProcessor skips payment collection. Used when no Stripe key is set so
// bookings still work in development.
type NopProcessor struct{}

func (NopProcessor) CreateIntent(amountRupees int64, description string) (string, string, error) {
	return "", "", nil
}

func (NopProcessor) CancelIntent(intentID string) error { return nil }
