package checkout_test

import (
	"testing"

	"github.com/cassiomorais/simplify-gateway/internal/checkout"
	"github.com/stretchr/testify/assert"
)

func TestHostedArgs(t *testing.T) {
	o := shippableOrder()
	args := checkout.HostedArgs(o, 1999, checkout.HostedOptions{
		PublicKey:   "sbpb_test",
		ModalColor:  "#a46497",
		RedirectURL: "https://shop.example.com/gateway/return",
	})

	assert.Equal(t, "sbpb_test", args["sc-key"])
	assert.Equal(t, "Jane Doe", args["customer-name"])
	assert.Equal(t, "1999", args["amount"])
	assert.Equal(t, "USD", args["currency"])
	assert.Equal(t, o.ID.String(), args["reference"])
	assert.Equal(t, "Order #1001", args["description"])
	assert.Equal(t, "create.token", args["operation"])
	assert.Equal(t, "false", args["receipt"])
}

func TestHostedArgs_OmitsEmptyValues(t *testing.T) {
	o := shippableOrder()
	o.Billing.FirstName = ""
	o.Billing.LastName = ""
	args := checkout.HostedArgs(o, 1999, checkout.HostedOptions{PublicKey: "sbpb_test"})

	assert.NotContains(t, args, "customer-name")
	assert.NotContains(t, args, "color")
	assert.NotContains(t, args, "redirect-url")
}

func TestTransliterate(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"José Müller", "Jose Muller"},
		{"plain ascii", "plain ascii"},
		{"Fête du Café", "Fete du Cafe"},
		{"日本語", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, checkout.Transliterate(tt.in))
	}
}

func TestHandlingFee(t *testing.T) {
	tests := []struct {
		name       string
		cartTotal  float64
		amountType string
		amount     float64
		expected   float64
	}{
		{"fixed", 200, checkout.FeeFixed, 10, 10},
		{"percentage", 200, checkout.FeePercentage, 10, 20},
		{"percentage capped at 100", 200, checkout.FeePercentage, 150, 200},
		{"zero fee", 200, checkout.FeeFixed, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, checkout.HandlingFee(tt.cartTotal, tt.amountType, tt.amount), 1e-9)
		})
	}
}
