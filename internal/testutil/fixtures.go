package testutil

import (
	"github.com/cassiomorais/simplify-gateway/internal/domain/order"
)

// NewTestOrder builds a pending shippable order.
func NewTestOrder(number string, total float64, currency string) *order.Order {
	o := order.NewOrder(number, total, currency, order.PaymentMethodSimplify)
	o.Email = "buyer@example.com"
	o.Billing = order.Address{
		FirstName: "Jane",
		LastName:  "Doe",
		Line1:     "1 Billing St",
		City:      "Springfield",
		Zip:       "12345",
		Country:   "US",
		State:     "IL",
	}
	o.Shipping = order.Address{
		FirstName: "Jane",
		LastName:  "Doe",
		Line1:     "42 Shipping Ave",
		City:      "Shelbyville",
		Zip:       "54321",
		Country:   "US",
		State:     "IL",
	}
	return o
}

// NewAuthorizedOrder builds an order holding an uncaptured
// authorization, ready for capture or void.
func NewAuthorizedOrder(number string, total float64, currency, authCode string) *order.Order {
	o := NewTestOrder(number, total, currency)
	if err := o.Authorized(authCode); err != nil {
		panic(err)
	}
	return o
}
