// Package checkout builds the request payload sections the Simplify
// API accepts for a payment: customer, billing, shipping and card
// holder info, assembled from an order and the merchant's store
// address. All builders are pure.
package checkout

import (
	"strings"
	"unicode/utf8"

	"github.com/cassiomorais/simplify-gateway/internal/domain/order"
)

// Field limits enforced by the processor.
const (
	limitLine            = 100
	limitCity            = 100
	limitZip             = 10
	limitShippingCountry = 10
	limitBillingCountry  = 20
	limitState           = 20
	limitCardState       = 10
	limitName            = 50
	limitEmail           = 100
)

// StoreAddress is the merchant's ship-from address, taken from
// configuration.
type StoreAddress struct {
	Line1   string
	Line2   string
	City    string
	Zip     string
	Country string
	State   string
}

// Builder assembles Simplify payload sections for one order.
type Builder struct {
	order *order.Order
	store StoreAddress
}

// NewBuilder creates a builder for the given order and store address.
func NewBuilder(o *order.Order, store StoreAddress) *Builder {
	return &Builder{order: o, store: store}
}

// safe truncates a value to the processor's field limit, never cutting
// through a multi-byte rune. Empty stays empty; callers omit empty
// fields from the payload.
func safe(value string, limit int) string {
	if value == "" {
		return ""
	}
	if limit <= 0 || len(value) <= limit {
		return value
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}

// IsVirtual reports whether the order has no shippable goods. The
// platform leaves the shipping address blank for such orders, so a
// missing first line or first name marks the order virtual.
func (b *Builder) IsVirtual() bool {
	if b.order.Shipping.Line1 == "" {
		return true
	}
	if b.order.Shipping.FirstName == "" {
		return true
	}
	return false
}

// Customer returns the customer section, always present.
func (b *Builder) Customer() map[string]any {
	return map[string]any{
		"email": safe(b.order.Email, limitEmail),
		"name":  b.customerName(),
	}
}

// OrderCustomer returns the customer fields embedded in the order
// section.
func (b *Builder) OrderCustomer() map[string]any {
	return map[string]any{
		"customerEmail": safe(b.order.Email, limitEmail),
		"customerName":  b.customerName(),
	}
}

// Billing returns the ship-from section built from the store address,
// or nil for virtual orders.
func (b *Builder) Billing() map[string]any {
	if b.IsVirtual() {
		return nil
	}

	from := map[string]any{}
	putNonEmpty(from, "line1", safe(b.store.Line1, limitLine))
	putNonEmpty(from, "line2", safe(b.store.Line2, limitLine))
	putNonEmpty(from, "city", safe(b.store.City, limitCity))
	putNonEmpty(from, "zip", safe(b.store.Zip, limitZip))
	putNonEmpty(from, "country", safe(b.store.Country, limitBillingCountry))
	putNonEmpty(from, "state", safe(b.store.State, limitState))

	return map[string]any{"shippingFromAddress": from}
}

// Shipping returns the ship-to section, or nil for virtual orders.
func (b *Builder) Shipping() map[string]any {
	if b.IsVirtual() {
		return nil
	}

	addr := map[string]any{}
	putNonEmpty(addr, "line1", safe(b.order.Shipping.Line1, limitLine))
	putNonEmpty(addr, "line2", safe(b.order.Shipping.Line2, limitLine))
	putNonEmpty(addr, "city", safe(b.order.Shipping.City, limitCity))
	putNonEmpty(addr, "zip", safe(b.order.Shipping.Zip, limitZip))
	putNonEmpty(addr, "country", safe(b.order.Shipping.Country, limitShippingCountry))
	putNonEmpty(addr, "state", safe(b.order.Shipping.State, limitState))

	return map[string]any{"shippingAddress": addr}
}

// CardInfo returns the card holder section, or nil for virtual orders.
// The address fields mirror the shipping address, as the processor
// uses them for AVS.
func (b *Builder) CardInfo() map[string]any {
	if b.IsVirtual() {
		return nil
	}

	info := map[string]any{}
	if b.order.Billing.FirstName != "" {
		info["name"] = b.customerName()
	}
	putNonEmpty(info, "addressLine1", safe(b.order.Shipping.Line1, limitLine))
	putNonEmpty(info, "addressLine2", safe(b.order.Shipping.Line2, limitLine))
	putNonEmpty(info, "addressCity", safe(b.order.Shipping.City, limitCity))
	putNonEmpty(info, "addressZip", safe(b.order.Shipping.Zip, limitZip))
	putNonEmpty(info, "addressCountry", safe(b.order.Shipping.Country, limitShippingCountry))
	putNonEmpty(info, "addressState", safe(b.order.Shipping.State, limitCardState))

	return info
}

// Order returns the merged order section: customer fields plus the
// ship-from and ship-to subsections.
func (b *Builder) Order() map[string]any {
	merged := b.OrderCustomer()
	for k, v := range b.Billing() {
		merged[k] = v
	}
	for k, v := range b.Shipping() {
		merged[k] = v
	}
	return merged
}

func (b *Builder) customerName() string {
	first := safe(b.order.Billing.FirstName, limitName)
	last := safe(b.order.Billing.LastName, limitName)
	return strings.TrimSpace(first + " " + last)
}

func putNonEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
