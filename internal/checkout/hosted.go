package checkout

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cassiomorais/simplify-gateway/internal/domain/order"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// HostedOptions carries the merchant settings embedded in the hosted
// payment page arguments.
type HostedOptions struct {
	PublicKey   string
	ModalColor  string
	RedirectURL string
}

// HostedArgs builds the query arguments for the hosted payment page.
// The page posts the resulting card token back to the redirect URL.
// Empty values are omitted; text fields are transliterated to ASCII
// because the hosted page rejects non-Latin input.
func HostedArgs(o *order.Order, amountMinor int64, opts HostedOptions) map[string]string {
	args := map[string]string{
		"sc-key":        opts.PublicKey,
		"customer-name": Transliterate(o.FullName()),
		"amount":        strconv.FormatInt(amountMinor, 10),
		"currency":      strings.ToUpper(o.Currency),
		"reference":     o.ID.String(),
		"description":   Transliterate(fmt.Sprintf("Order #%s", o.Number)),
		"receipt":       "false",
		"color":         opts.ModalColor,
		"redirect-url":  opts.RedirectURL,
		"operation":     "create.token",
	}

	for k, v := range args {
		if v == "" {
			delete(args, k)
		}
	}
	return args
}

// Transliterate strips accents and drops any remaining non-ASCII
// runes. Best effort; a fully non-Latin name becomes empty rather
// than failing the payment.
func Transliterate(s string) string {
	stripped, _, err := transform.String(transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	), s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	for _, r := range stripped {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
