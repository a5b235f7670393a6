package checkout

// Fee amount types.
const (
	FeeFixed      = "fixed"
	FeePercentage = "percentage"
)

// HandlingFee computes the surcharge added to the cart before payment.
// Percentage fees are applied against the cart contents total and are
// capped at 100 percent.
func HandlingFee(cartTotal float64, amountType string, amount float64) float64 {
	if amountType == FeePercentage {
		if amount > 100 {
			amount = 100
		}
		return cartTotal * amount / 100
	}
	return amount
}
