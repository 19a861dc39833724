package payment

import (
	"errors"  // Sentinel errors
	"fmt"     // Error wrapping
	"math"    // Rounding
	"strconv" // Amount formatting

	"restaurant_system/internal/domain" // Orders
)

// TaxRate is applied on top of the stored pre-tax order total
const TaxRate = 0.05

// minimumCharge is the smallest amount the provider accepts
const minimumCharge = 0.01

// ErrUnsupportedCurrency is returned for billing/settlement pairs without a conversion
var ErrUnsupportedCurrency = errors.New("unsupported currency mapping")

// BilledTotal is the tax-inclusive total of order, rounded to a whole unit
func BilledTotal(order domain.Order) float64 {
	return math.Round(order.Total * (1 + TaxRate))
}

// ConvertAmount turns an amount in the billing currency into the two-decimal
// settlement amount sent to the provider. Amounts never go below 0.01.
func (c Config) ConvertAmount(amount float64) (string, error) {
	var value float64
	switch {
	case c.Currency == c.BillingCurrency:
		value = amount // No conversion needed
	case c.BillingCurrency == "INR" && c.Currency == "USD":
		value = amount * c.INRToUSDRate // Fixed rate from config
	default:
		return "", fmt.Errorf("%w: BILLING_CURRENCY=%s, PAYPAL_CURRENCY=%s", ErrUnsupportedCurrency, c.BillingCurrency, c.Currency)
	}
	return strconv.FormatFloat(math.Max(minimumCharge, value), 'f', 2, 64), nil // Two decimals, as the provider expects
}

// CheckCurrencies fails when ConvertAmount can never succeed for c
func (c Config) CheckCurrencies() error {
	_, err := c.ConvertAmount(0)
	return err
}
