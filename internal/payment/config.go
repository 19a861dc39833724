// Package payment orchestrates PayPal checkout for restaurant orders.
package payment

import "strings" // Sandbox detection

// Config holds the provider credentials and the billing currency setup
type Config struct {
	ClientID        string
	ClientSecret    string
	APIBase         string
	Currency        string  // Settlement currency sent to the provider
	BuyerCountry    string  // Hint for the client-side SDK
	BillingCurrency string  // Currency of menu prices and order totals
	INRToUSDRate    float64 // Used when billing INR and settling USD
}

// Enabled reports whether both credentials are present
func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Sandbox reports whether APIBase points at the PayPal sandbox
func (c Config) Sandbox() bool {
	return strings.Contains(c.APIBase, "sandbox.paypal.com")
}

// PublicConfig is what the browser needs to render the PayPal buttons
type PublicConfig struct {
	Enabled         bool    `json:"enabled"`
	ClientID        string  `json:"clientId"`
	Currency        string  `json:"currency"`
	BuyerCountry    string  `json:"buyerCountry"`
	Sandbox         bool    `json:"sandbox"`
	BillingCurrency string  `json:"billingCurrency"`
	INRToUSDRate    float64 `json:"inrToUsdRate"`
}

// Public returns the client-facing view of c; the secret is never included
func (c Config) Public() PublicConfig {
	return PublicConfig{
		Enabled:         c.Enabled(),
		ClientID:        c.ClientID,
		Currency:        c.Currency,
		BuyerCountry:    c.BuyerCountry,
		Sandbox:         c.Sandbox(),
		BillingCurrency: c.BillingCurrency,
		INRToUSDRate:    c.INRToUSDRate,
	}
}
