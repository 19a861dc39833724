package payment

import (
	"context"  // Context for provider calls
	"errors"   // Error construction
	"fmt"      // Error wrapping
	"net/http" // Bounded HTTP client
	"time"     // Timeouts

	"github.com/plutov/paypal/v4"                                   // PayPal REST client
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp" // Outbound tracing
)

// PayPalProvider talks to the PayPal Orders v2 API
type PayPalProvider struct {
	clientID   string
	secret     string
	apiBase    string
	httpClient *http.Client
}

// NewPayPalProvider creates a provider whose calls are bounded by timeout and traced
func NewPayPalProvider(cfg Config, timeout time.Duration) *PayPalProvider {
	return &PayPalProvider{
		clientID: cfg.ClientID,
		secret:   cfg.ClientSecret,
		apiBase:  cfg.APIBase,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// client returns an authenticated client. A new access token is fetched per call.
func (p *PayPalProvider) client(ctx context.Context) (*paypal.Client, error) {
	c, err := paypal.NewClient(p.clientID, p.secret, p.apiBase)
	if err != nil {
		return nil, fmt.Errorf("PayPal client setup failed: %w", err)
	}
	c.SetHTTPClient(p.httpClient)
	if _, err := c.GetAccessToken(ctx); err != nil {
		return nil, fmt.Errorf("PayPal token request failed: %w", err)
	}
	return c, nil
}

// CreateOrder opens a CAPTURE intent checkout with a single purchase unit
func (p *PayPalProvider) CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error) {
	c, err := p.client(ctx)
	if err != nil {
		return "", err
	}
	order, err := c.CreateOrder(ctx, paypal.OrderIntentCapture, []paypal.PurchaseUnitRequest{{
		CustomID: req.CustomID,
		Amount: &paypal.PurchaseUnitAmount{
			Currency: req.Currency,
			Value:    req.Value,
		},
	}}, nil, nil)
	if err != nil {
		return "", fmt.Errorf("PayPal create-order failed: %w", err)
	}
	if order.ID == "" {
		return "", errors.New("PayPal create-order failed: response has no order id")
	}
	return order.ID, nil
}

// CaptureOrder captures an approved checkout and returns its status
func (p *PayPalProvider) CaptureOrder(ctx context.Context, providerOrderID string) (string, error) {
	c, err := p.client(ctx)
	if err != nil {
		return "", err
	}
	res, err := c.CaptureOrder(ctx, providerOrderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return "", fmt.Errorf("PayPal capture failed: %w", err)
	}
	return res.Status, nil
}
