package payment

import (
	"context" // Context for provider and store calls
	"errors"  // Error inspection
	"fmt"     // Message formatting
	"regexp"  // Provider id check
	"time"    // Call durations

	"restaurant_system/internal/apperr"  // Error kinds
	"restaurant_system/internal/domain"  // Orders
	"restaurant_system/internal/metrics" // Payment counters
	"restaurant_system/internal/store"   // State document

	"github.com/sirupsen/logrus" // Logging
)

// StatusCompleted is the only capture status that settles an order
const StatusCompleted = "COMPLETED"

var providerIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// CreateOrderRequest is a single purchase unit sent to the provider
type CreateOrderRequest struct {
	CustomID string // Local order id
	Currency string
	Value    string // Two-decimal amount
}

// Provider is the remote payment service
type Provider interface {
	// CreateOrder opens a checkout and returns the provider order id
	CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error)
	// CaptureOrder settles an approved checkout and returns the provider status
	CaptureOrder(ctx context.Context, providerOrderID string) (string, error)
}

// Orchestrator ties provider checkouts to orders in the state document
type Orchestrator struct {
	cfg      Config
	provider Provider
	state    store.StateStore
}

// NewOrchestrator creates an orchestrator; provider may be nil when cfg is not enabled
func NewOrchestrator(cfg Config, provider Provider, state store.StateStore) *Orchestrator {
	return &Orchestrator{cfg: cfg, provider: provider, state: state}
}

// PublicConfig returns the browser-facing provider settings
func (o *Orchestrator) PublicConfig() PublicConfig {
	return o.cfg.Public()
}

func (o *Orchestrator) configured() error {
	if !o.cfg.Enabled() || o.provider == nil {
		return apperr.Unavailable("PayPal credentials are not configured on the server.")
	}
	return nil
}

// CreateProviderOrder opens a provider checkout for the tax-inclusive total of
// the local order and returns the provider order id.
// A nil orderID is reported like an unknown order.
func (o *Orchestrator) CreateProviderOrder(ctx context.Context, orderID *int64) (string, error) {
	if err := o.configured(); err != nil {
		return "", err
	}
	if orderID == nil {
		return "", apperr.NotFound("Order not found.")
	}
	order, err := o.currentOrder(ctx, *orderID)
	if err != nil {
		return "", err
	}
	if order.Status == domain.OrderPaid {
		return "", apperr.Conflict("Order is already paid.")
	}

	value, err := o.cfg.ConvertAmount(BilledTotal(order))
	if errors.Is(err, ErrUnsupportedCurrency) {
		return "", apperr.Unavailable(err.Error())
	}
	if err != nil {
		return "", err
	}

	start := time.Now()
	providerID, err := o.provider.CreateOrder(ctx, CreateOrderRequest{
		CustomID: fmt.Sprint(order.ID),
		Currency: o.cfg.Currency,
		Value:    value,
	})
	if err != nil {
		metrics.ObservePayment("create", "failure", time.Since(start))
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		}).Error("PayPal create-order failed")
		return "", apperr.Upstream(err)
	}
	metrics.ObservePayment("create", "success", time.Since(start))
	logrus.WithFields(logrus.Fields{
		"order_id":        order.ID,
		"paypal_order_id": providerID,
		"amount":          value,
		"currency":        o.cfg.Currency,
	}).Info("PayPal order created")
	return providerID, nil
}

// CaptureProviderOrder settles a provider checkout. On COMPLETED the local order
// is marked paid when localOrderID names a known order; any other status is a Conflict.
func (o *Orchestrator) CaptureProviderOrder(ctx context.Context, providerOrderID string, localOrderID *int64) (string, error) {
	if err := o.configured(); err != nil {
		return "", err
	}
	if providerOrderID == "" {
		return "", apperr.Validation("paypalOrderId is required.")
	}
	if !providerIDPattern.MatchString(providerOrderID) {
		return "", apperr.Validation("Invalid paypalOrderId.") // It becomes part of the provider URL
	}

	start := time.Now()
	status, err := o.provider.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		metrics.ObservePayment("capture", "failure", time.Since(start))
		logrus.WithFields(logrus.Fields{
			"paypal_order_id": providerOrderID,
			"error":           err.Error(),
		}).Error("PayPal capture failed")
		return "", apperr.Upstream(err)
	}
	if status != StatusCompleted {
		metrics.ObservePayment("capture", "incomplete", time.Since(start))
		logrus.WithFields(logrus.Fields{
			"paypal_order_id": providerOrderID,
			"status":          status,
		}).Warn("PayPal capture not completed")
		return status, apperr.Conflict("Capture not completed. Current status: " + status)
	}
	metrics.ObservePayment("capture", "success", time.Since(start))

	fields := logrus.Fields{"paypal_order_id": providerOrderID}
	if localOrderID != nil {
		if err := o.markPaid(ctx, *localOrderID); err != nil {
			logrus.WithFields(logrus.Fields{
				"paypal_order_id": providerOrderID,
				"order_id":        *localOrderID,
				"error":           err.Error(),
			}).Error("PayPal capture completed but order could not be marked paid")
			return status, apperr.Partial(fmt.Sprintf(
				"Payment captured (PayPal order %s) but order %d could not be marked paid. Mark it paid manually.",
				providerOrderID, *localOrderID), err)
		}
		fields["order_id"] = *localOrderID
	}
	logrus.WithFields(fields).Info("PayPal capture completed")
	return status, nil
}

// currentOrder reads the order from the stored document, bypassing any read cache
func (o *Orchestrator) currentOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	var order domain.Order
	found := false
	_, err := o.state.Mutate(ctx, store.AnyVersion, func(st *domain.AppState) (bool, error) {
		if idx := st.FindOrder(orderID); idx >= 0 {
			order, found = st.Orders[idx], true
		}
		return false, nil // Read only
	})
	if err != nil {
		return domain.Order{}, err
	}
	if !found {
		return domain.Order{}, apperr.NotFound("Order not found.")
	}
	return order, nil
}

func (o *Orchestrator) markPaid(ctx context.Context, orderID int64) error {
	_, err := o.state.Mutate(ctx, store.AnyVersion, func(st *domain.AppState) (bool, error) {
		idx := st.FindOrder(orderID)
		if idx < 0 {
			return false, nil // Unknown ids are ignored
		}
		st.Orders[idx].Status = domain.OrderPaid
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("mark order %d paid: %w", orderID, err)
	}
	return nil
}
