package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"restaurant_system/internal/apperr"
	"restaurant_system/internal/domain"
	"restaurant_system/internal/store"
	"restaurant_system/internal/testutil"
	"restaurant_system/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeProvider struct {
	created       []CreateOrderRequest
	captureStatus string
	err           error
}

func (f *fakeProvider) CreateOrder(_ context.Context, req CreateOrderRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, req)
	return "PP-123", nil
}

func (f *fakeProvider) CaptureOrder(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.captureStatus, nil
}

var enabledConfig = Config{
	ClientID:        "client",
	ClientSecret:    "secret",
	APIBase:         "https://api-m.sandbox.paypal.com",
	Currency:        "USD",
	BuyerCountry:    "US",
	BillingCurrency: "INR",
	INRToUSDRate:    0.012,
}

func newOrchestrator(t *testing.T, cfg Config, p *fakeProvider) (*Orchestrator, store.StateStore) {
	t.Helper()
	st := store.NewGormStateStore(testutil.NewTestDB(t))
	return NewOrchestrator(cfg, p, st), st
}

func orderStatus(t *testing.T, st store.StateStore, id int64) string {
	t.Helper()
	snap, err := st.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	idx := snap.State.FindOrder(id)
	if idx < 0 {
		t.Fatalf("order %d missing", id)
	}
	return snap.State.Orders[idx].Status
}

func int64Ptr(v int64) *int64 { return &v }

func TestCreateProviderOrder(t *testing.T) {
	p := &fakeProvider{}
	o, _ := newOrchestrator(t, enabledConfig, p)

	id, err := o.CreateProviderOrder(context.Background(), int64Ptr(1001))
	if err != nil {
		t.Fatalf("CreateProviderOrder: %v", err)
	}
	if id != "PP-123" {
		t.Errorf("id = %q", id)
	}
	if len(p.created) != 1 {
		t.Fatalf("provider calls = %d", len(p.created))
	}
	// 820 pre-tax -> 861 billed -> 10.33 USD
	want := CreateOrderRequest{CustomID: "1001", Currency: "USD", Value: "10.33"}
	if p.created[0] != want {
		t.Errorf("request = %+v, want %+v", p.created[0], want)
	}
}

func TestCreateProviderOrderErrors(t *testing.T) {
	ctx := context.Background()

	o, _ := newOrchestrator(t, Config{Currency: "USD", BillingCurrency: "INR"}, &fakeProvider{})
	if _, err := o.CreateProviderOrder(ctx, int64Ptr(1001)); !apperr.Is(err, apperr.KindUnavailable) {
		t.Errorf("unconfigured: err = %v", err)
	}

	o, st := newOrchestrator(t, enabledConfig, &fakeProvider{})
	if _, err := o.CreateProviderOrder(ctx, int64Ptr(4242)); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown order: err = %v", err)
	}
	if _, err := o.CreateProviderOrder(ctx, nil); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing order id: err = %v", err)
	}

	if _, err := st.Mutate(ctx, store.AnyVersion, func(s *domain.AppState) (bool, error) {
		s.Orders[0].Status = domain.OrderPaid
		return true, nil
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := o.CreateProviderOrder(ctx, int64Ptr(1001)); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("paid order: err = %v", err)
	}

	eur := enabledConfig
	eur.BillingCurrency = "EUR"
	o, _ = newOrchestrator(t, eur, &fakeProvider{})
	if _, err := o.CreateProviderOrder(ctx, int64Ptr(1001)); !apperr.Is(err, apperr.KindUnavailable) {
		t.Errorf("unsupported currency: err = %v", err)
	}

	o, _ = newOrchestrator(t, enabledConfig, &fakeProvider{err: errors.New("PayPal create-order failed: 422 UNPROCESSABLE_ENTITY")})
	_, err := o.CreateProviderOrder(ctx, int64Ptr(1001))
	if !apperr.Is(err, apperr.KindUpstream) || apperr.Status(err) != 400 {
		t.Fatalf("provider failure: err = %v", err)
	}
	if msg := apperr.PublicMessage(err); msg != "PayPal create-order failed: 422 UNPROCESSABLE_ENTITY" {
		t.Errorf("message = %q", msg)
	}
}

func TestCaptureProviderOrderCompleted(t *testing.T) {
	ctx := context.Background()
	o, st := newOrchestrator(t, enabledConfig, &fakeProvider{captureStatus: StatusCompleted})

	status, err := o.CaptureProviderOrder(ctx, "PP-123", int64Ptr(1002))
	if err != nil {
		t.Fatalf("CaptureProviderOrder: %v", err)
	}
	if status != StatusCompleted {
		t.Errorf("status = %q", status)
	}
	if got := orderStatus(t, st, 1002); got != domain.OrderPaid {
		t.Errorf("order 1002 status = %q, want paid", got)
	}
	if got := orderStatus(t, st, 1001); got != domain.OrderServed {
		t.Errorf("order 1001 status = %q, want untouched", got)
	}

	before, _ := st.Get(ctx)
	if _, err := o.CaptureProviderOrder(ctx, "PP-124", int64Ptr(9999)); err != nil {
		t.Fatalf("unknown local order: %v", err)
	}
	if _, err := o.CaptureProviderOrder(ctx, "PP-125", nil); err != nil {
		t.Fatalf("no local order: %v", err)
	}
	after, _ := st.Get(ctx)
	if after.Version != before.Version {
		t.Errorf("capture without a known order wrote state (version %d -> %d)", before.Version, after.Version)
	}
}

func TestCaptureProviderOrderNotCompleted(t *testing.T) {
	ctx := context.Background()
	o, st := newOrchestrator(t, enabledConfig, &fakeProvider{captureStatus: "PENDING"})

	_, err := o.CaptureProviderOrder(ctx, "PP-123", int64Ptr(1002))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want Conflict", err)
	}
	if msg := apperr.PublicMessage(err); msg != "Capture not completed. Current status: PENDING" {
		t.Errorf("message = %q", msg)
	}
	if got := orderStatus(t, st, 1002); got != domain.OrderPreparing {
		t.Errorf("order status = %q, want preparing", got)
	}
}

func TestCaptureProviderOrderValidation(t *testing.T) {
	ctx := context.Background()

	o, _ := newOrchestrator(t, Config{}, &fakeProvider{})
	if _, err := o.CaptureProviderOrder(ctx, "PP-1", nil); !apperr.Is(err, apperr.KindUnavailable) {
		t.Errorf("unconfigured: err = %v", err)
	}

	o, _ = newOrchestrator(t, enabledConfig, &fakeProvider{})
	_, err := o.CaptureProviderOrder(ctx, "", nil)
	if !apperr.Is(err, apperr.KindValidation) || apperr.PublicMessage(err) != "paypalOrderId is required." {
		t.Errorf("missing id: err = %v", err)
	}

	if _, err := o.CaptureProviderOrder(ctx, "../../v1/oauth2", nil); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("path-like id: err = %v", err)
	}

	o, _ = newOrchestrator(t, enabledConfig, &fakeProvider{err: errors.New("PayPal capture failed: 404")})
	if _, err := o.CaptureProviderOrder(ctx, "PP-1", nil); !apperr.Is(err, apperr.KindUpstream) {
		t.Errorf("provider failure: err = %v", err)
	}
}

func TestCreateProviderOrderIgnoresStaleCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	db := store.NewGormStateStore(testutil.NewTestDB(t))
	cached := store.NewCachedStateStore(db, utils.NewJSONCache(rdb, "state:", time.Minute))
	p := &fakeProvider{captureStatus: StatusCompleted}
	o := NewOrchestrator(enabledConfig, p, cached)

	if _, err := cached.Get(ctx); err != nil { // Cache holds order 1001 unpaid
		t.Fatal(err)
	}
	if _, err := db.Mutate(ctx, store.AnyVersion, func(s *domain.AppState) (bool, error) {
		s.Orders[s.FindOrder(1001)].Status = domain.OrderPaid
		return true, nil
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := o.CreateProviderOrder(ctx, int64Ptr(1001)); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("paid order behind stale cache: err = %v", err)
	}

	if _, err := o.CaptureProviderOrder(ctx, "PP-9", int64Ptr(1002)); err != nil {
		t.Fatal(err)
	}
	if _, err := o.CreateProviderOrder(ctx, int64Ptr(1002)); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("second checkout after capture: err = %v", err)
	}
	if len(p.created) != 0 {
		t.Errorf("provider orders created = %d, want 0", len(p.created))
	}
}

// brokenWrites fails every Mutate
type brokenWrites struct {
	store.StateStore
}

func (brokenWrites) Mutate(context.Context, int64, store.Mutator) (*store.Snapshot, error) {
	return nil, errors.New("database is locked")
}

func TestCaptureCompletedButNotRecorded(t *testing.T) {
	ctx := context.Background()
	st := brokenWrites{StateStore: store.NewGormStateStore(testutil.NewTestDB(t))}
	o := NewOrchestrator(enabledConfig, &fakeProvider{captureStatus: StatusCompleted}, st)

	status, err := o.CaptureProviderOrder(ctx, "PP-77", int64Ptr(1002))
	if status != StatusCompleted {
		t.Errorf("status = %q, want COMPLETED", status)
	}
	if !apperr.Is(err, apperr.KindPartial) || apperr.Status(err) != 500 {
		t.Fatalf("err = %v, want Partial", err)
	}
	msg := apperr.PublicMessage(err)
	if !strings.Contains(msg, "Payment captured") || !strings.Contains(msg, "PP-77") || !strings.Contains(msg, "1002") {
		t.Errorf("message = %q", msg)
	}
}
