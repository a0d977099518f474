package unit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KB-design87/plundora-backend/internal/application"
	"github.com/KB-design87/plundora-backend/internal/domain"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

type fixture struct {
	service  *application.Service
	sales    *fakeSaleStore
	stores   *fakeStoreDirectory
	payments *fakePaymentStore
	gateway  *fakeGateway
	verifier *fakeVerifier
	dedup    *fakeDedup
	rate     *fakeRateLimit
}

func newFixture() *fixture {
	sales := &fakeSaleStore{items: map[uuid.UUID]domain.Sale{}}
	stores := &fakeStoreDirectory{items: map[uuid.UUID]domain.Store{}}
	payments := &fakePaymentStore{
		items:  map[uuid.UUID]domain.Payment{},
		sales:  sales,
		stores: stores,
	}
	gateway := &fakeGateway{}
	verifier := &fakeVerifier{}
	dedup := &fakeDedup{seen: map[string]bool{}}
	rate := &fakeRateLimit{counts: map[string]int64{}}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:              "payment-reconciliation-test",
			Currency:                 "USD",
			EventDedupTTL:            time.Hour,
			IntentRateLimitThreshold: 100,
			IntentRateLimitWindow:    time.Minute,
			AnalyticsDefaultDays:     30,
		},
		Sales:     sales,
		Payments:  payments,
		Stores:    stores,
		Analytics: &fakeAnalytics{payments: payments},
		Gateway:   gateway,
		Verifier:  verifier,
		Dedup:     dedup,
		RateLimit: rate,
	})

	return &fixture{
		service:  svc,
		sales:    sales,
		stores:   stores,
		payments: payments,
		gateway:  gateway,
		verifier: verifier,
		dedup:    dedup,
		rate:     rate,
	}
}

// seedSale registers an active sale, its seller's store, and returns the sale.
func (f *fixture) seedSale(price, shipping float64) domain.Sale {
	sale := domain.Sale{
		SaleID:       uuid.New(),
		StoreID:      uuid.New(),
		SellerID:     uuid.New(),
		Title:        "Vintage Camera",
		Price:        price,
		ShippingCost: shipping,
		Status:       domain.SaleStatusActive,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	f.sales.put(sale)
	f.stores.put(domain.Store{
		StoreID: sale.StoreID,
		OwnerID: sale.SellerID,
		Name:    "Camera Shop",
	})
	return sale
}

func shippingAddress() domain.PostalAddress {
	return domain.PostalAddress{
		Name:       "Pat Buyer",
		Line1:      "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}

func succeededEventBody(eventID, intentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"type":"payment_intent.succeeded","data":{"object":{"id":%q,"amount":2500,"currency":"usd","latest_charge":"ch_1"}}}`,
		eventID, intentID,
	))
}

func eventBody(eventID, eventType, intentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"type":%q,"data":{"object":{"id":%q,"amount":2500,"currency":"usd"}}}`,
		eventID, eventType, intentID,
	))
}

type fakeSaleStore struct {
	mu         sync.Mutex
	items      map[uuid.UUID]domain.Sale
	failGetErr error
}

func (s *fakeSaleStore) put(sale domain.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sale.SaleID] = sale
}

func (s *fakeSaleStore) get(saleID uuid.UUID) (domain.Sale, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.items[saleID]
	return sale, ok
}

func (s *fakeSaleStore) GetByID(_ context.Context, saleID uuid.UUID) (domain.Sale, error) {
	s.mu.Lock()
	failErr := s.failGetErr
	s.mu.Unlock()
	if failErr != nil {
		return domain.Sale{}, failErr
	}
	sale, ok := s.get(saleID)
	if !ok {
		return domain.Sale{}, domain.ErrNotFound
	}
	return sale, nil
}

type fakeStoreDirectory struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Store
}

func (s *fakeStoreDirectory) put(store domain.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[store.OwnerID] = store
}

func (s *fakeStoreDirectory) get(ownerID uuid.UUID) (domain.Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.items[ownerID]
	return store, ok
}

func (s *fakeStoreDirectory) GetByOwner(_ context.Context, ownerID uuid.UUID) (domain.Store, error) {
	store, ok := s.get(ownerID)
	if !ok {
		return domain.Store{}, domain.ErrNotFound
	}
	return store, nil
}

// fakePaymentStore mimics the transactional repository: the settlement
// and refund methods mutate payment, sale, and store together under one
// lock, with the same status guards as the SQL implementation.
type fakePaymentStore struct {
	mu     sync.Mutex
	items  map[uuid.UUID]domain.Payment
	sales  *fakeSaleStore
	stores *fakeStoreDirectory

	failReconcile error
	failRefund    error
}

func (p *fakePaymentStore) Create(_ context.Context, payment domain.Payment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.items {
		if existing.GatewayIntentID == payment.GatewayIntentID {
			return domain.ErrConflict
		}
	}
	p.items[payment.PaymentID] = payment
	return nil
}

func (p *fakePaymentStore) GetByID(_ context.Context, paymentID uuid.UUID) (domain.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	payment, ok := p.items[paymentID]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	return payment, nil
}

func (p *fakePaymentStore) GetByIntentID(_ context.Context, intentID string) (domain.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	payment, ok := p.findByIntentLocked(intentID)
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	return payment, nil
}

func (p *fakePaymentStore) findByIntentLocked(intentID string) (domain.Payment, bool) {
	for _, payment := range p.items {
		if payment.GatewayIntentID == intentID {
			return payment, true
		}
	}
	return domain.Payment{}, false
}

func (p *fakePaymentStore) ListByUser(_ context.Context, userID uuid.UUID, query ports.PaymentQuery) ([]domain.Payment, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	matched := make([]domain.Payment, 0)
	for _, payment := range p.items {
		switch query.Role {
		case "purchases":
			if payment.BuyerID != userID {
				continue
			}
		case "sales":
			if payment.SellerID != userID {
				continue
			}
		default:
			if !payment.VisibleTo(userID) {
				continue
			}
		}
		matched = append(matched, payment)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if query.Offset >= total {
		return nil, total, nil
	}
	end := query.Offset + query.Limit
	if end > total {
		end = total
	}
	return matched[query.Offset:end], total, nil
}

func (p *fakePaymentStore) ReconcileSucceededTx(_ context.Context, params ports.ReconcileSucceededParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failReconcile != nil {
		return p.failReconcile
	}

	payment, ok := p.findByIntentLocked(params.IntentID)
	if !ok {
		return domain.ErrNotFound
	}
	if payment.Status != domain.PaymentStatusPending {
		return domain.ErrInvalidState
	}

	payment.Status = domain.PaymentStatusSucceeded
	payment.GatewayChargeID = params.ChargeID
	payment.UpdatedAt = params.SettledAt
	p.items[payment.PaymentID] = payment

	sale, ok := p.sales.get(params.SaleID)
	if !ok {
		return domain.ErrNotFound
	}
	soldAt := params.SettledAt
	sale.Status = domain.SaleStatusSold
	sale.SoldAt = &soldAt
	p.sales.put(sale)

	if store, ok := p.stores.get(params.SellerID); ok {
		store.TotalSales++
		p.stores.put(store)
	}
	return nil
}

func (p *fakePaymentStore) SettleFromPending(_ context.Context, intentID string, status domain.PaymentStatus, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	payment, ok := p.findByIntentLocked(intentID)
	if !ok {
		return domain.ErrNotFound
	}
	if payment.Status != domain.PaymentStatusPending {
		return domain.ErrInvalidState
	}
	payment.Status = status
	payment.UpdatedAt = at
	p.items[payment.PaymentID] = payment
	return nil
}

func (p *fakePaymentStore) ApplyRefundTx(_ context.Context, params ports.RefundParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failRefund != nil {
		return p.failRefund
	}

	payment, ok := p.items[params.PaymentID]
	if !ok {
		return domain.ErrNotFound
	}
	if payment.Status != domain.PaymentStatusSucceeded {
		return domain.ErrInvalidState
	}
	payment.Status = domain.PaymentStatusRefunded
	payment.Metadata = params.Metadata
	payment.UpdatedAt = params.RefundedAt
	p.items[payment.PaymentID] = payment

	sale, ok := p.sales.get(params.SaleID)
	if !ok {
		return domain.ErrNotFound
	}
	sale.Status = domain.SaleStatusActive
	sale.SoldAt = nil
	p.sales.put(sale)
	return nil
}

type fakeAnalytics struct {
	payments *fakePaymentStore
}

func (a *fakeAnalytics) SellerSummary(_ context.Context, window ports.AnalyticsWindow) (ports.SellerSummary, error) {
	a.payments.mu.Lock()
	defer a.payments.mu.Unlock()

	summary := ports.SellerSummary{}
	for _, payment := range a.payments.items {
		if payment.SellerID != window.SellerID || payment.CreatedAt.Before(window.Since) {
			continue
		}
		summary.TotalPayments++
		switch payment.Status {
		case domain.PaymentStatusSucceeded:
			summary.SucceededCount++
			summary.TotalRevenue += payment.Amount
		case domain.PaymentStatusRefunded:
			summary.RefundedCount++
			summary.TotalRevenue += payment.Amount
		case domain.PaymentStatusFailed:
			summary.FailedCount++
		}
	}
	settled := summary.SucceededCount + summary.RefundedCount
	if settled > 0 {
		summary.AveragePayment = summary.TotalRevenue / float64(settled)
	}
	return summary, nil
}

type fakeGateway struct {
	mu            sync.Mutex
	intentCalls   []ports.CreateIntentParams
	refundCalls   []ports.RefundRequest
	failIntent    error
	failRefund    error
	nextIntentSeq int
}

func (g *fakeGateway) CreateIntent(_ context.Context, params ports.CreateIntentParams) (ports.IntentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failIntent != nil {
		return ports.IntentResult{}, g.failIntent
	}
	g.nextIntentSeq++
	g.intentCalls = append(g.intentCalls, params)
	return ports.IntentResult{
		IntentID:     fmt.Sprintf("pi_%d", g.nextIntentSeq),
		ClientSecret: fmt.Sprintf("pi_%d_secret", g.nextIntentSeq),
	}, nil
}

func (g *fakeGateway) CreateRefund(_ context.Context, req ports.RefundRequest) (ports.RefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failRefund != nil {
		return ports.RefundResult{}, g.failRefund
	}
	g.refundCalls = append(g.refundCalls, req)
	return ports.RefundResult{
		RefundID:    fmt.Sprintf("re_%d", len(g.refundCalls)),
		AmountMinor: 2500,
		Status:      "succeeded",
	}, nil
}

func (g *fakeGateway) lastIntentCall() (ports.CreateIntentParams, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.intentCalls) == 0 {
		return ports.CreateIntentParams{}, false
	}
	return g.intentCalls[len(g.intentCalls)-1], true
}

type fakeVerifier struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (v *fakeVerifier) Verify(_ []byte, _ string, _ time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return v.err
}

type fakeDedup struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (d *fakeDedup) MarkIfFirst(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if d.seen[eventID] {
		return false, nil
	}
	d.seen[eventID] = true
	return true, nil
}

func (d *fakeDedup) Forget(_ context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, eventID)
	return nil
}

func (d *fakeDedup) marked(eventID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[eventID]
}

type fakeRateLimit struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (r *fakeRateLimit) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.counts[key]++
	return r.counts[key], nil
}
