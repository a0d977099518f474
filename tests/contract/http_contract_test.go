package contract

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	gatewayadapter "github.com/KB-design87/plundora-backend/internal/adapters/gateway"
	httpadapter "github.com/KB-design87/plundora-backend/internal/adapters/http"
	"github.com/KB-design87/plundora-backend/internal/adapters/security"
	"github.com/KB-design87/plundora-backend/internal/application"
	"github.com/KB-design87/plundora-backend/internal/domain"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

const (
	contractJWTSecret     = "contract-jwt-secret"
	contractWebhookSecret = "whsec_contract"
)

type contractWorld struct {
	router http.Handler
	sales  *contractSales
	buyer  uuid.UUID
	token  string
}

func newContractWorld(t *testing.T) *contractWorld {
	t.Helper()

	sales := &contractSales{items: map[uuid.UUID]domain.Sale{}}
	payments := &contractPayments{items: map[uuid.UUID]domain.Payment{}, sales: sales}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName: "payment-reconciliation-contract",
			Currency:    "USD",
		},
		Sales:     sales,
		Payments:  payments,
		Stores:    &contractStores{},
		Analytics: &contractAnalytics{},
		Gateway:   &contractGateway{},
		Verifier:  gatewayadapter.NewHMACVerifier(contractWebhookSecret, 5*time.Minute),
		Dedup:     &contractDedup{seen: map[string]bool{}},
		RateLimit: nil,
	})

	verifier, err := security.NewJWTVerifier(contractJWTSecret)
	if err != nil {
		t.Fatalf("init jwt verifier: %v", err)
	}
	router := httpadapter.NewRouter(httpadapter.NewHandler(svc, verifier))

	buyer := uuid.New()
	return &contractWorld{
		router: router,
		sales:  sales,
		buyer:  buyer,
		token:  mintToken(t, buyer),
	}
}

func mintToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"email":   "buyer@example.com",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(contractJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func signWebhook(timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(contractWebhookSecret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestPaymentEndpointsRequireBearerToken(t *testing.T) {
	t.Parallel()

	w := newContractWorld(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/payments/v1/intents"},
		{http.MethodGet, "/payments/v1/payments"},
		{http.MethodGet, "/payments/v1/analytics/summary"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		res := httptest.NewRecorder()
		w.router.ServeHTTP(res, req)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: expected 401, got %d", route.method, route.path, res.Code)
		}
	}
}

func TestCreateIntentHTTPContract(t *testing.T) {
	t.Parallel()

	w := newContractWorld(t)
	sale := domain.Sale{
		SaleID:       uuid.New(),
		SellerID:     uuid.New(),
		Title:        "Road Bike",
		Price:        20.00,
		ShippingCost: 5.00,
		Status:       domain.SaleStatusActive,
	}
	w.sales.put(sale)

	body, _ := json.Marshal(map[string]any{
		"sale_id": sale.SaleID.String(),
		"shipping_address": map[string]string{
			"name":        "Pat Buyer",
			"line1":       "1 Main St",
			"city":        "Springfield",
			"state":       "IL",
			"postal_code": "62701",
			"country":     "US",
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/payments/v1/intents", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+w.token)
	res := httptest.NewRecorder()
	w.router.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", res.Code, res.Body.String())
	}
	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			ClientSecret string  `json:"client_secret"`
			PaymentID    string  `json:"payment_id"`
			Amount       float64 `json:"amount"`
			Currency     string  `json:"currency"`
		} `json:"data"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Status != "success" || envelope.Data.ClientSecret == "" {
		t.Fatalf("unexpected envelope %s", res.Body.String())
	}
	if envelope.Data.Amount != 25.00 || envelope.Data.Currency != "USD" {
		t.Fatalf("expected 25.00 USD, got %v %s", envelope.Data.Amount, envelope.Data.Currency)
	}
}

func TestWebhookSignatureHTTPContract(t *testing.T) {
	t.Parallel()

	w := newContractWorld(t)
	payload := []byte(`{"id":"evt_c1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_unknown","amount":2500,"currency":"usd"}}}`)

	// Unsigned delivery is rejected without processing.
	req := httptest.NewRequest(http.MethodPost, "/payments/v1/webhook", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	w.router.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsigned webhook, got %d", res.Code)
	}
	var apiErr struct {
		Status string `json:"status"`
		Code   string `json:"code"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if apiErr.Status != "error" || apiErr.Code != "SIGNATURE_INVALID" {
		t.Fatalf("unexpected error body %s", res.Body.String())
	}

	// A correctly signed delivery is acknowledged even when the intent is
	// unknown to this system.
	signed := httptest.NewRequest(http.MethodPost, "/payments/v1/webhook", bytes.NewReader(payload))
	signed.Header.Set("Gateway-Signature", signWebhook(time.Now().Unix(), payload))
	signedRes := httptest.NewRecorder()
	w.router.ServeHTTP(signedRes, signed)
	if signedRes.Code != http.StatusOK {
		t.Fatalf("expected 200 for signed webhook, got %d body=%s", signedRes.Code, signedRes.Body.String())
	}
	var ack struct {
		Received bool `json:"received"`
	}
	if err := json.Unmarshal(signedRes.Body.Bytes(), &ack); err != nil || !ack.Received {
		t.Fatalf("expected {\"received\":true}, got %s", signedRes.Body.String())
	}

	// A signed but malformed payload is permanently broken; a 4xx stops
	// the gateway from redelivering it forever.
	malformed := []byte(`{"type":"payment_intent.succeeded"`)
	broken := httptest.NewRequest(http.MethodPost, "/payments/v1/webhook", bytes.NewReader(malformed))
	broken.Header.Set("Gateway-Signature", signWebhook(time.Now().Unix(), malformed))
	brokenRes := httptest.NewRecorder()
	w.router.ServeHTTP(brokenRes, broken)
	if brokenRes.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed signed webhook, got %d body=%s", brokenRes.Code, brokenRes.Body.String())
	}
	if err := json.Unmarshal(brokenRes.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code for malformed payload: %s", brokenRes.Body.String())
	}
}

func TestRefundRejectsPendingPaymentHTTPContract(t *testing.T) {
	t.Parallel()

	w := newContractWorld(t)
	sale := domain.Sale{
		SaleID:   uuid.New(),
		SellerID: uuid.New(),
		Title:    "Lamp",
		Price:    10.00,
		Status:   domain.SaleStatusActive,
	}
	w.sales.put(sale)

	body, _ := json.Marshal(map[string]any{
		"sale_id": sale.SaleID.String(),
		"shipping_address": map[string]string{
			"name":        "Pat Buyer",
			"line1":       "1 Main St",
			"city":        "Springfield",
			"state":       "IL",
			"postal_code": "62701",
			"country":     "US",
		},
	})
	createReq := httptest.NewRequest(http.MethodPost, "/payments/v1/intents", bytes.NewReader(body))
	createReq.Header.Set("Authorization", "Bearer "+w.token)
	createRes := httptest.NewRecorder()
	w.router.ServeHTTP(createRes, createReq)
	if createRes.Code != http.StatusCreated {
		t.Fatalf("create intent failed: %d %s", createRes.Code, createRes.Body.String())
	}
	var created struct {
		Data struct {
			PaymentID string `json:"payment_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(createRes.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	refundReq := httptest.NewRequest(http.MethodPost, "/payments/v1/payments/"+created.Data.PaymentID+"/refund", nil)
	refundReq.Header.Set("Authorization", "Bearer "+w.token)
	refundRes := httptest.NewRecorder()
	w.router.ServeHTTP(refundRes, refundReq)
	if refundRes.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 refunding a pending payment, got %d body=%s", refundRes.Code, refundRes.Body.String())
	}
	var apiErr struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(refundRes.Body.Bytes(), &apiErr); err != nil || apiErr.Code != "INVALID_STATE" {
		t.Fatalf("expected INVALID_STATE, got %s", refundRes.Body.String())
	}
}

type contractSales struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Sale
}

func (s *contractSales) put(sale domain.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sale.SaleID] = sale
}

func (s *contractSales) GetByID(_ context.Context, saleID uuid.UUID) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.items[saleID]
	if !ok {
		return domain.Sale{}, domain.ErrNotFound
	}
	return sale, nil
}

type contractPayments struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Payment
	sales *contractSales
}

func (p *contractPayments) Create(_ context.Context, payment domain.Payment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[payment.PaymentID] = payment
	return nil
}

func (p *contractPayments) GetByID(_ context.Context, paymentID uuid.UUID) (domain.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	payment, ok := p.items[paymentID]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	return payment, nil
}

func (p *contractPayments) GetByIntentID(_ context.Context, intentID string) (domain.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, payment := range p.items {
		if payment.GatewayIntentID == intentID {
			return payment, nil
		}
	}
	return domain.Payment{}, domain.ErrNotFound
}

func (p *contractPayments) ListByUser(_ context.Context, userID uuid.UUID, _ ports.PaymentQuery) ([]domain.Payment, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	matched := make([]domain.Payment, 0)
	for _, payment := range p.items {
		if payment.VisibleTo(userID) {
			matched = append(matched, payment)
		}
	}
	return matched, len(matched), nil
}

func (p *contractPayments) ReconcileSucceededTx(_ context.Context, params ports.ReconcileSucceededParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, payment := range p.items {
		if payment.GatewayIntentID != params.IntentID {
			continue
		}
		if payment.Status != domain.PaymentStatusPending {
			return domain.ErrInvalidState
		}
		payment.Status = domain.PaymentStatusSucceeded
		payment.GatewayChargeID = params.ChargeID
		p.items[id] = payment
		return nil
	}
	return domain.ErrNotFound
}

func (p *contractPayments) SettleFromPending(_ context.Context, intentID string, status domain.PaymentStatus, _ time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, payment := range p.items {
		if payment.GatewayIntentID != intentID {
			continue
		}
		if payment.Status != domain.PaymentStatusPending {
			return domain.ErrInvalidState
		}
		payment.Status = status
		p.items[id] = payment
		return nil
	}
	return domain.ErrNotFound
}

func (p *contractPayments) ApplyRefundTx(_ context.Context, params ports.RefundParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	payment, ok := p.items[params.PaymentID]
	if !ok {
		return domain.ErrNotFound
	}
	if payment.Status != domain.PaymentStatusSucceeded {
		return domain.ErrInvalidState
	}
	payment.Status = domain.PaymentStatusRefunded
	payment.Metadata = params.Metadata
	p.items[params.PaymentID] = payment
	return nil
}

type contractStores struct{}

func (contractStores) GetByOwner(_ context.Context, _ uuid.UUID) (domain.Store, error) {
	return domain.Store{}, domain.ErrNotFound
}

type contractAnalytics struct{}

func (contractAnalytics) SellerSummary(_ context.Context, _ ports.AnalyticsWindow) (ports.SellerSummary, error) {
	return ports.SellerSummary{}, nil
}

type contractGateway struct {
	mu  sync.Mutex
	seq int
}

func (g *contractGateway) CreateIntent(_ context.Context, _ ports.CreateIntentParams) (ports.IntentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return ports.IntentResult{
		IntentID:     fmt.Sprintf("pi_c%d", g.seq),
		ClientSecret: fmt.Sprintf("pi_c%d_secret", g.seq),
	}, nil
}

func (g *contractGateway) CreateRefund(_ context.Context, _ ports.RefundRequest) (ports.RefundResult, error) {
	return ports.RefundResult{RefundID: "re_c1", AmountMinor: 1000, Status: "succeeded"}, nil
}

type contractDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *contractDedup) MarkIfFirst(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[eventID] {
		return false, nil
	}
	d.seen[eventID] = true
	return true, nil
}

func (d *contractDedup) Forget(_ context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, eventID)
	return nil
}
