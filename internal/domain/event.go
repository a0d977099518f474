package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventKind is the closed set of gateway webhook kinds the reconciler
// switches over. Everything else decodes to EventKindUnknown and is
// acknowledged without processing so the gateway stops retrying.
type EventKind string

const (
	EventKindSucceeded EventKind = "payment_intent.succeeded"
	EventKindFailed    EventKind = "payment_intent.payment_failed"
	EventKindCanceled  EventKind = "payment_intent.canceled"
	EventKindUnknown   EventKind = "unknown"
)

// PaymentEvent is a gateway webhook payload decoded once at the HTTP
// boundary. Delivery is at-least-once; EventID is the dedup key.
type PaymentEvent struct {
	EventID        string
	Kind           EventKind
	RawKind        string
	IntentID       string
	LatestChargeID string
	AmountMinor    int64
	Currency       string
	Metadata       map[string]string
}

type gatewayEventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID           string            `json:"id"`
			Amount       int64             `json:"amount"`
			Currency     string            `json:"currency"`
			LatestCharge string            `json:"latest_charge"`
			Metadata     map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// ParsePaymentEvent decodes a raw, already-authenticated gateway payload
// into the typed event union.
func ParsePaymentEvent(raw []byte) (PaymentEvent, error) {
	var env gatewayEventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PaymentEvent{}, fmt.Errorf("%w: malformed event payload: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(env.ID) == "" {
		return PaymentEvent{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	kind := EventKindUnknown
	switch EventKind(env.Type) {
	case EventKindSucceeded, EventKindFailed, EventKindCanceled:
		kind = EventKind(env.Type)
	}

	return PaymentEvent{
		EventID:        env.ID,
		Kind:           kind,
		RawKind:        env.Type,
		IntentID:       env.Data.Object.ID,
		LatestChargeID: env.Data.Object.LatestCharge,
		AmountMinor:    env.Data.Object.Amount,
		Currency:       strings.ToUpper(env.Data.Object.Currency),
		Metadata:       env.Data.Object.Metadata,
	}, nil
}
