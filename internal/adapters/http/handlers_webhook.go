package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/KB-design87/plundora-backend/internal/contracts"
	"github.com/KB-design87/plundora-backend/internal/domain"
)

// Gateway webhook payloads are small; anything past this is hostile.
const maxWebhookBodyBytes = 1 << 20

const signatureHeaderName = "Gateway-Signature"

// gatewayWebhook authenticates and reconciles one gateway delivery. The
// raw body must be read before any decoding so the signature covers the
// exact bytes the gateway signed. A 2xx tells the gateway to stop
// redelivering; processing failures return 5xx so the delivery retries.
func (h *Handler) gatewayWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unreadable request body")
		return
	}
	if len(body) > maxWebhookBodyBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "webhook payload too large")
		return
	}

	outcome, err := h.service.HandleGatewayEvent(r.Context(), body, r.Header.Get(signatureHeaderName))
	if err != nil {
		if errors.Is(err, domain.ErrSignatureInvalid) || errors.Is(err, domain.ErrInvalidInput) {
			// Rejected deliveries the gateway can never fix; a 4xx stops redelivery.
			writeMappedError(r.Context(), w, "gateway_webhook", err)
			return
		}
		status, code, msg := mapDomainError(err)
		if status < 500 {
			// Local processing failed; make the gateway redeliver.
			status = http.StatusInternalServerError
		}
		logHTTPOperationError(r.Context(), "gateway_webhook", status, code, msg, err)
		writeError(w, status, code, msg)
		return
	}

	httpLogger().InfoContext(r.Context(), "gateway event acknowledged",
		"operation", "gateway_webhook",
		"outcome", "success",
		"event_kind", string(outcome.Kind),
		"duplicate", outcome.Duplicate,
		"request_id", requestIDFromContext(r.Context()),
	)
	writeJSON(w, http.StatusOK, contracts.WebhookAck{Received: true})
}
