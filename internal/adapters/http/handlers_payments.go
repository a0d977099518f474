package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KB-design87/plundora-backend/internal/application"
	"github.com/KB-design87/plundora-backend/internal/contracts"
	"github.com/KB-design87/plundora-backend/internal/domain"
)

func (h *Handler) createIntent(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	var req contracts.CreateIntentRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_payment_intent", err)
		return
	}

	saleID, err := uuid.Parse(strings.TrimSpace(req.SaleID))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid sale_id")
		return
	}

	input := application.CreateIntentInput{
		SaleID:          saleID,
		BuyerID:         claims.UserID,
		ShippingAddress: toDomainAddress(req.ShippingAddress),
	}
	if req.BillingAddress != nil {
		input.BillingAddress = toDomainAddress(*req.BillingAddress)
	}

	res, err := h.service.CreatePaymentIntent(r.Context(), input)
	if err != nil {
		writeMappedError(r.Context(), w, "create_payment_intent", err)
		return
	}

	writeSuccess(w, http.StatusCreated, contracts.CreateIntentResponse{
		ClientSecret: res.ClientSecret,
		PaymentID:    res.PaymentID.String(),
		Amount:       res.Amount,
		Currency:     res.Currency,
	})
}

func (h *Handler) refundPayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	paymentID, err := uuid.Parse(chi.URLParam(r, "payment_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payment_id")
		return
	}

	var req contracts.RefundPaymentRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(r.Context(), w, "refund_payment", err)
			return
		}
	}

	res, err := h.service.RefundPayment(r.Context(), application.RefundInput{
		PaymentID:   paymentID,
		RequesterID: claims.UserID,
		Reason:      req.Reason,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "refund_payment", err)
		return
	}

	writeSuccess(w, http.StatusOK, contracts.RefundPaymentResponse{
		RefundID: res.RefundID,
		Amount:   res.Amount,
		Status:   res.Status,
	})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	res, err := h.service.ListPayments(r.Context(), application.ListPaymentsInput{
		UserID: claims.UserID,
		Role:   r.URL.Query().Get("role"),
		Page:   parseIntDefault(r.URL.Query().Get("page"), 1),
		Limit:  parseIntDefault(r.URL.Query().Get("limit"), 20),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_payments", err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"payments":   res.Payments,
		"pagination": res.Pagination,
	})
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	paymentID, err := uuid.Parse(chi.URLParam(r, "payment_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payment_id")
		return
	}

	payment, err := h.service.GetPayment(r.Context(), claims.UserID, paymentID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_payment", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"payment": payment})
}

func (h *Handler) analyticsSummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	days := parseIntDefault(r.URL.Query().Get("days"), 0)
	res, err := h.service.SellerAnalytics(r.Context(), claims.UserID, days)
	if err != nil {
		writeMappedError(r.Context(), w, "analytics_summary", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func toDomainAddress(payload contracts.AddressPayload) domain.PostalAddress {
	return domain.PostalAddress{
		Name:       strings.TrimSpace(payload.Name),
		Line1:      strings.TrimSpace(payload.Line1),
		Line2:      strings.TrimSpace(payload.Line2),
		City:       strings.TrimSpace(payload.City),
		State:      strings.TrimSpace(payload.State),
		PostalCode: strings.TrimSpace(payload.PostalCode),
		Country:    strings.TrimSpace(payload.Country),
	}
}
