package contracts

// AddressPayload mirrors the JSON shape buyers submit for shipping and
// billing addresses.
type AddressPayload struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type CreateIntentRequest struct {
	SaleID          string          `json:"sale_id"`
	ShippingAddress AddressPayload  `json:"shipping_address"`
	BillingAddress  *AddressPayload `json:"billing_address,omitempty"`
}

type CreateIntentResponse struct {
	ClientSecret string  `json:"client_secret"`
	PaymentID    string  `json:"payment_id"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

type RefundPaymentRequest struct {
	Reason string `json:"reason,omitempty"`
}

type RefundPaymentResponse struct {
	RefundID string  `json:"refund_id"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}
