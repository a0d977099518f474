package domain

import (
	"fmt"
	"strings"
)

// PostalAddress is snapshotted onto the payment at intent creation so that
// later edits to a user's profile cannot change where a purchase ships.
type PostalAddress struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Validate requires a complete postal address for shipping.
func (a PostalAddress) Validate() error {
	required := []struct {
		field, value string
	}{
		{"name", a.Name},
		{"line1", a.Line1},
		{"city", a.City},
		{"state", a.State},
		{"postal_code", a.PostalCode},
		{"country", a.Country},
	}
	for _, item := range required {
		if strings.TrimSpace(item.value) == "" {
			return fmt.Errorf("%w: shipping address %s is required", ErrInvalidInput, item.field)
		}
	}
	return nil
}

// IsZero reports whether no field of the address is set.
func (a PostalAddress) IsZero() bool {
	return a == PostalAddress{}
}
