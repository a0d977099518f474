package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KB-design87/plundora-backend/internal/domain"
)

// HMACVerifier authenticates webhook deliveries signed with the shared
// endpoint secret. The header carries a unix timestamp and one or more
// v1 signatures: "t=<unix>,v1=<hex>". The signed payload is
// "<timestamp>.<body>", which binds the timestamp into the MAC and
// makes replayed bodies with a fresh timestamp fail verification.
type HMACVerifier struct {
	secret    []byte
	tolerance time.Duration
}

// NewHMACVerifier creates a verifier with the given clock tolerance.
// Deliveries whose timestamp is further than the tolerance from now are
// rejected even when the signature itself is valid.
func NewHMACVerifier(secret string, tolerance time.Duration) *HMACVerifier {
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &HMACVerifier{secret: []byte(secret), tolerance: tolerance}
}

func (v *HMACVerifier) Verify(payload []byte, signatureHeader string, now time.Time) error {
	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return err
	}

	sentAt := time.Unix(timestamp, 0)
	if drift := now.Sub(sentAt); drift > v.tolerance || drift < -v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", domain.ErrSignatureInvalid)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range signatures {
		decoded, decodeErr := hex.DecodeString(candidate)
		if decodeErr != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return fmt.Errorf("%w: no matching v1 signature", domain.ErrSignatureInvalid)
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if strings.TrimSpace(header) == "" {
		return 0, nil, fmt.Errorf("%w: missing signature header", domain.ErrSignatureInvalid)
	}

	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: malformed timestamp", domain.ErrSignatureInvalid)
			}
			timestamp = parsed
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: header missing t or v1 element", domain.ErrSignatureInvalid)
	}
	return timestamp, signatures, nil
}
