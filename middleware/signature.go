package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"hash"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bendaklara/restaurantsaround/metrics"
)

const (
	SignatureHeader    = "X-Hub-Signature"
	Signature256Header = "X-Hub-Signature-256"
)

var (
	ErrSignatureMissing = errors.New("missing request signature")
	ErrSignatureInvalid = errors.New("request signature does not match")
)

// VerifySignature rejects requests whose body was not signed with appSecret.
// X-Hub-Signature-256 is checked when present, X-Hub-Signature otherwise.
func VerifySignature(appSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := CheckSignature(appSecret, c.Body(), c.Get(Signature256Header), c.Get(SignatureHeader)); err != nil {
			slog.Warn("Rejecting webhook delivery", "error", err, "ip", c.IP())
			metrics.WebhookDeliveriesTotal.WithLabelValues("bad_signature").Inc()
			return c.SendStatus(fiber.StatusForbidden)
		}
		return c.Next()
	}
}

// CheckSignature validates a "sha256=<hex>" or "sha1=<hex>" header value
// against the HMAC of body.
func CheckSignature(appSecret string, body []byte, sig256, sig1 string) error {
	switch {
	case sig256 != "":
		return compare(sha256.New, appSecret, body, sig256, "sha256")
	case sig1 != "":
		return compare(sha1.New, appSecret, body, sig1, "sha1")
	default:
		return ErrSignatureMissing
	}
}

func compare(h func() hash.Hash, secret string, body []byte, header, method string) error {
	got, ok := strings.CutPrefix(header, method+"=")
	if !ok {
		return ErrSignatureInvalid
	}
	sum, err := hex.DecodeString(got)
	if err != nil {
		return ErrSignatureInvalid
	}

	mac := hmac.New(h, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(sum, mac.Sum(nil)) {
		return ErrSignatureInvalid
	}
	return nil
}

// Sign returns the X-Hub-Signature-256 value for body.
func Sign(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
