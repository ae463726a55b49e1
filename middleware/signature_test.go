package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "app-secret"

func sha1Sig(body []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestCheckSignature(t *testing.T) {
	body := []byte(`{"object":"page","entry":[]}`)

	assert.NoError(t, CheckSignature(secret, body, Sign(secret, body), ""))
	assert.NoError(t, CheckSignature(secret, body, "", sha1Sig(body)))

	assert.ErrorIs(t, CheckSignature(secret, body, "", ""), ErrSignatureMissing)
	assert.ErrorIs(t, CheckSignature(secret, body, Sign("other", body), ""), ErrSignatureInvalid)
	assert.ErrorIs(t, CheckSignature(secret, []byte("tampered"), "", sha1Sig(body)), ErrSignatureInvalid)
	assert.ErrorIs(t, CheckSignature(secret, body, "sha256=zz", ""), ErrSignatureInvalid)
	assert.ErrorIs(t, CheckSignature(secret, body, "", "md5=abcd"), ErrSignatureInvalid)
}

func TestSignature256TakesPrecedence(t *testing.T) {
	body := []byte("payload")
	err := CheckSignature(secret, body, "sha256=00", sha1Sig(body))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifySignatureMiddleware(t *testing.T) {
	app := fiber.New()
	app.Post("/webhook", VerifySignature(secret), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	body := []byte(`{"object":"page"}`)

	cases := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{"valid sha256", Signature256Header, Sign(secret, body), fiber.StatusOK},
		{"valid sha1", SignatureHeader, sha1Sig(body), fiber.StatusOK},
		{"wrong secret", Signature256Header, Sign("nope", body), fiber.StatusForbidden},
		{"missing", "", "", fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/webhook", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
