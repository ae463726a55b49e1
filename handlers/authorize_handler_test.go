package handlers

import (
	"io"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeRendersLinkingPage(t *testing.T) {
	app := fiber.New()
	app.Get("/authorize", Authorize)

	q := url.Values{}
	q.Set("account_linking_token", "tok-123")
	q.Set("redirect_uri", "https://facebook.com/messenger_platform/account_linking/?account_linking_token=tok-123")

	resp, err := app.Test(httptest.NewRequest("GET", "/authorize?"+q.Encode(), nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(body)
	assert.Contains(t, page, "tok-123")

	code := regexp.MustCompile(`authorization_code=([0-9A-Z]{26})`).FindStringSubmatch(page)
	require.Len(t, code, 2, "success link should carry an authorization code")
}

func TestAuthorizeRequiresRedirectURI(t *testing.T) {
	app := fiber.New()
	app.Get("/authorize", Authorize)

	resp, err := app.Test(httptest.NewRequest("GET", "/authorize?account_linking_token=tok", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
