package webhooks

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bendaklara/restaurantsaround/config"
	"github.com/bendaklara/restaurantsaround/metrics"
	"github.com/bendaklara/restaurantsaround/middleware"
	"github.com/bendaklara/restaurantsaround/models"
)

type chanDispatcher chan models.Event

func (d chanDispatcher) Dispatch(_ context.Context, ev models.Event) {
	d <- ev
}

func newTestApp(t *testing.T) (*fiber.App, chanDispatcher, *config.Config) {
	t.Helper()
	cfg := config.Defaults()
	cfg.AppSecret = "secret"
	cfg.VerifyToken = "verify-me"
	cfg.PipelineTimeout = time.Second

	events := make(chanDispatcher, 16)
	app := fiber.New()
	RegisterRoutes(app, cfg, events)
	return app, events, cfg
}

func postSigned(t *testing.T, app *fiber.App, secret, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.Signature256Header, middleware.Sign(secret, []byte(body)))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestVerifyWebhook(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=1158201444", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "1158201444", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/webhook?hub.mode=unsubscribe&hub.verify_token=verify-me&hub.challenge=1", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestWebhookDispatchesEventsInOrder(t *testing.T) {
	app, events, _ := newTestApp(t)

	body := `{"object":"page","entry":[
		{"id":"page-1","time":1,"messaging":[
			{"sender":{"id":"u1"},"recipient":{"id":"page-1"},"timestamp":1,"message":{"mid":"m1","text":"help"}},
			{"sender":{"id":"u1"},"recipient":{"id":"page-1"},"timestamp":2,"read":{"watermark":2,"seq":0}}
		]},
		{"id":"page-2","time":1,"messaging":[
			{"sender":{"id":"u2"},"recipient":{"id":"page-2"},"timestamp":3,"postback":{"payload":"GET_STARTED"}}
		]}
	]}`

	status, text := postSigned(t, app, "secret", body)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "EVENT_RECEIVED", text)

	var got []models.Event
	for len(got) < 3 {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d events", len(got))
		}
	}

	assert.Equal(t, models.KindMessage, got[0].Kind())
	assert.Equal(t, "page-1", got[0].Meta().PageID)
	assert.Equal(t, models.KindRead, got[1].Kind())
	assert.Equal(t, models.KindPostback, got[2].Kind())
	assert.Equal(t, "page-2", got[2].Meta().PageID)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app, events, _ := newTestApp(t)

	status, _ := postSigned(t, app, "not-the-secret", `{"object":"page","entry":[]}`)
	assert.Equal(t, fiber.StatusForbidden, status)

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(`{"object":"page"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	assert.Empty(t, events)
}

func TestWebhookRejectsNonPageObject(t *testing.T) {
	app, _, _ := newTestApp(t)
	before := testutil.ToFloat64(metrics.WebhookDeliveriesTotal.WithLabelValues("not_page"))

	status, _ := postSigned(t, app, "secret", `{"object":"user","entry":[]}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.WebhookDeliveriesTotal.WithLabelValues("not_page")))
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, _ := postSigned(t, app, "secret", `{"object":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
