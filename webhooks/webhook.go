package webhooks

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bendaklara/restaurantsaround/config"
	"github.com/bendaklara/restaurantsaround/metrics"
	"github.com/bendaklara/restaurantsaround/middleware"
	"github.com/bendaklara/restaurantsaround/models"
	"github.com/bendaklara/restaurantsaround/tracer"
)

// Dispatcher handles one classified event. Implementations must not retain
// ctx past the call.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev models.Event)
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, dispatcher Dispatcher) {
	webhook := app.Group("/webhook")

	// Webhook verification endpoint
	webhook.Get("/", verifyWebhook(cfg))

	// Webhook event handler
	webhook.Post("/", middleware.VerifySignature(cfg.AppSecret), handleWebhookEvent(cfg, dispatcher))
}

// verifyWebhook handles Facebook webhook verification
func verifyWebhook(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := c.Query("hub.mode")
		token := c.Query("hub.verify_token")
		challenge := c.Query("hub.challenge")

		if mode == "subscribe" && token == cfg.VerifyToken {
			slog.Info("Webhook verified successfully")
			return c.SendString(challenge)
		}

		slog.Warn("Webhook verification failed", "mode", mode)
		return c.SendStatus(fiber.StatusForbidden)
	}
}

// handleWebhookEvent acknowledges a signed delivery and processes it in the
// background.
func handleWebhookEvent(cfg *config.Config, dispatcher Dispatcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body WebhookEvent
		if err := c.BodyParser(&body); err != nil {
			slog.Error("Failed to parse webhook body", "error", err)
			metrics.WebhookDeliveriesTotal.WithLabelValues("bad_body").Inc()
			return c.SendStatus(fiber.StatusBadRequest)
		}

		// Only process page events
		if body.Object != "page" {
			metrics.WebhookDeliveriesTotal.WithLabelValues("not_page").Inc()
			return c.SendStatus(fiber.StatusNotFound)
		}

		metrics.WebhookDeliveriesTotal.WithLabelValues("accepted").Inc()
		deliveryID := ulid.Make().String()
		go processWebhookEvent(deliveryID, body, cfg.PipelineTimeout, dispatcher)

		return c.SendString("EVENT_RECEIVED")
	}
}

// processWebhookEvent dispatches every messaging event of a delivery in
// order. All replies share one deadline.
func processWebhookEvent(deliveryID string, body WebhookEvent, timeout time.Duration, dispatcher Dispatcher) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ctx, span := tracer.StartSpan(ctx, "webhook.delivery",
		attribute.String("delivery_id", deliveryID),
		attribute.Int("entries", len(body.Entry)),
	)
	defer tracer.End(span, nil)

	log := slog.With("deliveryID", deliveryID)

	for _, entry := range body.Entry {
		log.Info("Processing webhook for page", "pageID", entry.ID, "events", len(entry.Messaging))

		for _, messaging := range entry.Messaging {
			ev := Classify(entry.ID, messaging)
			metrics.WebhookEventsTotal.WithLabelValues(ev.Kind()).Inc()
			dispatcher.Dispatch(ctx, ev)
		}
	}

	if err := ctx.Err(); err != nil {
		log.Warn("Webhook processing exceeded its deadline", "error", err)
	}
}
