package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bendaklara/restaurantsaround/metrics"
	"github.com/bendaklara/restaurantsaround/models"
)

// AddressResolver turns coordinates into a postal address.
type AddressResolver interface {
	Resolve(ctx context.Context, lat, lon float64) (models.Address, error)
}

// PlaceSearcher finds places matching a query.
type PlaceSearcher interface {
	SearchPlaces(ctx context.Context, query models.PlaceQuery) ([]models.Place, error)
}

// MessageSender delivers one outbound message and returns its platform id.
type MessageSender interface {
	Send(ctx context.Context, msg models.OutboundMessage) (string, error)
}

// Deduplicator records handled message ids. MarkProcessed reports true for
// an id it has already seen.
type Deduplicator interface {
	MarkProcessed(ctx context.Context, event models.ProcessedEvent) (bool, error)
}

type Options struct {
	SearchCategory   string
	MaxPlaces        int
	PrivacyPolicyURL string
	Dedup            Deduplicator // optional
}

// Bot answers classified messaging events. It holds no per-conversation
// state and is safe for concurrent use.
type Bot struct {
	geocoder AddressResolver
	places   PlaceSearcher
	sender   MessageSender
	opts     Options
}

func NewBot(geocoder AddressResolver, places PlaceSearcher, sender MessageSender, opts Options) *Bot {
	if opts.SearchCategory == "" {
		opts.SearchCategory = "Restaurant"
	}
	if opts.MaxPlaces < 1 {
		opts.MaxPlaces = 3
	}
	return &Bot{geocoder: geocoder, places: places, sender: sender, opts: opts}
}

// Dispatch routes ev to its handler. Every reply is sent before it returns.
func (b *Bot) Dispatch(ctx context.Context, ev models.Event) {
	switch e := ev.(type) {
	case models.AuthenticationEvent:
		b.handleAuthentication(ctx, e)
	case models.MessageEvent:
		b.HandleMessage(ctx, e)
	case models.DeliveryEvent:
		handleDelivery(e)
	case models.PostbackEvent:
		b.handlePostback(ctx, e)
	case models.ReadEvent:
		handleRead(e)
	case models.AccountLinkEvent:
		handleAccountLink(e)
	default:
		meta := ev.Meta()
		slog.Warn("Webhook received unknown messaging event",
			"senderID", meta.SenderID,
			"recipientID", meta.RecipientID,
			"timestamp", meta.Timestamp,
		)
	}
}

var nonWordChars = regexp.MustCompile(`[^\w\s]`)

// normalizeText strips punctuation, trims and lowercases a text message.
func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(nonWordChars.ReplaceAllString(s, "")))
}

// HandleMessage processes an incoming message event.
func (b *Bot) HandleMessage(ctx context.Context, ev models.MessageEvent) {
	senderID := ev.SenderID
	msg := ev.Message

	slog.Info("Received message",
		"senderID", senderID,
		"recipientID", ev.RecipientID,
		"timestamp", ev.Timestamp,
		"mid", msg.MID,
	)

	if msg.IsEcho {
		slog.Info("Received echo",
			"mid", msg.MID,
			"appID", msg.AppID,
			"metadata", msg.Metadata,
		)
		return
	}

	if b.alreadyProcessed(ctx, ev) {
		return
	}

	if msg.QuickReplyPayload != "" {
		slog.Info("Quick reply", "mid", msg.MID, "payload", msg.QuickReplyPayload)
		switch msg.QuickReplyPayload {
		case PayloadYes:
			b.send(ctx, locationPrompt(senderID))
		case PayloadNo:
			b.send(ctx, textMessage(senderID, declineText))
		default:
			slog.Warn("Ignoring unknown quick reply payload", "mid", msg.MID, "payload", msg.QuickReplyPayload)
		}
		return
	}

	if msg.Text != "" {
		b.handleText(ctx, senderID, msg.Text)
		return
	}

	if loc, ok := msg.Location(); ok {
		slog.Info("Received location", "senderID", senderID, "lat", loc.Lat, "long", loc.Long)
		b.handleLocation(ctx, senderID, loc)
		return
	}

	slog.Debug("No reply defined for message", "mid", msg.MID, "attachments", len(msg.Attachments))
}

func (b *Bot) handleText(ctx context.Context, senderID, text string) {
	switch normalizeText(text) {
	case "help":
		b.send(ctx, textMessage(senderID, helpText))
	case "start", "location":
		b.send(ctx, startPrompt(senderID))
	case "privacy", "policy", "privacy policy":
		b.send(ctx, textMessage(senderID, fmt.Sprintf(privacyTextFormat, b.opts.PrivacyPolicyURL)))
	default:
		b.send(ctx, startPrompt(senderID))
	}
}

func (b *Bot) alreadyProcessed(ctx context.Context, ev models.MessageEvent) bool {
	if b.opts.Dedup == nil || ev.Message.MID == "" {
		return false
	}

	seen, err := b.opts.Dedup.MarkProcessed(ctx, models.ProcessedEvent{
		EventKey: ev.Message.MID,
		Kind:     models.KindMessage,
		PageID:   ev.PageID,
	})
	if err != nil {
		slog.Warn("Deduplication check failed, processing anyway", "mid", ev.Message.MID, "error", err)
		return false
	}
	if seen {
		metrics.DuplicateMessagesTotal.Inc()
		slog.Info("Skipping redelivered message", "mid", ev.Message.MID)
	}
	return seen
}

// send delivers msg. Failures are logged and counted, never returned.
func (b *Bot) send(ctx context.Context, msg models.OutboundMessage) {
	id, err := b.sender.Send(ctx, msg)
	if err != nil {
		metrics.RepliesTotal.WithLabelValues("failed").Inc()
		slog.Error("Failed to send reply", "recipientID", msg.RecipientID, "error", err)
		return
	}
	metrics.RepliesTotal.WithLabelValues("sent").Inc()
	slog.Debug("Reply sent", "recipientID", msg.RecipientID, "messageID", id)
}
