package handlers

import (
	"context"
	"log/slog"

	"github.com/bendaklara/restaurantsaround/models"
)

// handleAuthentication answers a "Send to Messenger" opt-in. Ref is the
// plugin's data-ref pass-through parameter.
func (b *Bot) handleAuthentication(ctx context.Context, ev models.AuthenticationEvent) {
	slog.Info("Received authentication",
		"senderID", ev.SenderID,
		"recipientID", ev.RecipientID,
		"ref", ev.Ref,
		"timestamp", ev.Timestamp,
	)
	b.send(ctx, textMessage(ev.SenderID, authenticatedText))
}

// handlePostback restarts the conversation with the start prompt.
func (b *Bot) handlePostback(ctx context.Context, ev models.PostbackEvent) {
	slog.Info("Received postback",
		"senderID", ev.SenderID,
		"recipientID", ev.RecipientID,
		"payload", ev.Payload,
		"timestamp", ev.Timestamp,
	)
	b.send(ctx, startPrompt(ev.SenderID))
}

func handleDelivery(ev models.DeliveryEvent) {
	for _, mid := range ev.MIDs {
		slog.Info("Received delivery confirmation", "mid", mid)
	}
	slog.Info("All messages before watermark were delivered", "watermark", ev.Watermark, "seq", ev.Seq)
}

func handleRead(ev models.ReadEvent) {
	slog.Info("Received message read event",
		"senderID", ev.SenderID,
		"watermark", ev.Watermark,
		"seq", ev.Seq,
	)
}

func handleAccountLink(ev models.AccountLinkEvent) {
	slog.Info("Received account link event",
		"senderID", ev.SenderID,
		"status", ev.Status,
		"authorizationCode", ev.AuthorizationCode,
	)
}
