package webhooks

import "github.com/bendaklara/restaurantsaround/models"

// Classify converts a raw messaging entry into a typed event. When several
// payloads are present the first one in optin, message, delivery, postback,
// read, account_linking order wins.
func Classify(pageID string, m Messaging) models.Event {
	meta := models.EventMeta{
		PageID:      pageID,
		SenderID:    m.Sender.ID,
		RecipientID: m.Recipient.ID,
		Timestamp:   m.Timestamp,
	}

	switch {
	case m.Optin != nil:
		return models.AuthenticationEvent{EventMeta: meta, Ref: m.Optin.Ref}
	case m.Message != nil:
		return models.MessageEvent{EventMeta: meta, Message: convertMessage(m.Message)}
	case m.Delivery != nil:
		return models.DeliveryEvent{
			EventMeta: meta,
			MIDs:      m.Delivery.MIDs,
			Watermark: m.Delivery.Watermark,
			Seq:       m.Delivery.Seq,
		}
	case m.Postback != nil:
		return models.PostbackEvent{EventMeta: meta, Title: m.Postback.Title, Payload: m.Postback.Payload}
	case m.Read != nil:
		return models.ReadEvent{EventMeta: meta, Watermark: m.Read.Watermark, Seq: m.Read.Seq}
	case m.AccountLinking != nil:
		return models.AccountLinkEvent{
			EventMeta:         meta,
			Status:            m.AccountLinking.Status,
			AuthorizationCode: m.AccountLinking.AuthorizationCode,
		}
	default:
		return models.UnknownEvent{EventMeta: meta}
	}
}

func convertMessage(msg *Message) models.Message {
	out := models.Message{
		MID:      msg.MID,
		AppID:    msg.AppID,
		Metadata: msg.Metadata,
		Text:     msg.Text,
		IsEcho:   msg.IsEcho,
	}
	if msg.QuickReply != nil {
		out.QuickReplyPayload = msg.QuickReply.Payload
	}

	if len(msg.Attachments) > 0 {
		out.Attachments = make([]models.Attachment, len(msg.Attachments))
		for i, att := range msg.Attachments {
			out.Attachments[i] = models.Attachment{Type: att.Type, URL: att.Payload.URL}
			if c := att.Payload.Coordinates; c != nil {
				out.Attachments[i].Coordinates = &models.Coordinates{Lat: c.Lat, Long: c.Long}
			}
		}
	}
	return out
}
