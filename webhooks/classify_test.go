package webhooks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bendaklara/restaurantsaround/models"
)

func decodeMessaging(t *testing.T, raw string) Messaging {
	t.Helper()
	var m Messaging
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestClassifyVariants(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		kind string
	}{
		{"optin", `{"optin":{"ref":"PASS_THROUGH"}}`, models.KindAuthentication},
		{"message", `{"message":{"mid":"m1","text":"hi"}}`, models.KindMessage},
		{"delivery", `{"delivery":{"mids":["m1"],"watermark":10,"seq":1}}`, models.KindDelivery},
		{"postback", `{"postback":{"title":"Get Started","payload":"GET_STARTED"}}`, models.KindPostback},
		{"read", `{"read":{"watermark":10,"seq":2}}`, models.KindRead},
		{"account linking", `{"account_linking":{"status":"linked","authorization_code":"abc"}}`, models.KindAccountLink},
		{"none", `{}`, models.KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := Classify("page-1", decodeMessaging(t, tc.raw))
			assert.Equal(t, tc.kind, ev.Kind())
			assert.Equal(t, "page-1", ev.Meta().PageID)
		})
	}
}

func TestClassifyFirstPayloadWins(t *testing.T) {
	m := decodeMessaging(t, `{"optin":{"ref":"r"},"message":{"mid":"m1","text":"hi"}}`)
	assert.IsType(t, models.AuthenticationEvent{}, Classify("p", m))

	m = decodeMessaging(t, `{"delivery":{"mids":["m1"]},"read":{"watermark":5}}`)
	assert.IsType(t, models.DeliveryEvent{}, Classify("p", m))
}

func TestClassifyLocationMessage(t *testing.T) {
	m := decodeMessaging(t, `{
		"sender":{"id":"user-1"},
		"recipient":{"id":"page-1"},
		"timestamp":1458692752478,
		"message":{
			"mid":"mid.1457764197618:41d102a3e1ae206a38",
			"attachments":[{"type":"location","payload":{"coordinates":{"lat":47.5115,"long":19.02876}}}]
		}
	}`)

	ev, ok := Classify("page-1", m).(models.MessageEvent)
	require.True(t, ok)
	assert.Equal(t, "user-1", ev.SenderID)
	assert.Equal(t, "page-1", ev.RecipientID)
	assert.Equal(t, int64(1458692752478), ev.Timestamp)

	loc, ok := ev.Message.Location()
	require.True(t, ok)
	assert.InDelta(t, 47.5115, loc.Lat, 1e-9)
	assert.InDelta(t, 19.02876, loc.Long, 1e-9)
}

func TestClassifyEchoAndQuickReply(t *testing.T) {
	m := decodeMessaging(t, `{"message":{"mid":"m2","is_echo":true,"app_id":1517776481860111,"metadata":"DEVELOPER_DEFINED_METADATA","text":"x"}}`)
	ev := Classify("p", m).(models.MessageEvent)
	assert.True(t, ev.Message.IsEcho)
	assert.Equal(t, int64(1517776481860111), ev.Message.AppID)
	assert.Equal(t, "DEVELOPER_DEFINED_METADATA", ev.Message.Metadata)

	m = decodeMessaging(t, `{"message":{"mid":"m3","text":"Let's get started!","quick_reply":{"payload":"YES"}}}`)
	ev = Classify("p", m).(models.MessageEvent)
	assert.Equal(t, "YES", ev.Message.QuickReplyPayload)
}

func TestClassifyImageAttachmentHasNoLocation(t *testing.T) {
	m := decodeMessaging(t, `{"message":{"mid":"m4","attachments":[{"type":"image","payload":{"url":"https://example.com/a.png"}}]}}`)
	ev := Classify("p", m).(models.MessageEvent)
	require.Len(t, ev.Message.Attachments, 1)
	assert.Equal(t, "https://example.com/a.png", ev.Message.Attachments[0].URL)

	_, ok := ev.Message.Location()
	assert.False(t, ok)
}
