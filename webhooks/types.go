package webhooks

// WebhookEvent represents the main webhook payload from Facebook
type WebhookEvent struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents a page entry in the webhook
type Entry struct {
	ID        string      `json:"id"`
	Time      int64       `json:"time"`
	Messaging []Messaging `json:"messaging,omitempty"`
}

// Messaging represents a messaging event. Exactly one payload pointer is
// expected to be set.
type Messaging struct {
	Sender         User            `json:"sender"`
	Recipient      User            `json:"recipient"`
	Timestamp      int64           `json:"timestamp"`
	Optin          *Optin          `json:"optin,omitempty"`
	Message        *Message        `json:"message,omitempty"`
	Delivery       *Delivery       `json:"delivery,omitempty"`
	Postback       *Postback       `json:"postback,omitempty"`
	Read           *Read           `json:"read,omitempty"`
	AccountLinking *AccountLinking `json:"account_linking,omitempty"`
}

// User represents a Facebook user or page
type User struct {
	ID string `json:"id"`
}

// Optin is sent by the "Send to Messenger" plugin
type Optin struct {
	Ref string `json:"ref"`
}

// Message represents a message
type Message struct {
	MID         string       `json:"mid"`
	AppID       int64        `json:"app_id,omitempty"`
	Metadata    string       `json:"metadata,omitempty"`
	Text        string       `json:"text"`
	IsEcho      bool         `json:"is_echo,omitempty"`
	QuickReply  *QuickReply  `json:"quick_reply,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// QuickReply represents a quick reply
type QuickReply struct {
	Payload string `json:"payload"`
}

// Attachment represents a message attachment
type Attachment struct {
	Type    string  `json:"type"`
	Payload Payload `json:"payload"`
}

// Payload represents attachment payload
type Payload struct {
	URL         string       `json:"url,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Coordinates struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

type Delivery struct {
	MIDs      []string `json:"mids"`
	Watermark int64    `json:"watermark"`
	Seq       int64    `json:"seq"`
}

type Postback struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

type Read struct {
	Watermark int64 `json:"watermark"`
	Seq       int64 `json:"seq"`
}

type AccountLinking struct {
	Status            string `json:"status"`
	AuthorizationCode string `json:"authorization_code,omitempty"`
}
