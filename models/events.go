package models

// Event kinds, one per webhook payload variant.
const (
	KindAuthentication = "authentication"
	KindMessage        = "message"
	KindDelivery       = "delivery"
	KindPostback       = "postback"
	KindRead           = "read"
	KindAccountLink    = "account_linking"
	KindUnknown        = "unknown"
)

// EventMeta holds the fields every messaging event carries.
type EventMeta struct {
	PageID      string
	SenderID    string
	RecipientID string
	Timestamp   int64
}

// Event is a classified messaging event. The set of implementations is closed;
// handlers switch on the concrete type.
type Event interface {
	Kind() string
	Meta() EventMeta
	event()
}

type AuthenticationEvent struct {
	EventMeta
	Ref string
}

type MessageEvent struct {
	EventMeta
	Message Message
}

type DeliveryEvent struct {
	EventMeta
	MIDs      []string
	Watermark int64
	Seq       int64
}

type PostbackEvent struct {
	EventMeta
	Title   string
	Payload string
}

type ReadEvent struct {
	EventMeta
	Watermark int64
	Seq       int64
}

type AccountLinkEvent struct {
	EventMeta
	Status            string
	AuthorizationCode string
}

// UnknownEvent carries none of the known payloads.
type UnknownEvent struct {
	EventMeta
}

func (e AuthenticationEvent) Kind() string { return KindAuthentication }
func (e MessageEvent) Kind() string        { return KindMessage }
func (e DeliveryEvent) Kind() string       { return KindDelivery }
func (e PostbackEvent) Kind() string       { return KindPostback }
func (e ReadEvent) Kind() string           { return KindRead }
func (e AccountLinkEvent) Kind() string    { return KindAccountLink }
func (e UnknownEvent) Kind() string        { return KindUnknown }

func (m EventMeta) Meta() EventMeta { return m }

func (AuthenticationEvent) event() {}
func (MessageEvent) event()        {}
func (DeliveryEvent) event()       {}
func (PostbackEvent) event()       {}
func (ReadEvent) event()           {}
func (AccountLinkEvent) event()    {}
func (UnknownEvent) event()        {}

// Message is the payload of a message event. Text and attachments are not
// expected together; text takes precedence when both are set.
type Message struct {
	MID               string
	AppID             int64
	Metadata          string
	Text              string
	IsEcho            bool
	QuickReplyPayload string
	Attachments       []Attachment
}

// Attachment is a message attachment. Coordinates is set for location shares.
type Attachment struct {
	Type        string
	URL         string
	Coordinates *Coordinates
}

// Coordinates are decimal degrees.
type Coordinates struct {
	Lat  float64
	Long float64
}

// Location returns the coordinates of the first attachment, if it has any.
func (m Message) Location() (Coordinates, bool) {
	if len(m.Attachments) == 0 || m.Attachments[0].Coordinates == nil {
		return Coordinates{}, false
	}
	return *m.Attachments[0].Coordinates, true
}
