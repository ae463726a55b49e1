package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is a reverse geocoding result. Any field may be empty.
type Address struct {
	Street      string `json:"street"`
	City        string `json:"city"`
	PostalCode  string `json:"zip"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// HasPostalCode reports whether the address can be used for a place search.
func (a Address) HasPostalCode() bool {
	return a.PostalCode != ""
}

// Place is a point of interest returned by the Graph search.
type Place struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"zip"`
}

// PlaceQuery selects places of one category near a postal code.
type PlaceQuery struct {
	Category   string
	PostalCode string
	Country    string
}

// String renders the query in the form the pages search endpoint expects.
func (q PlaceQuery) String() string {
	return fmt.Sprintf("%s,%s %s", q.Category, q.PostalCode, q.Country)
}

// MatchPostalCode returns, in input order, at most limit places whose postal
// code equals postalCode exactly.
func MatchPostalCode(places []Place, postalCode string, limit int) []Place {
	var matches []Place
	for _, p := range places {
		if len(matches) >= limit {
			break
		}
		if p.PostalCode != "" && p.PostalCode == postalCode {
			matches = append(matches, p)
		}
	}
	return matches
}

// QuickReply is one tappable option attached to an outbound message.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title,omitempty"`
	Payload     string `json:"payload,omitempty"`
}

// OutboundMessage is a single Send API call.
type OutboundMessage struct {
	RecipientID  string
	Text         string
	QuickReplies []QuickReply
	Metadata     string
}

// ProcessedEvent marks a message id as handled so redeliveries are dropped.
type ProcessedEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventKey    string             `bson:"event_key" json:"event_key"`
	Kind        string             `bson:"kind" json:"kind"`
	PageID      string             `bson:"page_id" json:"page_id"`
	ProcessedAt time.Time          `bson:"processed_at" json:"processed_at"` // TTL index
}
