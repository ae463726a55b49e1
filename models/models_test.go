package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPostalCodeKeepsOrderAndCap(t *testing.T) {
	places := []Place{
		{ID: "1", Name: "A", PostalCode: "1012"},
		{ID: "2", Name: "B", PostalCode: "1013"},
		{ID: "3", Name: "C", PostalCode: "1012"},
		{ID: "4", Name: "D", PostalCode: "1012"},
		{ID: "5", Name: "E", PostalCode: "1012"},
	}

	got := MatchPostalCode(places, "1012", 3)
	assert.Len(t, got, 3)
	assert.Equal(t, []string{"1", "3", "4"}, ids(got))
}

func TestMatchPostalCodeExactOnly(t *testing.T) {
	places := []Place{
		{ID: "1", PostalCode: "10120"},
		{ID: "2", PostalCode: " 1012"},
		{ID: "3", PostalCode: ""},
	}
	assert.Empty(t, MatchPostalCode(places, "1012", 3))
}

func TestPlaceQueryString(t *testing.T) {
	q := PlaceQuery{Category: "Restaurant", PostalCode: "1012", Country: "Hungary"}
	assert.Equal(t, "Restaurant,1012 Hungary", q.String())
}

func TestMessageLocation(t *testing.T) {
	m := Message{Attachments: []Attachment{{Type: "location", Coordinates: &Coordinates{Lat: 47.5, Long: 19.0}}}}
	loc, ok := m.Location()
	assert.True(t, ok)
	assert.Equal(t, 47.5, loc.Lat)

	_, ok = Message{Attachments: []Attachment{{Type: "image", URL: "https://x"}}}.Location()
	assert.False(t, ok)

	_, ok = Message{}.Location()
	assert.False(t, ok)
}

func TestEventKinds(t *testing.T) {
	cases := map[string]Event{
		KindAuthentication: AuthenticationEvent{},
		KindMessage:        MessageEvent{},
		KindDelivery:       DeliveryEvent{},
		KindPostback:       PostbackEvent{},
		KindRead:           ReadEvent{},
		KindAccountLink:    AccountLinkEvent{},
		KindUnknown:        UnknownEvent{},
	}
	for want, ev := range cases {
		assert.Equal(t, want, ev.Kind())
	}
}

func ids(places []Place) []string {
	out := make([]string, len(places))
	for i, p := range places {
		out[i] = p.ID
	}
	return out
}
