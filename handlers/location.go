package handlers

import (
	"context"
	"log/slog"

	"github.com/bendaklara/restaurantsaround/models"
)

func (b *Bot) handleLocation(ctx context.Context, senderID string, loc models.Coordinates) {
	for _, text := range b.LocationReplies(ctx, loc) {
		b.send(ctx, textMessage(senderID, text))
	}
}

// LocationReplies resolves loc, searches places at its postal code and
// returns the reply texts in send order. Any failing stage ends the pipeline
// with a single explanatory text.
func (b *Bot) LocationReplies(ctx context.Context, loc models.Coordinates) []string {
	addr, err := b.geocoder.Resolve(ctx, loc.Lat, loc.Long)
	if err != nil {
		slog.Warn("Reverse geocoding failed", "lat", loc.Lat, "long", loc.Long, "error", err)
		return []string{geocodeFailureText(err)}
	}
	if !addr.HasPostalCode() {
		slog.Info("No zip at location", "country", addr.Country, "city", addr.City)
		return []string{noZipText(addr)}
	}

	query := models.PlaceQuery{
		Category:   b.opts.SearchCategory,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
	places, err := b.places.SearchPlaces(ctx, query)
	if err != nil {
		slog.Warn("Place search failed", "query", query.String(), "error", err)
		return []string{searchFailureText(err)}
	}

	matches := models.MatchPostalCode(places, addr.PostalCode, b.opts.MaxPlaces)
	slog.Info("Place search finished",
		"zip", addr.PostalCode,
		"results", len(places),
		"matches", len(matches),
	)
	if len(matches) == 0 {
		return []string{noRestaurantsText}
	}

	replies := make([]string, 0, len(matches)+1)
	replies = append(replies, formatAddress(addr))
	for _, p := range matches {
		replies = append(replies, formatPlace(p))
	}
	return replies
}
