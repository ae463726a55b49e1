package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bendaklara/restaurantsaround/models"
	"github.com/bendaklara/restaurantsaround/services"
)

// Quick reply payloads of the start prompt.
const (
	PayloadYes = "YES"
	PayloadNo  = "NO"
)

const textMetadata = "DEVELOPER_DEFINED_METADATA"

const (
	helpText             = "I am a simple Geolocation bot. When you share your location, I tell you your address using MapQuest and look for restaurants around you. Type start or location to get started!"
	privacyTextFormat    = "Here is the privacy policy: %s"
	declineText          = "Maybe later. Have a nice day!"
	authenticatedText    = "Authentication successful"
	startPromptText      = "Let me know where you are 🏝️ 🏔️ 🌋 🌄 and I will tell you your city 🏙️ and zip code. "
	locationPromptText   = "Let me know where you are by pressing 👇🏿👇🏿👇🏿👇🏿THE BUTTON👇🏿👇🏿👇🏿👇🏿 and sharing your location."
	startAffirmTitle     = "Let's get started!"
	startDeclineTitle    = "No thanks."
	addressTextFormat    = "Your location: %s %s, %s, %s 📧"
	noZipTextFormat      = "You are in %s. No zip found at this location."
	geocodeConnectText   = "Unable to connect to MapQuest servers."
	locationNotFoundText = "Unable to find this location. Statuscode: %s"
	geocodeFailedText    = "Something went wrong. Statuscode: %s"
	noRestaurantsText    = "No restaurants found at this zip code."
	pendingReviewText    = "Sorry, still waiting to pass the review by Facebook to be able to serve you."
	graphAuthText        = "There is a problem with Fb authentication. I cannot respond to your queries right now."
	searchFailedText     = "Something went wrong when I searched Facebook for you. Please type start to restart your search."
)

func startPrompt(recipientID string) models.OutboundMessage {
	return models.OutboundMessage{
		RecipientID: recipientID,
		Text:        startPromptText,
		QuickReplies: []models.QuickReply{
			{ContentType: "text", Title: startAffirmTitle, Payload: PayloadYes},
			{ContentType: "text", Title: startDeclineTitle, Payload: PayloadNo},
		},
	}
}

func locationPrompt(recipientID string) models.OutboundMessage {
	return models.OutboundMessage{
		RecipientID:  recipientID,
		Text:         locationPromptText,
		QuickReplies: []models.QuickReply{{ContentType: "location"}},
	}
}

func textMessage(recipientID, text string) models.OutboundMessage {
	return models.OutboundMessage{RecipientID: recipientID, Text: text, Metadata: textMetadata}
}

func formatAddress(a models.Address) string {
	return fmt.Sprintf(addressTextFormat, a.PostalCode, a.Country, a.City, a.Street)
}

func noZipText(a models.Address) string {
	return fmt.Sprintf(noZipTextFormat, a.Country)
}

func formatPlace(p models.Place) string {
	return strings.Join([]string{p.Name, p.Street, p.City, p.Country}, " ")
}

func geocodeFailureText(err error) string {
	switch {
	case errors.Is(err, services.ErrConnection):
		return geocodeConnectText
	case errors.Is(err, services.ErrBadRequest):
		return fmt.Sprintf(locationNotFoundText, providerCode(err))
	default:
		return fmt.Sprintf(geocodeFailedText, providerCode(err))
	}
}

func searchFailureText(err error) string {
	if errors.Is(err, services.ErrNoResults) {
		return noRestaurantsText
	}

	var perr *services.ProviderError
	if errors.As(err, &perr) && perr.HasCode {
		switch perr.Code {
		case services.GraphCodePendingReview:
			return pendingReviewText
		case services.GraphCodeAuth:
			return graphAuthText
		}
	}
	return searchFailedText
}

func providerCode(err error) string {
	var perr *services.ProviderError
	if errors.As(err, &perr) && perr.HasCode {
		return strconv.Itoa(perr.Code)
	}
	return "unknown"
}
