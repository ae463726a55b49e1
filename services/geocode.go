package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/bendaklara/restaurantsaround/config"
	"github.com/bendaklara/restaurantsaround/models"
)

// MapQuest info.statuscode values.
const (
	mapQuestStatusOK         = 0
	mapQuestStatusBadRequest = 400
)

// Geocoder resolves coordinates to postal addresses with the MapQuest
// reverse geocoding API.
type Geocoder struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[models.Address]
}

// NewGeocoder creates a MapQuest client.
func NewGeocoder(cfg *config.Config, client *http.Client) *Geocoder {
	return &Geocoder{
		apiKey:  cfg.GeocodeKey,
		baseURL: strings.TrimRight(cfg.GeocodeAPIURL, "/"),
		client:  client,
		breaker: newBreaker[models.Address](providerMapQuest, cfg.Breaker),
	}
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mapQuestLocation `json:"locations"`
	} `json:"results"`
}

type mapQuestLocation struct {
	Street     string `json:"street"`
	AdminArea5 string `json:"adminArea5"` // city
	AdminArea1 string `json:"adminArea1"` // ISO 3166 country code
	PostalCode string `json:"postalCode"`
}

// Resolve reverse geocodes lat/lon. A successful lookup may still return an
// address without a postal code; callers check Address.HasPostalCode.
func (g *Geocoder) Resolve(ctx context.Context, lat, lon float64) (models.Address, error) {
	return call(ctx, providerMapQuest, "mapquest.reverse", g.breaker, func(ctx context.Context) (models.Address, error) {
		return g.reverse(ctx, lat, lon)
	})
}

func (g *Geocoder) reverse(ctx context.Context, lat, lon float64) (models.Address, error) {
	q := url.Values{}
	q.Set("key", g.apiKey)
	q.Set("location", formatCoordinate(lat)+","+formatCoordinate(lon))
	q.Set("outFormat", "json")
	endpoint := g.baseURL + "/geocoding/v1/reverse?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Address{}, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return models.Address{}, connectionError(providerMapQuest, err)
	}
	defer resp.Body.Close()

	var body mapQuestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Error("Failed to decode MapQuest response", "status", resp.StatusCode, "error", err)
		return models.Address{}, &ProviderError{
			Provider: providerMapQuest,
			Kind:     ErrUpstreamOther,
			Code:     resp.StatusCode,
			HasCode:  true,
			Message:  "undecodable response",
		}
	}

	switch body.Info.StatusCode {
	case mapQuestStatusOK:
	case mapQuestStatusBadRequest:
		return models.Address{}, &ProviderError{
			Provider: providerMapQuest,
			Kind:     ErrBadRequest,
			Code:     body.Info.StatusCode,
			HasCode:  true,
			Message:  strings.Join(body.Info.Messages, "; "),
		}
	default:
		return models.Address{}, &ProviderError{
			Provider: providerMapQuest,
			Kind:     ErrUpstreamOther,
			Code:     body.Info.StatusCode,
			HasCode:  true,
			Message:  strings.Join(body.Info.Messages, "; "),
		}
	}

	var loc mapQuestLocation
	if len(body.Results) > 0 && len(body.Results[0].Locations) > 0 {
		loc = body.Results[0].Locations[0]
	}

	addr := models.Address{
		Street:      loc.Street,
		City:        loc.AdminArea5,
		PostalCode:  loc.PostalCode,
		CountryCode: loc.AdminArea1,
		Country:     CountryName(loc.AdminArea1),
	}

	slog.Debug("Resolved address",
		"zip", addr.PostalCode,
		"country", addr.Country,
		"city", addr.City,
	)
	return addr, nil
}

// CountryName translates an ISO 3166-1 code to its English name. Codes that
// cannot be translated are returned unchanged.
func CountryName(code string) string {
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return code
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
