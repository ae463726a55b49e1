package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker/v2"

	"github.com/bendaklara/restaurantsaround/config"
	"github.com/bendaklara/restaurantsaround/models"
)

// GraphClient searches Facebook pages with the worker app access token.
type GraphClient struct {
	accessToken string
	baseURL     string
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker[[]models.Place]
}

// NewGraphClient creates a Graph search client.
func NewGraphClient(cfg *config.Config, client *http.Client) *GraphClient {
	return &GraphClient{
		accessToken: cfg.WorkerAccessToken,
		baseURL:     graphBaseURL(cfg),
		client:      client,
		breaker:     newBreaker[[]models.Place](providerGraph, cfg.Breaker),
	}
}

func graphBaseURL(cfg *config.Config) string {
	return strings.TrimRight(cfg.GraphAPIURL, "/") + "/" + strings.Trim(cfg.GraphAPIVersion, "/")
}

// graphError is the Graph API error envelope. Code is a pointer so a missing
// code can be told apart from code 0.
type graphError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      *int   `json:"code"`
	FBTraceID string `json:"fbtrace_id"`
}

type pageSearchResponse struct {
	Data  *[]graphPage `json:"data"`
	Error *graphError  `json:"error"`
}

type graphPage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location *struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		Country string `json:"country"`
		Zip     string `json:"zip"`
	} `json:"location"`
}

// SearchPlaces runs a pages search for query. An empty data list is
// ErrNoResults; an error envelope maps codes 10 and 190 to ErrUpstreamAuth.
func (g *GraphClient) SearchPlaces(ctx context.Context, query models.PlaceQuery) ([]models.Place, error) {
	return call(ctx, providerGraph, "graph.pages_search", g.breaker, func(ctx context.Context) ([]models.Place, error) {
		return g.search(ctx, query)
	})
}

func (g *GraphClient) search(ctx context.Context, query models.PlaceQuery) ([]models.Place, error) {
	q := url.Values{}
	q.Set("q", query.String())
	q.Set("fields", "name,location")
	q.Set("access_token", g.accessToken)
	endpoint := g.baseURL + "/pages/search?" + q.Encode()

	slog.Debug("Searching pages", "query", query.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, connectionError(providerGraph, err)
	}
	defer resp.Body.Close()

	var body pageSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Error("Failed to decode Graph search response", "status", resp.StatusCode, "error", err)
		return nil, &ProviderError{Provider: providerGraph, Kind: ErrUpstreamOther, Message: "undecodable response"}
	}

	if body.Error != nil {
		return nil, classifyGraphError(body.Error)
	}

	if body.Data == nil {
		return nil, &ProviderError{Provider: providerGraph, Kind: ErrUpstreamOther, Message: "response has no data"}
	}
	if len(*body.Data) == 0 {
		return nil, &ProviderError{Provider: providerGraph, Kind: ErrNoResults}
	}

	places := make([]models.Place, 0, len(*body.Data))
	for _, p := range *body.Data {
		place := models.Place{ID: p.ID, Name: p.Name}
		if p.Location != nil {
			place.Street = p.Location.Street
			place.City = p.Location.City
			place.Country = p.Location.Country
			place.PostalCode = p.Location.Zip
		}
		places = append(places, place)
	}
	return places, nil
}

func classifyGraphError(e *graphError) *ProviderError {
	perr := &ProviderError{Provider: providerGraph, Kind: ErrUpstreamOther, Message: e.Message}
	if e.Code == nil {
		slog.Warn("Graph API error without code", "message", e.Message, "fbtrace_id", e.FBTraceID)
		return perr
	}

	perr.Code = *e.Code
	perr.HasCode = true
	if perr.Code == GraphCodePendingReview || perr.Code == GraphCodeAuth {
		perr.Kind = ErrUpstreamAuth
	}

	slog.Warn("Graph API error",
		"code", perr.Code,
		"type", e.Type,
		"message", e.Message,
		"fbtrace_id", e.FBTraceID,
	)
	return perr
}
