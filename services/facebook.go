package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker/v2"

	"github.com/bendaklara/restaurantsaround/config"
	"github.com/bendaklara/restaurantsaround/models"
)

// Messenger sends messages through the Send API with the page access token.
type Messenger struct {
	pageAccessToken string
	baseURL         string
	client          *http.Client
	breaker         *gobreaker.CircuitBreaker[string]
}

// NewMessenger creates a Send API client.
func NewMessenger(cfg *config.Config, client *http.Client) *Messenger {
	return &Messenger{
		pageAccessToken: cfg.PageAccessToken,
		baseURL:         graphBaseURL(cfg),
		client:          client,
		breaker:         newBreaker[string](providerMessenger, cfg.Breaker),
	}
}

type sendRequest struct {
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message sendMessage `json:"message"`
}

type sendMessage struct {
	Text         string              `json:"text,omitempty"`
	QuickReplies []models.QuickReply `json:"quick_replies,omitempty"`
	Metadata     string              `json:"metadata,omitempty"`
}

type sendResponse struct {
	RecipientID string      `json:"recipient_id"`
	MessageID   string      `json:"message_id"`
	Error       *graphError `json:"error"`
}

// Send delivers msg and returns the platform message id.
func (m *Messenger) Send(ctx context.Context, msg models.OutboundMessage) (string, error) {
	return call(ctx, providerMessenger, "messenger.send", m.breaker, func(ctx context.Context) (string, error) {
		return m.send(ctx, msg)
	})
}

func (m *Messenger) send(ctx context.Context, msg models.OutboundMessage) (string, error) {
	var payload sendRequest
	payload.Recipient.ID = msg.RecipientID
	payload.Message = sendMessage{
		Text:         msg.Text,
		QuickReplies: msg.QuickReplies,
		Metadata:     msg.Metadata,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s", m.baseURL, url.QueryEscape(m.pageAccessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", connectionError(providerMessenger, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var result sendResponse
	_ = json.Unmarshal(body, &result)

	if resp.StatusCode != http.StatusOK {
		perr := &ProviderError{Provider: providerMessenger, Kind: ErrUpstreamOther, Message: resp.Status}
		if result.Error != nil {
			perr = classifyGraphError(result.Error)
			perr.Provider = providerMessenger
		}
		slog.Error("Failed calling Send API", "status", resp.StatusCode, "body", string(body))
		return "", perr
	}

	if result.MessageID != "" {
		slog.Info("Successfully sent message", "messageID", result.MessageID, "recipientID", result.RecipientID)
	} else {
		slog.Info("Successfully called Send API", "recipientID", result.RecipientID)
	}
	return result.MessageID, nil
}
