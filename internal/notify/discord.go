// Package notify delivers wallet change notifications.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"walletScope/internal/model"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 512
)

type discordPayload struct {
	Content string         `json:"content"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Fields []discordField `json:"fields"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Discord posts notifications to a Discord webhook as a single embed.
type Discord struct {
	webhookURL string
	http       *http.Client
	logger     *zap.Logger
}

// NewDiscord builds a webhook notifier. httpClient may be nil.
func NewDiscord(webhookURL string, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) *Discord {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Discord{
		webhookURL: webhookURL,
		http:       httpClient,
		logger:     logger.Named("discord"),
	}
}

// SendNotification posts n to the webhook. Any non-2xx status is an error.
func (d *Discord) SendNotification(ctx context.Context, n model.Notification) error {
	body, err := json.Marshal(discordPayloadFrom(n))
	if err != nil {
		return fmt.Errorf("encode discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, string(msg))
	}

	d.logger.Debug("webhook delivered", zap.Int("status", resp.StatusCode), zap.Int("fields", len(n.Fields)))
	return nil
}

func discordPayloadFrom(n model.Notification) discordPayload {
	fields := make([]discordField, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, discordField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return discordPayload{
		Content: n.Content,
		Embeds:  []discordEmbed{{Fields: fields}},
	}
}
