// Package webhook implements the Notifier port: it formats a chat-provider
// payload, POSTs it, and spools undelivered messages to disk.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/axi0m/ratatoskr/internal/domain/model"
	"github.com/axi0m/ratatoskr/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Notifier)(nil)

type discordPayload struct {
	Content string `json:"content"`
}

type slackPayload struct {
	Text string `json:"text"`
}

type msteamsPayload struct {
	Text string `json:"Text"`
}

type rocketchatPayload struct {
	Emoji       string                 `json:"emoji"`
	Attachments []rocketchatAttachment `json:"attachments"`
}

type rocketchatAttachment struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Color string `json:"color"`
}

// Notifier delivers notifications to a single webhook URL for one chat
// provider. Failed deliveries are appended to the spool before the error is
// returned, so no message is silently lost.
type Notifier struct {
	client     *http.Client
	webhookURL string
	provider   model.ChatProvider
	spool      *Spool
}

// NewNotifier creates a Notifier posting to webhookURL with the payload shape
// of the given provider, spooling failures at spoolPath.
func NewNotifier(webhookURL string, provider model.ChatProvider, spoolPath string) *Notifier {
	return &Notifier{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
		provider:   provider,
		spool:      NewSpool(spoolPath),
	}
}

// Notify POSTs one message. Success is the 2xx class: most providers answer
// 200, Discord answers 204. Any other status spools the message and returns a
// DeliveryError carrying the status for the caller's retry decision.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(n.payload(text))
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", n.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.spoolFailed(text)
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		n.spoolFailed(text)
		return &driven.DeliveryError{StatusCode: resp.StatusCode}
	}

	return nil
}

func (n *Notifier) payload(text string) any {
	switch n.provider {
	case model.ChatMSTeams:
		return msteamsPayload{Text: text}
	case model.ChatSlack:
		return slackPayload{Text: text}
	case model.ChatDiscord:
		return discordPayload{Content: text}
	case model.ChatRocketChat:
		return rocketchatPayload{
			Emoji: ":chipmunk:",
			Attachments: []rocketchatAttachment{
				{Title: "ratatoskr notify", Text: text, Color: "#764FA5"},
			},
		}
	}
	// Providers are validated at startup; an unknown value here still gets
	// the message across on the most common shape.
	return slackPayload{Text: text}
}

func (n *Notifier) spoolFailed(text string) {
	if err := n.spool.Append(text); err != nil {
		slog.Error("failed to spool undelivered message", "error", err)
	}
}
