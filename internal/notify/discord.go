// Package notify posts operational events to a Discord webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	botUsername = "PDF Quiz Notifier"

	ColorError   = 0xFF0000
	ColorSuccess = 0x00FF00
	ColorInfo    = 0x3498DB
)

// Discord embed structures.
type EmbedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"` // ISO8601
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// WebhookPayload is the body Discord expects for webhook requests with embeds.
type WebhookPayload struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []Embed `json:"embeds"`
}

// Discord sends embeds to one webhook. A nil *Discord drops every notification.
type Discord struct {
	webhookURL string
	client     *http.Client
}

// NewDiscord returns a notifier for webhookURL, or nil when the URL is empty.
func NewDiscord(webhookURL string) *Discord {
	if webhookURL == "" {
		log.Println("WARN: DISCORD_WEBHOOK_URL not set. Notifications are disabled.")
		return nil
	}
	return &Discord{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Notify sends embed in the background. Failures are only logged.
func (d *Discord) Notify(embed Embed) {
	if d == nil {
		return
	}
	go func() {
		if err := d.Send(context.Background(), embed); err != nil {
			log.Printf("ERROR: %v", err)
		}
	}()
}

// Send posts embed and waits for Discord to answer.
func (d *Discord) Send(ctx context.Context, embed Embed) error {
	if d == nil {
		return nil
	}
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().Format(time.RFC3339)
	}

	payload, err := json.Marshal(WebhookPayload{
		Username: botUsername,
		Embeds:   []Embed{embed},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal Discord embed payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create Discord embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Discord embed notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord embed notification failed with status %d: %s", resp.StatusCode, string(body))
	}
	log.Printf("INFO: Sent Discord embed notification: %s", embed.Title)
	return nil
}

// ErrorEmbed describes a failed request.
func ErrorEmbed(action string, status int, path string, err error) Embed {
	return Embed{
		Title:       fmt.Sprintf("🚨 Error: %s", action),
		Description: fmt.Sprintf("**Error Details:**\n```%s```", err.Error()),
		Color:       ColorError,
		Fields: []EmbedField{
			{Name: "HTTP Status", Value: fmt.Sprintf("%d", status), Inline: true},
			{Name: "Path", Value: path},
		},
	}
}

// QuizGeneratedEmbed describes a newly generated quiz.
func QuizGeneratedEmbed(fileName string, questions, textRunes int) Embed {
	return Embed{
		Title: "🧠 Quiz Generated",
		Color: ColorInfo,
		Fields: []EmbedField{
			{Name: "Document", Value: fileName},
			{Name: "Questions", Value: fmt.Sprintf("%d", questions), Inline: true},
			{Name: "Extracted Characters", Value: fmt.Sprintf("%d", textRunes), Inline: true},
		},
	}
}

// QuizSubmittedEmbed describes a scored submission.
func QuizSubmittedEmbed(fileName string, correct, total, unanswered int) Embed {
	return Embed{
		Title: "✅ Quiz Submitted",
		Color: ColorSuccess,
		Fields: []EmbedField{
			{Name: "Document", Value: fileName},
			{Name: "Score", Value: fmt.Sprintf("%d / %d", correct, total), Inline: true},
			{Name: "Unanswered", Value: fmt.Sprintf("%d", unanswered), Inline: true},
		},
	}
}
