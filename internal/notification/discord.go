package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// SendDiscordError posts a pipeline failure to a webhook. A blank URL
// disables the notification.
func SendDiscordError(webhookURL, errorMessage string) error {
	if webhookURL == "" {
		return nil
	}
	message := DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 PM2.5 Pipeline Failed",
				Description: errorMessage,
				Color:       16711680, // Red color
			},
		},
	}
	return post(webhookURL, message)
}

// SendDiscordSuccess posts a pipeline completion to a webhook. A blank
// URL disables the notification.
func SendDiscordSuccess(webhookURL, successMessage string) error {
	if webhookURL == "" {
		return nil
	}
	message := DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "✅ PM2.5 Pipeline Completed",
				Description: successMessage,
				Color:       65280, // Green color
			},
		},
	}
	return post(webhookURL, message)
}

func post(webhookURL string, message DiscordMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}
	return nil
}
