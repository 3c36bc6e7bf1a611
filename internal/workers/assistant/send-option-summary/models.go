// internal/workers/assistant/send-option-summary/models.go
package sendoptionsummary

import "assistant-workers/internal/models"

type Input struct {
	Recipients []string        `json:"recipients,omitempty"`
	Location   string          `json:"location"`
	Options    []models.Option `json:"options"`
}

type Output struct {
	MessageID      string `json:"messageId,omitempty"`
	Sent           bool   `json:"sent"`
	RecipientCount int    `json:"recipientCount"`
	Subject        string `json:"subject,omitempty"`
}
