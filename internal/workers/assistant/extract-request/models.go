// internal/workers/assistant/extract-request/models.go
package extractrequest

import "assistant-workers/internal/models"

type Input struct {
	Message         string                  `json:"message"`
	SessionDefaults *models.SessionDefaults `json:"sessionDefaults,omitempty"`
}

type Output struct {
	ExtractedRequest models.ExtractedRequest `json:"extractedRequest"`
	HasDate          bool                    `json:"hasDate"`
}
