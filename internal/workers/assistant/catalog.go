// internal/workers/assistant/catalog.go
package assistant

import (
	classifyintent "assistant-workers/internal/workers/assistant/classify-intent"
	confirmoption "assistant-workers/internal/workers/assistant/confirm-option"
	extractrequest "assistant-workers/internal/workers/assistant/extract-request"
	planoptions "assistant-workers/internal/workers/assistant/plan-options"
	sendoptionsummary "assistant-workers/internal/workers/assistant/send-option-summary"
	"assistant-workers/pkg/registry"
)

const (
	Category = "assistant"
	Workflow = "team-dinner-planning"
)

type schema = map[string]interface{}

func object(required []string, properties schema) schema {
	req := make([]interface{}, len(required))
	for i, r := range required {
		req[i] = r
	}
	return schema{
		"type":       "object",
		"required":   req,
		"properties": properties,
	}
}

func nonEmptyString() schema {
	return schema{"type": "string", "minLength": 1}
}

func sessionDefaultsSchema() schema {
	return schema{
		"type": "object",
		"properties": schema{
			"teamMembers":     schema{"type": "array", "items": schema{"type": "string"}},
			"teamSize":        schema{"type": "integer", "minimum": 1, "maximum": 50},
			"defaultLocation": schema{"type": "string"},
		},
	}
}

func optionSchema() schema {
	return object([]string{"restaurant", "date", "time"}, schema{
		"restaurant": object([]string{"name"}, schema{
			"name":   nonEmptyString(),
			"rating": schema{"type": "number", "minimum": 0, "maximum": 5},
			"phone":  schema{"type": "string"},
		}),
		"date":               schema{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"time":               schema{"type": "string", "pattern": `^\d{2}:\d{2}$`},
		"availableAttendees": schema{"type": "integer", "minimum": 0},
		"totalAttendees":     schema{"type": "integer", "minimum": 0},
	})
}

// Catalog describes every worker this service registers. It is the source the
// registry file is synced from.
func Catalog() []registry.Activity {
	return []registry.Activity{
		{
			ID:                   classifyintent.TaskType,
			DisplayName:          "Classify Intent",
			Description:          "Routes a free-text request to an intent with a confidence and the strategy that produced it",
			Category:             Category,
			Version:              "1.0.0",
			TaskType:             classifyintent.TaskType,
			ImplementationStatus: registry.StatusCompleted,
			InputSchema: object([]string{"message"}, schema{
				"message": nonEmptyString(),
			}),
			OutputSchema: object([]string{"intent", "confidence", "strategy"}, schema{
				"intent":     schema{"type": "string", "enum": []interface{}{"RESTAURANT_BOOKING", "EMAIL_COMMUNICATION", "CALENDAR_SCHEDULING", "EVENT_PLANNING", "GENERAL_TASK"}},
				"confidence": schema{"type": "number", "minimum": 0, "maximum": 1},
				"strategy":   schema{"type": "string"},
			}),
			ErrorCodes: []string{"INPUT_VALIDATION_FAILED", "INTENT_PARSING_FAILED"},
			Timeout:    "10s",
			Retries:    3,
			Workflows:  []string{Workflow},
			Tags:       []string{"intent", "nlp"},
		},
		{
			ID:                   extractrequest.TaskType,
			DisplayName:          "Extract Request",
			Description:          "Extracts location, date, party size and preferences from a request, falling back to session defaults",
			Category:             Category,
			Version:              "1.0.0",
			TaskType:             extractrequest.TaskType,
			ImplementationStatus: registry.StatusCompleted,
			InputSchema: object([]string{"message"}, schema{
				"message":         schema{"type": "string"},
				"sessionDefaults": sessionDefaultsSchema(),
			}),
			OutputSchema: object([]string{"extractedRequest", "hasDate"}, schema{
				"extractedRequest": schema{"type": "object"},
				"hasDate":          schema{"type": "boolean"},
			}),
			ErrorCodes: []string{"INPUT_VALIDATION_FAILED"},
			Timeout:    "5s",
			Retries:    3,
			Workflows:  []string{Workflow},
			Tags:       []string{"extraction"},
		},
		{
			ID:                   planoptions.TaskType,
			DisplayName:          "Plan Options",
			Description:          "Produces ranked restaurant, date and time options from restaurant and calendar sources",
			Category:             Category,
			Version:              "1.0.0",
			TaskType:             planoptions.TaskType,
			ImplementationStatus: registry.StatusCompleted,
			InputSchema: object([]string{"message"}, schema{
				"message":         schema{"type": "string"},
				"sessionDefaults": sessionDefaultsSchema(),
				"targetCount":     schema{"type": "integer", "minimum": 0},
			}),
			OutputSchema: object([]string{"status", "options", "optionCount"}, schema{
				"status":      schema{"type": "string", "enum": []interface{}{"OPTIONS", "NO_OPTIONS", "AVAILABILITY", "HELP"}},
				"options":     schema{"type": "array", "items": optionSchema()},
				"optionCount": schema{"type": "integer", "minimum": 0},
				"summary":     schema{"type": "string"},
			}),
			ErrorCodes: []string{"INPUT_VALIDATION_FAILED", "RESTAURANT_SOURCE_FAILED", "AVAILABILITY_SOURCE_FAILED"},
			Timeout:    "30s",
			Retries:    3,
			Workflows:  []string{Workflow},
			Tags:       []string{"planning", "restaurants", "calendar"},
		},
		{
			ID:                   sendoptionsummary.TaskType,
			DisplayName:          "Send Option Summary",
			Description:          "Emails the planned options to the team",
			Category:             Category,
			Version:              "1.0.0",
			TaskType:             sendoptionsummary.TaskType,
			ImplementationStatus: registry.StatusCompleted,
			InputSchema: object([]string{"options"}, schema{
				"recipients": schema{"type": "array", "items": schema{"type": "string"}},
				"location":   schema{"type": "string"},
				"options":    schema{"type": "array", "minItems": 1, "items": optionSchema()},
			}),
			OutputSchema: object([]string{"sent", "recipientCount"}, schema{
				"messageId":      schema{"type": "string"},
				"sent":           schema{"type": "boolean"},
				"recipientCount": schema{"type": "integer", "minimum": 0},
			}),
			ErrorCodes: []string{"INPUT_VALIDATION_FAILED", "NOTIFICATION_SEND_FAILED"},
			Timeout:    "15s",
			Retries:    3,
			Workflows:  []string{Workflow},
			Tags:       []string{"notification", "email"},
		},
		{
			ID:                   confirmoption.TaskType,
			DisplayName:          "Confirm Option",
			Description:          "Confirms the chosen option, builds the calendar invite and notifies attendees",
			Category:             Category,
			Version:              "1.0.0",
			TaskType:             confirmoption.TaskType,
			ImplementationStatus: registry.StatusCompleted,
			InputSchema: object([]string{"option"}, schema{
				"option":         optionSchema(),
				"attendeeEmails": schema{"type": "array", "items": schema{"type": "string"}},
				"organiserPhone": schema{"type": "string"},
			}),
			OutputSchema: object([]string{"confirmationId", "success", "status"}, schema{
				"confirmationId": schema{"type": "string", "pattern": `^BOOK_\d{14}$`},
				"success":        schema{"type": "boolean"},
				"status":         schema{"type": "string"},
				"calendarLink":   schema{"type": "string"},
			}),
			ErrorCodes: []string{"INPUT_VALIDATION_FAILED", "OPTION_CONFIRMATION_FAILED"},
			Timeout:    "15s",
			Retries:    3,
			Workflows:  []string{Workflow},
			Tags:       []string{"booking", "notification"},
		},
	}
}

// TaskTypes lists the catalog task types in registration order.
func TaskTypes() []string {
	catalog := Catalog()
	out := make([]string, len(catalog))
	for i, a := range catalog {
		out[i] = a.TaskType
	}
	return out
}
