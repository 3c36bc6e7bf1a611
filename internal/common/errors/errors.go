// internal/common/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"

	ErrCodeIntentParsingFailed ErrorCode = "INTENT_PARSING_FAILED"
	ErrCodeLLMTimeout          ErrorCode = "LLM_TIMEOUT"

	ErrCodeRestaurantSourceFailed   ErrorCode = "RESTAURANT_SOURCE_FAILED"
	ErrCodeAvailabilitySourceFailed ErrorCode = "AVAILABILITY_SOURCE_FAILED"
	ErrCodeNoRestaurantsFound       ErrorCode = "NO_RESTAURANTS_FOUND"
	ErrCodeNoOptionsFound           ErrorCode = "NO_OPTIONS_FOUND"

	ErrCodeOptionConfirmationFailed ErrorCode = "OPTION_CONFIRMATION_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeEventPublishFailed       ErrorCode = "EVENT_PUBLISH_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeCacheError               ErrorCode = "CACHE_ERROR"
	ErrCodeBrokerUnavailable        ErrorCode = "BROKER_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewInputValidationError(details string) *StandardError {
	return newError(ErrCodeInputValidationFailed, "Input validation failed", details, false)
}

func NewIntentParsingFailedError(err error) *StandardError {
	return newError(ErrCodeIntentParsingFailed, "Failed to classify user intent", err.Error(), true)
}

func NewLLMTimeoutError() *StandardError {
	return newError(ErrCodeLLMTimeout, "Language model request timed out", "", true)
}

func NewRestaurantSourceFailedError(source string, err error) *StandardError {
	return newError(ErrCodeRestaurantSourceFailed, "Restaurant lookup failed", err.Error(), true).
		WithMetadata("source", source)
}

func NewAvailabilitySourceFailedError(date string, err error) *StandardError {
	return newError(ErrCodeAvailabilitySourceFailed, "Availability lookup failed", err.Error(), true).
		WithMetadata("date", date)
}

func NewNoRestaurantsFoundError(location string) *StandardError {
	return newError(ErrCodeNoRestaurantsFound, "No restaurants found", fmt.Sprintf("location: %s", location), false)
}

func NewNoOptionsFoundError(reason string) *StandardError {
	return newError(ErrCodeNoOptionsFound, "No suitable restaurant and time combinations found", reason, false)
}

func NewOptionConfirmationFailedError(err error) *StandardError {
	return newError(ErrCodeOptionConfirmationFailed, "Failed to confirm option", err.Error(), true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, fmt.Sprintf("Failed to send %s notification", channel), err.Error(), true)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Search query failed", err.Error(), true).
		WithMetadata("index", index)
}

func NewCacheError(err error) *StandardError {
	return newError(ErrCodeCacheError, "Cache operation failed", err.Error(), false)
}

func NewBrokerError(operation string, err error, retryable bool) *StandardError {
	return newError(ErrCodeBrokerUnavailable, "Zeebe broker request failed", err.Error(), retryable).
		WithMetadata("operation", operation)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// BPMNErrorMapping maps internal codes to the error codes modelled on BPMN boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInputValidationFailed:    "INPUT_VALIDATION_FAILED",
	ErrCodeIntentParsingFailed:      "INTENT_PARSING_FAILED",
	ErrCodeLLMTimeout:               "LLM_TIMEOUT",
	ErrCodeRestaurantSourceFailed:   "RESTAURANT_SOURCE_FAILED",
	ErrCodeAvailabilitySourceFailed: "AVAILABILITY_SOURCE_FAILED",
	ErrCodeNoRestaurantsFound:       "NO_OPTIONS_FOUND",
	ErrCodeNoOptionsFound:           "NO_OPTIONS_FOUND",
	ErrCodeOptionConfirmationFailed: "OPTION_CONFIRMATION_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeEventPublishFailed:       "EVENT_PUBLISH_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:        "RESTAURANT_SOURCE_FAILED",
	ErrCodeCacheError:               "INTERNAL_ERROR",
	ErrCodeBrokerUnavailable:        "INTERNAL_ERROR",
	ErrCodeInternal:                 "INTERNAL_ERROR",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRestaurantSourceFailed,
		ErrCodeAvailabilitySourceFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeBrokerUnavailable,
		ErrCodeNotificationSendFailed,
		ErrCodeIntentParsingFailed:
		return 3

	case ErrCodeOptionConfirmationFailed,
		ErrCodeEventPublishFailed:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// AsStandardError unwraps err to a *StandardError if one is in its chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INTENT") || strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "RESTAURANT") || strings.Contains(codeStr, "AVAILABILITY") || strings.Contains(codeStr, "SEARCH"):
		return "SOURCE"
	case strings.Contains(codeStr, "NO_"):
		return "EMPTY_RESULT"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "EVENT") || strings.Contains(codeStr, "CONFIRMATION"):
		return "SINK"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CACHE") || strings.Contains(codeStr, "BROKER"):
		return "STORAGE"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
