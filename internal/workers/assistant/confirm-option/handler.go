// internal/workers/assistant/confirm-option/handler.go
package confirmoption

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/models"
	"assistant-workers/internal/sinks"
)

const (
	TaskType = "confirm-option"
)

var (
	ErrInputValidation          = errors.New("INPUT_VALIDATION_FAILED")
	ErrOptionConfirmationFailed = errors.New("OPTION_CONFIRMATION_FAILED")
)

type Booker interface {
	Confirm(option models.Option, attendees []string) (*sinks.Confirmation, error)
}

type EmailSender interface {
	Send(ctx context.Context, msg sinks.EmailMessage) (string, error)
}

type SMSSender interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

type EventPublisher interface {
	PublishOptionConfirmed(ctx context.Context, payload sinks.OptionConfirmedPayload) (string, error)
}

// Dependencies groups the sinks. Email, SMS and Events may be nil.
type Dependencies struct {
	Booker Booker
	Email  EmailSender
	SMS    SMSSender
	Events EventPublisher
}

type Handler struct {
	config     *Config
	deps       Dependencies
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	log = logger.OrNoOp(log).WithFields(map[string]interface{}{
		"taskType": TaskType,
	})
	if deps.Booker == nil {
		deps.Booker = sinks.NewBooker(nil)
	}
	return &Handler{
		config:     config,
		deps:       deps,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("Processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if len(h.config.InputSchema) > 0 {
		vars, err := job.GetVariablesAsMap()
		if err == nil {
			err = validation.ValidateAgainstSchema(h.config.InputSchema, vars)
		}
		if err != nil {
			h.failJob(ctx, client, job, fmt.Errorf("%w: %v", ErrInputValidation, err))
			return
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, fmt.Errorf("%w: parse input: %v", ErrInputValidation, err))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// execute confirms the option, then notifies. Notification and event failures
// are logged and reported in the output; only the confirmation itself can fail the job.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	attendees := input.AttendeeEmails
	if len(attendees) == 0 {
		attendees = h.config.DefaultAttendees
	}

	conf, err := h.deps.Booker.Confirm(input.Option, attendees)
	if err != nil {
		if errors.Is(err, sinks.ErrInvalidOption) {
			return nil, fmt.Errorf("%w: %v", ErrInputValidation, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrOptionConfirmationFailed, err)
	}

	output := &Output{
		ConfirmationID: conf.ConfirmationID,
		Success:        true,
		Status:         conf.Status,
		Instructions:   conf.Instructions,
		EventTitle:     conf.EventTitle,
		CalendarLink:   conf.CalendarLink,
	}

	if h.config.EmailEnabled && h.deps.Email != nil {
		if _, err := h.deps.Email.Send(ctx, sinks.RenderInvitation(conf, input.Option)); err != nil {
			h.logger.Warn("Invitation email failed", map[string]interface{}{
				"confirmationId": conf.ConfirmationID,
				"error":          err.Error(),
			})
		} else {
			output.Notified.Email = true
		}
	}

	if h.config.SMSEnabled && h.deps.SMS != nil && input.OrganiserPhone != "" {
		msg := sinks.ConfirmationSMS(conf, input.Option.Restaurant.Name)
		if _, err := h.deps.SMS.Send(ctx, input.OrganiserPhone, msg); err != nil {
			h.logger.Warn("Confirmation SMS failed", map[string]interface{}{
				"confirmationId": conf.ConfirmationID,
				"error":          err.Error(),
			})
		} else {
			output.Notified.SMS = true
		}
	}

	if h.deps.Events != nil {
		eventID, err := h.deps.Events.PublishOptionConfirmed(ctx, sinks.OptionConfirmedPayload{
			Confirmation: conf,
			Option:       input.Option,
		})
		if err != nil {
			h.logger.Warn("Failed to publish confirmation event", map[string]interface{}{
				"confirmationId": conf.ConfirmationID,
				"error":          err.Error(),
			})
		}
		output.EventID = eventID
	}

	h.logger.Info("Option confirmed", map[string]interface{}{
		"confirmationId": conf.ConfirmationID,
		"restaurant":     input.Option.Restaurant.Name,
		"date":           input.Option.Date,
		"time":           input.Option.Time,
		"emailSent":      output.Notified.Email,
		"smsSent":        output.Notified.SMS,
	})
	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	var stdErr *apperrors.StandardError
	switch {
	case errors.Is(err, ErrInputValidation):
		stdErr = apperrors.NewInputValidationError(err.Error())
	case errors.Is(err, ErrOptionConfirmationFailed):
		stdErr = apperrors.NewOptionConfirmationFailedError(err)
	default:
		stdErr = apperrors.NewInternalError(err)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
