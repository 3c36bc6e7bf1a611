// internal/workers/assistant/classify-intent/handler.go
package classifyintent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/models"
)

const (
	TaskType = "classify-intent"
)

var (
	ErrInputValidation = errors.New("INPUT_VALIDATION_FAILED")
)

// IntentRouter never fails; a broken LLM strategy degrades to keywords inside the router.
type IntentRouter interface {
	Classify(ctx context.Context, text string) models.Classification
}

type Handler struct {
	config     *Config
	router     IntentRouter
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, router IntentRouter, log logger.Logger) *Handler {
	log = logger.OrNoOp(log).WithFields(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		router:     router,
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

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	if len(h.config.InputSchema) > 0 {
		vars, err := job.GetVariablesAsMap()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputValidation, err)
		}
		if err := validation.ValidateAgainstSchema(h.config.InputSchema, vars); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputValidation, err)
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, fmt.Errorf("%w: parse input: %v", ErrInputValidation, err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInputValidation)
	}

	result := h.router.Classify(ctx, message)

	h.logger.Info("Intent classified", map[string]interface{}{
		"intent":     string(result.Intent),
		"confidence": result.Confidence,
		"strategy":   result.Strategy,
	})

	return &Output{
		Intent:     string(result.Intent),
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
		Strategy:   result.Strategy,
		Entities:   result.Entities,
	}, nil
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
	stdErr := apperrors.NewIntentParsingFailedError(err)
	if errors.Is(err, ErrInputValidation) {
		stdErr = apperrors.NewInputValidationError(err.Error())
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
