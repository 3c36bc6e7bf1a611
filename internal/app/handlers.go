// internal/app/handlers.go
package app

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"assistant-workers/internal/common/config"
	classifyintent "assistant-workers/internal/workers/assistant/classify-intent"
	confirmoption "assistant-workers/internal/workers/assistant/confirm-option"
	extractrequest "assistant-workers/internal/workers/assistant/extract-request"
	planoptions "assistant-workers/internal/workers/assistant/plan-options"
	sendoptionsummary "assistant-workers/internal/workers/assistant/send-option-summary"
)

// Handlers are the five assistant workers built on one App.
type Handlers struct {
	Classify *classifyintent.Handler
	Extract  *extractrequest.Handler
	Plan     *planoptions.Handler
	Summary  *sendoptionsummary.Handler
	Confirm  *confirmoption.Handler
}

// Handlers builds every worker. schemas maps task type to the input schema
// checked before a job is decoded; it may be nil.
func (a *App) Handlers(schemas map[string]map[string]interface{}) *Handlers {
	cfg := a.Config
	defaults := cfg.Assistant.SessionDefaults().WithFallbacks()

	classifyCfg := classifyintent.LoadConfig()
	classifyCfg.Timeout = workerTimeout(cfg, classifyintent.TaskType, classifyCfg.Timeout)
	classifyCfg.InputSchema = schemas[classifyintent.TaskType]

	extractCfg := extractrequest.LoadConfig()
	extractCfg.Timeout = workerTimeout(cfg, extractrequest.TaskType, extractCfg.Timeout)
	extractCfg.Defaults = defaults
	extractCfg.InputSchema = schemas[extractrequest.TaskType]

	planCfg := planoptions.LoadConfig()
	planCfg.Timeout = workerTimeout(cfg, planoptions.TaskType, planCfg.Timeout)
	planCfg.Defaults = defaults
	planCfg.InputSchema = schemas[planoptions.TaskType]

	summaryCfg := sendoptionsummary.LoadConfig()
	summaryCfg.Timeout = workerTimeout(cfg, sendoptionsummary.TaskType, summaryCfg.Timeout)
	summaryCfg.Enabled = a.Email != nil
	summaryCfg.DefaultRecipients = defaults.TeamMembers
	summaryCfg.InputSchema = schemas[sendoptionsummary.TaskType]

	confirmCfg := confirmoption.LoadConfig()
	confirmCfg.Timeout = workerTimeout(cfg, confirmoption.TaskType, confirmCfg.Timeout)
	confirmCfg.EmailEnabled = a.Email != nil
	confirmCfg.SMSEnabled = a.SMS != nil
	confirmCfg.DefaultAttendees = defaults.TeamMembers
	confirmCfg.InputSchema = schemas[confirmoption.TaskType]

	// Typed nil pointers must not reach the handlers as non-nil interfaces.
	var planEvents planoptions.EventPublisher
	deps := confirmoption.Dependencies{Booker: a.Booker}
	var summaryEmail sendoptionsummary.EmailSender
	if a.Events != nil {
		planEvents = a.Events
		deps.Events = a.Events
	}
	if a.Email != nil {
		deps.Email = a.Email
		summaryEmail = a.Email
	}
	if a.SMS != nil {
		deps.SMS = a.SMS
	}

	return &Handlers{
		Classify: classifyintent.NewHandler(classifyCfg, a.Router, a.Logger),
		Extract:  extractrequest.NewHandler(extractCfg, a.Extractor, a.Logger),
		Plan:     planoptions.NewHandler(planCfg, a.Scheduler, planEvents, a.Logger),
		Summary:  sendoptionsummary.NewHandler(summaryCfg, summaryEmail, a.Logger),
		Confirm:  confirmoption.NewHandler(confirmCfg, deps, a.Logger),
	}
}

// JobHandlers maps task type to the Zeebe job handler.
func (h *Handlers) JobHandlers() map[string]worker.JobHandler {
	return map[string]worker.JobHandler{
		classifyintent.TaskType:    h.Classify.Handle,
		extractrequest.TaskType:    h.Extract.Handle,
		planoptions.TaskType:       h.Plan.Handle,
		sendoptionsummary.TaskType: h.Summary.Handle,
		confirmoption.TaskType:     h.Confirm.Handle,
	}
}

// workerTimeout prefers the configured worker timeout over the handler default.
func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if w, ok := cfg.Workers[taskType]; ok && w.Timeout > 0 {
		return config.GetDuration(w.Timeout)
	}
	return fallback
}
