// Package agents routes typed intents to an agent backend. The backend
// is descriptive only: database mutations stay with the calling service,
// so dispatch results never gate booking correctness.
package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/aurorahealth/medscheduler/internal/content"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// Intent identifies the operation an agent is being told about.
type Intent string

const (
	IntentBook                 Intent = "book"
	IntentReschedule           Intent = "reschedule"
	IntentCancel               Intent = "cancel"
	IntentScheduleReminder     Intent = "schedule-reminder"
	IntentSendImmediate        Intent = "send-immediate"
	IntentProcessQuestionnaire Intent = "process-questionnaire"
)

// Result is the uniform envelope returned for every dispatch.
type Result struct {
	Status  string         `json:"status"`
	Agent   string         `json:"agent"`
	Task    string         `json:"task"`
	Output  string         `json:"result"`
	Context map[string]any `json:"context"`
}

// Dispatcher executes an intent against an agent backend. Dispatch never
// returns an error; failures degrade inside the implementation.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent Intent, task string, taskCtx map[string]any) Result
}

// agentName maps each intent to the agent label used in result envelopes.
func agentName(intent Intent) string {
	switch intent {
	case IntentBook, IntentReschedule, IntentCancel:
		return "BookingAgent"
	case IntentScheduleReminder, IntentSendImmediate:
		return "ReminderAgent"
	case IntentProcessQuestionnaire:
		return "PreVisitAgent"
	default:
		return "BookingAgent"
	}
}

// MockDispatcher logs the call and synthesizes a canned result.
type MockDispatcher struct {
	logger *logging.Logger
}

// NewMockDispatcher builds the deterministic mock backend.
func NewMockDispatcher(logger *logging.Logger) *MockDispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &MockDispatcher{logger: logger}
}

func (d *MockDispatcher) Dispatch(_ context.Context, intent Intent, task string, taskCtx map[string]any) Result {
	agent := agentName(intent)
	d.logger.Info("agent dispatch", "agent", agent, "intent", string(intent), "task", task)
	if taskCtx == nil {
		taskCtx = map[string]any{}
	}
	return Result{
		Status:  "success",
		Agent:   agent,
		Task:    task,
		Output:  fmt.Sprintf("Mock execution of %s by %s", task, agent),
		Context: taskCtx,
	}
}

// LLMDispatcher forwards the task description to the LLM runtime. The
// model's reply becomes the result text; any failure degrades to the
// mock output so callers always get an envelope.
type LLMDispatcher struct {
	llm     content.LLMClient
	mock    *MockDispatcher
	timeout time.Duration
	logger  *logging.Logger
}

// NewLLMDispatcher builds the LLM-backed dispatcher.
func NewLLMDispatcher(llm content.LLMClient, logger *logging.Logger) *LLMDispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMDispatcher{
		llm:     llm,
		mock:    NewMockDispatcher(logger),
		timeout: 15 * time.Second,
		logger:  logger,
	}
}

func (d *LLMDispatcher) Dispatch(ctx context.Context, intent Intent, task string, taskCtx map[string]any) Result {
	if d.llm == nil {
		return d.mock.Dispatch(ctx, intent, task, taskCtx)
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	agent := agentName(intent)
	resp, err := d.llm.Complete(callCtx, content.LLMRequest{
		System: []string{fmt.Sprintf("You are %s, an assistant for a medical scheduling service. Acknowledge the operation in one short sentence.", agent)},
		Messages: []content.ChatMessage{
			{Role: content.ChatRoleUser, Content: task},
		},
		MaxTokens: 128,
	})
	if err != nil || resp.Text == "" {
		d.logger.Warn("agent dispatch: llm unavailable, using mock output", "agent", agent, "error", err)
		return d.mock.Dispatch(ctx, intent, task, taskCtx)
	}

	if taskCtx == nil {
		taskCtx = map[string]any{}
	}
	return Result{
		Status:  "success",
		Agent:   agent,
		Task:    task,
		Output:  resp.Text,
		Context: taskCtx,
	}
}

// Select picks the dispatch strategy once at startup. A nil LLM client
// always yields the mock, regardless of configuration.
func Select(useMock bool, llm content.LLMClient, logger *logging.Logger) Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if useMock || llm == nil {
		if !useMock {
			logger.Warn("agents: llm runtime unavailable, falling back to mock dispatcher")
		}
		return NewMockDispatcher(logger)
	}
	return NewLLMDispatcher(llm, logger)
}
