package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aurorahealth/medscheduler/internal/content"
)

type stubLLM struct {
	text string
	err  error
	req  content.LLMRequest
}

func (s *stubLLM) Complete(_ context.Context, req content.LLMRequest) (content.LLMResponse, error) {
	s.req = req
	return content.LLMResponse{Text: s.text}, s.err
}

func TestMockDispatcherEnvelope(t *testing.T) {
	d := NewMockDispatcher(nil)
	res := d.Dispatch(context.Background(), IntentBook, "Book an appointment for Jane Doe with Dr. Smith on 2025-03-10 at 10:00 AM", map[string]any{"action": "book"})

	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "BookingAgent", res.Agent)
	assert.Contains(t, res.Output, "Mock execution of")
	assert.Contains(t, res.Output, "BookingAgent")
	assert.Equal(t, "book", res.Context["action"])
}

func TestAgentNamesByIntent(t *testing.T) {
	d := NewMockDispatcher(nil)
	cases := map[Intent]string{
		IntentBook:                 "BookingAgent",
		IntentReschedule:           "BookingAgent",
		IntentCancel:               "BookingAgent",
		IntentScheduleReminder:     "ReminderAgent",
		IntentSendImmediate:        "ReminderAgent",
		IntentProcessQuestionnaire: "PreVisitAgent",
	}
	for intent, want := range cases {
		res := d.Dispatch(context.Background(), intent, "task", nil)
		assert.Equal(t, want, res.Agent, "intent %s", intent)
	}
}

func TestLLMDispatcherUsesModelOutput(t *testing.T) {
	d := NewLLMDispatcher(&stubLLM{text: "Appointment booked, confirmation on the way."}, nil)
	res := d.Dispatch(context.Background(), IntentBook, "Book an appointment", nil)

	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "Appointment booked, confirmation on the way.", res.Output)
	assert.NotNil(t, res.Context)
}

func TestLLMDispatcherSystemPrompt(t *testing.T) {
	llm := &stubLLM{text: "Done."}
	d := NewLLMDispatcher(llm, nil)
	d.Dispatch(context.Background(), IntentScheduleReminder, "Schedule a reminder", nil)

	if assert.Len(t, llm.req.System, 1) {
		assert.Contains(t, llm.req.System[0], "ReminderAgent")
	}
	if assert.Len(t, llm.req.Messages, 1) {
		assert.Equal(t, "Schedule a reminder", llm.req.Messages[0].Content)
	}
}

func TestLLMDispatcherFallsBackToMock(t *testing.T) {
	d := NewLLMDispatcher(&stubLLM{err: errors.New("runtime down")}, nil)
	res := d.Dispatch(context.Background(), IntentCancel, "Cancel appointment apt-1", nil)

	assert.Equal(t, "success", res.Status)
	assert.Contains(t, res.Output, "Mock execution of")
}

func TestSelectFallsBackWhenLLMMissing(t *testing.T) {
	d := Select(false, nil, nil)
	_, ok := d.(*MockDispatcher)
	assert.True(t, ok)

	d = Select(true, &stubLLM{}, nil)
	_, ok = d.(*MockDispatcher)
	assert.True(t, ok)

	d = Select(false, &stubLLM{}, nil)
	_, ok = d.(*LLMDispatcher)
	assert.True(t, ok)
}
