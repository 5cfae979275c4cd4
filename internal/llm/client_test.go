package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maanisha27/MediTriage/internal/routing"
)

type fakeCompleter struct {
	calls   int
	failFor int
	resp    openai.ChatCompletionResponse
	last    openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.last = req
	if f.calls <= f.failFor {
		return openai.ChatCompletionResponse{}, errors.New("upstream unavailable")
	}
	return f.resp, nil
}

type tokenCounter struct {
	prompt, completion int
}

func (t *tokenCounter) ObserveTokens(_ string, prompt, completion int) {
	t.prompt += prompt
	t.completion += completion
}

func reply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
		Usage:   openai.Usage{PromptTokens: 40, CompletionTokens: 12, TotalTokens: 52},
	}
}

func sampleResult() *routing.Result {
	return &routing.Result{
		PatientID: "P001",
		Recommendations: []routing.Recommendation{
			{SpecialistID: "CARD_01", SpecialistName: "Dr. Sarah Chen", Specialty: "Cardiology", Confidence: 0.925, EstimatedWaitMin: 41, Rank: 1},
		},
		DecisionPath: routing.DecisionPath{
			WASPAS:     map[string]float64{"CARD_01": 0.93},
			GNN:        map[string]float64{"CARD_01": 1.39},
			Similarity: map[string]float64{"CARD_01": 0.93},
			Final:      map[string]float64{"CARD_01": 0.925},
		},
		MissingProfiles: []string{"NEUR_02"},
	}
}

func TestExplainRouting(t *testing.T) {
	fc := &fakeCompleter{resp: reply("  Cardiology ranks first.  ")}
	tokens := &tokenCounter{}
	c := newClient(fc, Config{Model: "gpt-4o-mini", MaxTokens: 500, Tokens: tokens})

	text, err := c.ExplainRouting(context.Background(), routing.Request{PatientID: "P001", Severity: 90, Urgency: 85}, sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "Cardiology ranks first.", text)
	assert.Equal(t, "gpt-4o-mini", fc.last.Model)
	assert.Equal(t, 300, fc.last.MaxTokens)
	assert.Contains(t, fc.last.Messages[1].Content, "Dr. Sarah Chen (CARD_01, Cardiology)")
	assert.Contains(t, fc.last.Messages[1].Content, "NEUR_02")
	assert.Equal(t, 40, tokens.prompt)
	assert.Equal(t, 12, tokens.completion)
}

func TestExplainRoutingSkipsEmptyResult(t *testing.T) {
	fc := &fakeCompleter{resp: reply("unused")}
	c := newClient(fc, Config{Model: "m"})

	text, err := c.ExplainRouting(context.Background(), routing.Request{}, &routing.Result{})
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Zero(t, fc.calls)
}

func TestCompleteRetriesTransientFailure(t *testing.T) {
	fc := &fakeCompleter{failFor: 1, resp: reply("ok")}
	c := newClient(fc, Config{Model: "m"})

	resp, err := c.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 2, fc.calls)
}

func TestCompleteEmptyChoicesNotRetried(t *testing.T) {
	fc := &fakeCompleter{resp: openai.ChatCompletionResponse{}}
	c := newClient(fc, Config{Model: "m"})

	_, err := c.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
	assert.Equal(t, 1, fc.calls)
}
