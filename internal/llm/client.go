package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/routing"
	"github.com/Maanisha27/MediTriage/pkg/circuitbreaker"
	"github.com/Maanisha27/MediTriage/pkg/logger"
	"github.com/Maanisha27/MediTriage/pkg/retry"
)

var ErrEmptyCompletion = errors.New("completion returned no choices")

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// TokenObserver is told how many tokens each completion used.
type TokenObserver interface {
	ObserveTokens(model string, prompt, completion int)
}

type Client struct {
	client      chatCompleter
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	tokens      TokenObserver
}

type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Temperature   float32
	MaxTokens     int
	Timeout       time.Duration
	OnStateChange func(name string, from, to circuitbreaker.State)
	OnRetry       func(name string, attempt int, err error)
	Tokens        TokenObserver
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

type CompletionResponse struct {
	Content string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return newClient(openai.NewClientWithConfig(oc), cfg)
}

func newClient(cc chatCompleter, cfg Config) *Client {
	cb := circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OnStateChange:    cfg.OnStateChange,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		Name:           "llm",
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		OnRetry:        cfg.OnRetry,
		Logger:         logger.GetLogger(),
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger.Info("LLM client initialized", zap.String("model", cfg.Model))

	return &Client{
		client:      cc,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     timeout,
		cb:          cb,
		retryConfig: retryConfig,
		tokens:      cfg.Tokens,
	}
}

func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.cb
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: req.UserPrompt,
		},
	}

	result, err := circuitbreaker.ExecuteWithResult(ctx, c.cb, func(ctx context.Context) (*CompletionResponse, error) {
		return retry.DoWithResult(ctx, c.retryConfig, func(ctx context.Context) (*CompletionResponse, error) {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: temperature,
					MaxTokens:   maxTokens,
				},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to create completion: %w", err)
			}
			if len(resp.Choices) == 0 {
				return nil, retry.Permanent(ErrEmptyCompletion)
			}

			logger.Debug("LLM completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			return &CompletionResponse{
				Content: resp.Choices[0].Message.Content,
				Usage: Usage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				},
			}, nil
		})
	})
	if err != nil {
		return nil, err
	}

	if c.tokens != nil {
		c.tokens.ObserveTokens(c.model, result.Usage.PromptTokens, result.Usage.CompletionTokens)
	}

	return result, nil
}

const routingSystemPrompt = `You are a clinical operations assistant. You explain specialist routing decisions made by a scoring engine to the coordinating nurse.

Rules:
- Use only the scores and facts provided. Do not invent diagnoses.
- Mention the top recommendation first and why it ranked there.
- Point out when availability or load changed the order.
- Keep it under 120 words, plain prose, no lists.`

// ExplainRouting turns a routing result into a short narrative. The numbers
// are decided before this is called; the text only describes them.
func (c *Client) ExplainRouting(ctx context.Context, req routing.Request, res *routing.Result) (string, error) {
	if res == nil || len(res.Recommendations) == 0 {
		return "", nil
	}

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: routingSystemPrompt,
		UserPrompt:   routingPrompt(req, res),
		Temperature:  0.2,
		MaxTokens:    300,
	})
	if err != nil {
		return "", fmt.Errorf("failed to explain routing: %w", err)
	}

	logger.Info("Routing rationale generated",
		zap.String("patient_id", req.PatientID),
		zap.Int("rationale_length", len(resp.Content)),
	)

	return strings.TrimSpace(resp.Content), nil
}

func routingPrompt(req routing.Request, res *routing.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Patient: %s\n", req.PatientID)
	fmt.Fprintf(&b, "Severity: %.0f, Urgency: %.0f\n", req.Severity, req.Urgency)
	fmt.Fprintf(&b, "Load balanced: %t\n\n", res.LoadBalanced)

	b.WriteString("Recommendations:\n")
	for _, r := range res.Recommendations {
		path := res.DecisionPath
		fmt.Fprintf(&b, "%d. %s (%s, %s) confidence %.3f, wait %d min, waspas %.3f, network %.3f, similarity %.3f\n",
			r.Rank, r.SpecialistName, r.SpecialistID, r.Specialty, r.Confidence, r.EstimatedWaitMin,
			path.WASPAS[r.SpecialistID], path.GNN[r.SpecialistID], path.Similarity[r.SpecialistID],
		)
	}

	if len(res.MissingProfiles) > 0 {
		fmt.Fprintf(&b, "\nNo symptom profile on file for: %s\n", strings.Join(res.MissingProfiles, ", "))
	}

	b.WriteString("\nExplain this routing decision.")
	return b.String()
}
