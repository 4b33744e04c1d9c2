package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dayblock/dayblock/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements Provider using OpenAI's chat completions API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// WeeklyInsight generates a summary of the week via the chat completions API
func (p *OpenAIProvider) WeeklyInsight(ctx context.Context, stats models.WeeklyStats, days []*models.DailyProgress) (*Insight, error) {
	prompt := buildWeeklyPrompt(stats, days)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a helpful assistant that reviews a user's weekly time-blocking data and writes a short, encouraging summary with concrete suggestions. Respond with valid JSON only."),
		openai.UserMessage(prompt),
	}

	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "weekly_insight"),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "weekly_insight"),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		return nil, fmt.Errorf("failed to generate weekly insight: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "weekly_insight"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	insight, err := parseInsightResponse(content)
	if err != nil {
		return nil, err
	}
	insight.Source = "openai"
	return insight, nil
}

func parseInsightResponse(content string) (*Insight, error) {
	var parsed struct {
		Summary     string   `json:"summary"`
		Suggestions []string `json:"suggestions"`
	}

	raw := content
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		// Some models wrap the JSON in prose; try the outermost braces
		if len(raw) > 0 && raw[0] != '{' {
			start := bytes.Index([]byte(raw), []byte("{"))
			end := bytes.LastIndex([]byte(raw), []byte("}"))
			if start != -1 && end != -1 && end > start {
				raw = raw[start : end+1]
			}
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse insight response: %w", err)
		}
	}

	if parsed.Summary == "" {
		return nil, errors.New("insight response missing summary")
	}
	return &Insight{Summary: parsed.Summary, Suggestions: parsed.Suggestions}, nil
}

func buildWeeklyPrompt(stats models.WeeklyStats, days []*models.DailyProgress) string {
	prompt := fmt.Sprintf(`Review this week's time-blocking data:
- Days with scheduled blocks: %d
- Days at or above the completion target: %d
- Average daily completion: %.0f%%
- Blocks scheduled: %d, completed: %d`,
		stats.TotalDays, stats.CompletedDays, stats.AverageCompletion*100,
		stats.TotalBlocks, stats.TotalCompleted)

	if len(days) > 0 {
		prompt += "\n\nPer-day breakdown:"
		for _, day := range days {
			prompt += fmt.Sprintf("\n- %s: %d/%d completed (%s)",
				models.DateKey(day.Date), day.CompletedBlocks, day.TotalBlocks, day.PerformanceLevel)
			if day.Rating != nil {
				prompt += fmt.Sprintf(", self-rated %d/5", *day.Rating)
			}
		}
	}

	prompt += `

Respond with a JSON object in this format:
{
  "summary": "two or three sentences about the week",
  "suggestions": ["one short actionable suggestion", "another"]
}

Keep the tone encouraging and specific to the numbers. Return only valid JSON.`

	return prompt
}
