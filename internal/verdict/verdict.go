// Package verdict asks an LLM to grade the narrative behind a hype
// candidate. The grade is opaque display data; nothing downstream computes
// from it.
package verdict

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	apperrors "hype-hunter/internal/errors"
	"hype-hunter/internal/logging"
	"hype-hunter/internal/models"
)

const systemPrompt = `You are a skeptical momentum-trading analyst. You are given
volume/velocity metrics, recent headlines, and Reddit chatter for a single US
stock. Grade how tradeable the hype is.

Respond with ONLY a JSON object, no markdown fences, in this shape:
{"ticker": "...", "hype_score": 0-100, "tier": "A|B|C|D",
 "action": "BUY|WATCH|AVOID", "thesis": "two sentences max"}`

// Completer is the chat-completion surface the grader needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Grader turns metrics, news, and sentiment into a narrative verdict.
type Grader struct {
	client Completer
	model  string
	logger zerolog.Logger
}

// NewGrader creates a verdict grader against the OpenAI API.
func NewGrader(apiKey, model string, logger zerolog.Logger) *Grader {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Grader{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logging.WithProvider(logger, "openai"),
	}
}

// Grade asks the model for a verdict on one candidate.
func (g *Grader) Grade(ctx context.Context, m *models.HypeMetrics, news []models.NewsItem, sent *models.SentimentSnapshot) (*models.Verdict, error) {
	started := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(m, news, sent)},
		},
		Temperature: 0.3,
	})
	logging.LogAPICall(g.logger, "openai", "chat/completions", time.Since(started), err)
	if err != nil {
		return nil, apperrors.Wrapf(err, "verdict for %s", m.Ticker)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNoData, "verdict for %s: empty response", m.Ticker)
	}

	v, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, apperrors.Wrapf(err, "verdict for %s", m.Ticker)
	}
	v.Ticker = m.Ticker
	v.Model = g.model
	v.Latency = time.Since(started).Seconds()
	return v, nil
}

// buildPrompt flattens the candidate's data into the user message.
func buildPrompt(m *models.HypeMetrics, news []models.NewsItem, sent *models.SentimentSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Ticker: %s\n", m.Ticker)
	fmt.Fprintf(&b, "Price: %.2f\n", m.Price)
	fmt.Fprintf(&b, "Relative volume: %.2fx\n", m.RVOL)
	fmt.Fprintf(&b, "Gap: %.2f%%\n", m.GapPct)
	fmt.Fprintf(&b, "5-day velocity: %.2f%%\n", m.ROC5)
	fmt.Fprintf(&b, "Above 9-EMA: %v\n", m.Above9EMA)

	if sent != nil {
		if sent.Trending {
			fmt.Fprintf(&b, "Reddit: rank #%d, %d mentions, %d upvotes\n",
				sent.Rank, sent.Mentions, sent.Upvotes)
		} else {
			b.WriteString("Reddit: not trending\n")
		}
	}

	if len(news) == 0 {
		b.WriteString("Headlines: none\n")
	} else {
		b.WriteString("Headlines:\n")
		for _, n := range news {
			fmt.Fprintf(&b, "- %s (%s)\n", n.Title, n.Source)
			if n.Description != "" {
				fmt.Fprintf(&b, "  %s\n", n.Description)
			}
		}
	}

	return b.String()
}

// parseVerdict decodes the model's JSON reply, stripping markdown fences the
// model sometimes adds despite instructions.
func parseVerdict(content string) (*models.Verdict, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var v models.Verdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, fmt.Errorf("unparseable verdict %q: %w", content, err)
	}
	if v.HypeScore < 0 || v.HypeScore > 100 {
		return nil, fmt.Errorf("hype score %d out of range", v.HypeScore)
	}
	return &v, nil
}
