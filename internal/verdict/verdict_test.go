package verdict

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"hype-hunter/internal/models"
)

// fakeCompleter returns a canned chat completion.
type fakeCompleter struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func testMetrics() *models.HypeMetrics {
	return &models.HypeMetrics{
		Ticker:    "GME",
		Price:     25.5,
		RVOL:      4.2,
		GapPct:    8.1,
		ROC5:      15.0,
		Above9EMA: true,
	}
}

func TestGrade(t *testing.T) {
	fake := &fakeCompleter{
		content: `{"ticker":"GME","hype_score":82,"tier":"A","action":"BUY","thesis":"Volume confirms the move."}`,
	}
	g := &Grader{client: fake, model: "test-model", logger: zerolog.Nop()}

	news := []models.NewsItem{{Title: "Shares spike on volume", Source: "wire"}}
	sent := &models.SentimentSnapshot{Ticker: "GME", Rank: 1, Mentions: 1500, Upvotes: 9000, Trending: true}

	v, err := g.Grade(context.Background(), testMetrics(), news, sent)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if v.HypeScore != 82 || v.Tier != "A" || v.Action != "BUY" {
		t.Errorf("verdict = %+v", v)
	}
	if v.Ticker != "GME" || v.Model != "test-model" {
		t.Errorf("metadata = %+v", v)
	}

	prompt := fake.lastReq.Messages[1].Content
	for _, fragment := range []string{"GME", "4.20x", "rank #1", "Shares spike"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
}

func TestGradeStripsMarkdownFences(t *testing.T) {
	fake := &fakeCompleter{
		content: "```json\n{\"ticker\":\"GME\",\"hype_score\":40,\"tier\":\"C\",\"action\":\"WATCH\",\"thesis\":\"Meh.\"}\n```",
	}
	g := &Grader{client: fake, model: "test-model", logger: zerolog.Nop()}

	v, err := g.Grade(context.Background(), testMetrics(), nil, nil)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if v.HypeScore != 40 || v.Action != "WATCH" {
		t.Errorf("verdict = %+v", v)
	}
}

func TestGradeErrors(t *testing.T) {
	t.Run("api failure", func(t *testing.T) {
		g := &Grader{client: &fakeCompleter{err: errors.New("boom")}, model: "m", logger: zerolog.Nop()}
		if _, err := g.Grade(context.Background(), testMetrics(), nil, nil); err == nil {
			t.Error("want error")
		}
	})

	t.Run("unparseable reply", func(t *testing.T) {
		g := &Grader{client: &fakeCompleter{content: "to the moon!"}, model: "m", logger: zerolog.Nop()}
		if _, err := g.Grade(context.Background(), testMetrics(), nil, nil); err == nil {
			t.Error("want error")
		}
	})

	t.Run("score out of range", func(t *testing.T) {
		g := &Grader{client: &fakeCompleter{content: `{"hype_score":150}`}, model: "m", logger: zerolog.Nop()}
		if _, err := g.Grade(context.Background(), testMetrics(), nil, nil); err == nil {
			t.Error("want error")
		}
	})
}
