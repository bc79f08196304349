package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	apperrors "hype-hunter/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(zerolog.Nop())
	c.baseURL = srv.URL
	return c
}

func TestTickerSentimentTrending(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[
			{"rank":1,"ticker":"GME","mentions":1500,"upvotes":9000},
			{"rank":2,"ticker":"nvda","mentions":800,"upvotes":4000}
		]}`)
	})

	snap, err := c.TickerSentiment(context.Background(), "nvda")
	if err != nil {
		t.Fatalf("TickerSentiment: %v", err)
	}
	if !snap.Trending {
		t.Error("Trending = false, want true")
	}
	if snap.Rank != 2 || snap.Mentions != 800 || snap.Upvotes != 4000 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Ticker != "NVDA" {
		t.Errorf("ticker = %s, want normalized NVDA", snap.Ticker)
	}
}

func TestTickerSentimentNotTrending(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"rank":1,"ticker":"GME","mentions":1500,"upvotes":9000}]}`)
	})

	snap, err := c.TickerSentiment(context.Background(), "XYZ")
	if err != nil {
		t.Fatalf("TickerSentiment: %v", err)
	}
	if snap.Trending || snap.Mentions != 0 || snap.Rank != 0 {
		t.Errorf("snapshot = %+v, want quiet zero snapshot", snap)
	}
}

func TestTickerSentimentFetchFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	})

	_, err := c.TickerSentiment(context.Background(), "GME")
	if !apperrors.Is(err, apperrors.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}
