package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	apperrors "hype-hunter/internal/errors"
)

func screenerJSON(symbols ...string) string {
	quotes := ""
	for i, s := range symbols {
		if i > 0 {
			quotes += ","
		}
		quotes += fmt.Sprintf(`{"symbol":%q}`, s)
	}
	return fmt.Sprintf(`{"finance":{"result":[{"quotes":[%s]}]}}`, quotes)
}

func TestMarketMovers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("scrIds") {
		case ScreenerDayGainers:
			fmt.Fprint(w, screenerJSON("GME", "amc", "^GSPC", "BRK-B", "TOOLONGG"))
		case ScreenerMostActive:
			fmt.Fprint(w, screenerJSON("GME", "NVDA"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e := NewEngine(zerolog.Nop())
	e.baseURL = srv.URL

	movers, err := e.MarketMovers(context.Background(), 50)
	if err != nil {
		t.Fatalf("MarketMovers: %v", err)
	}

	want := []string{"AMC", "GME", "NVDA"}
	if len(movers) != len(want) {
		t.Fatalf("movers = %v, want %v", movers, want)
	}
	for i := range want {
		if movers[i] != want[i] {
			t.Errorf("movers[%d] = %s, want %s", i, movers[i], want[i])
		}
	}
}

func TestMarketMoversOneScreenerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("scrIds") == ScreenerDayGainers {
			http.Error(w, "upstream broke", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, screenerJSON("TSLA"))
	}))
	defer srv.Close()

	e := NewEngine(zerolog.Nop())
	e.baseURL = srv.URL

	movers, err := e.MarketMovers(context.Background(), 50)
	if err != nil {
		t.Fatalf("MarketMovers with one screener down: %v", err)
	}
	if len(movers) != 1 || movers[0] != "TSLA" {
		t.Errorf("movers = %v, want [TSLA]", movers)
	}
}

func TestMarketMoversAllScreenersDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewEngine(zerolog.Nop())
	e.baseURL = srv.URL

	_, err := e.MarketMovers(context.Background(), 50)
	if !apperrors.Is(err, apperrors.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestIsCommonTicker(t *testing.T) {
	tests := []struct {
		symbol string
		want   bool
	}{
		{"GME", true},
		{"NVDA", true},
		{"AAPL", true},
		{"", false},
		{"^GSPC", false},
		{"BRK-B", false},
		{"TOOLONGG", false},
	}
	for _, tt := range tests {
		if got := isCommonTicker(tt.symbol); got != tt.want {
			t.Errorf("isCommonTicker(%q) = %v, want %v", tt.symbol, got, tt.want)
		}
	}
}
