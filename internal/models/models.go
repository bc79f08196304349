// Package models provides domain models for the hype hunter application.
package models

import (
	"time"
)

// PriceBar represents one trading day's OHLCV data for a symbol.
type PriceBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// HypeMetrics is the derived momentum snapshot for a symbol at a point in time.
// It is recomputed on each request and never persisted.
type HypeMetrics struct {
	Ticker     string
	Price      float64
	RVOL       float64
	GapPct     float64
	ROC5       float64
	Above9EMA  bool
	Volume     int64
	ComputedAt time.Time
}

// RiskPlan is an ATR-based position sizing plan.
type RiskPlan struct {
	Ticker          string
	Price           float64
	ATR             float64
	StopPrice       float64
	RiskAmount      float64
	Shares          int
	CapitalDeployed float64
}

// NewsItem is a single headline from the news provider.
type NewsItem struct {
	Title       string
	Source      string
	URL         string
	Description string
	PublishedAt time.Time
}

// SentimentSnapshot captures retail-chatter data for a ticker.
// A ticker that is not trending yields a zero-mention snapshot, not an error.
type SentimentSnapshot struct {
	Ticker   string
	Rank     int
	Mentions int
	Upvotes  int
	Trending bool
}

// Verdict is the LLM's narrative grade for a candidate. Opaque to the core;
// the engine neither computes from it nor validates its reasoning.
type Verdict struct {
	Ticker    string  `json:"ticker"`
	HypeScore int     `json:"hype_score"`
	Tier      string  `json:"tier"`
	Action    string  `json:"action"`
	Thesis    string  `json:"thesis"`
	Model     string  `json:"-"`
	Latency   float64 `json:"-"`
}
