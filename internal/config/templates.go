package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Hype Hunter configuration

[market]
# Exchange session times in the exchange's local timezone.
session_open = "09:30"
session_close = "16:00"
timezone = "America/New_York"
# Reserved ticker for the cash row. Pick one canonical symbol per deployment.
cash_symbol = "CASH"
# Cash seeded into an empty portfolio on first run.
starting_balance = 10000.0

[scan]
min_rvol = 2.0
lookback_days = 40
# Time-of-day adjusted RVOL (intraday U-curve). Set false for the plain
# current-volume / 20-day-average variant.
intraday_rvol = true
max_ticker_len = 5
screener_count = 50

[risk]
account_size = 10000.0
risk_percent = 1.0
atr_multiplier = 2.0
atr_period = 20

[ui]
color_enabled = true
date_format = "2006-01-02"
`

const credentialsTemplate = `# Hype Hunter API credentials
# Environment variables TIINGO_API_KEY and OPENAI_API_KEY override these.

[tiingo]
api_key = ""

[openai]
api_key = ""
model = "gpt-4o"
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(configDir, "config.toml", configTemplate)
}

func createTemplateCredentials(configDir string) error {
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate)
}

func writeTemplate(configDir, name, content string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	path := filepath.Join(configDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
