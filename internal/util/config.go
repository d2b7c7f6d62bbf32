package util

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HistoryPath     string `yaml:"history_path" default:"data/market_history.json" validate:"required"`
	RetentionWindow int    `yaml:"retention_window" default:"60" validate:"gte=1"`
	SparklineLength int    `yaml:"sparkline_length" default:"30" validate:"gte=1,ltefield=RetentionWindow"`
	LookbackDays    int    `yaml:"lookback_days" default:"120" validate:"gte=1"`

	Momentum struct {
		SmaWindow     int `yaml:"sma_window" default:"20" validate:"gte=1"`
		ReturnHorizon int `yaml:"return_horizon" default:"5" validate:"gte=1"`
	} `yaml:"momentum"`

	Symbols struct {
		Volatility        string   `yaml:"volatility" default:"^VIX" validate:"required"`
		LongVolatility    string   `yaml:"long_volatility" default:"^VIX3M" validate:"required"`
		TailRisk          string   `yaml:"tail_risk" default:"^SKEW" validate:"required"`
		BondVolatility    string   `yaml:"bond_volatility" default:"^MOVE" validate:"required"`
		PutCall           string   `yaml:"put_call" default:"^CPCE"`
		PutCallUnderlying string   `yaml:"put_call_underlying" default:"SPY"`
		Indices           []string `yaml:"indices" default:"[\"^GSPC\",\"^IXIC\"]" validate:"dive,required"`
	} `yaml:"symbols"`

	HTTP struct {
		Timeout           time.Duration `yaml:"timeout" default:"15s"`
		RequestsPerSecond float64       `yaml:"requests_per_second" default:"2" validate:"gt=0"`
		UserAgent         string        `yaml:"user_agent" default:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"`
	} `yaml:"http"`

	Sentiment struct {
		Enabled      bool   `yaml:"enabled" default:"true"`
		FeedURL      string `yaml:"feed_url" default:"https://feeds.finance.yahoo.com/rss/2.0/headline?s=%5EGSPC&region=US&lang=en-US" validate:"required,url"`
		MaxHeadlines int    `yaml:"max_headlines" default:"10" validate:"gte=1"`
		CachePath    string `yaml:"cache_path" default:"data/sentiment_cache.json"`
	} `yaml:"sentiment"`

	Fundamentals struct {
		ScrapeURL       string        `yaml:"scrape_url" default:"https://finviz.com/quote.ashx?t=%s"`
		CacheTTL        time.Duration `yaml:"cache_ttl" default:"6h"`
		CacheMaxEntries int           `yaml:"cache_max_entries" default:"256" validate:"gte=1"`
		MaxFailures     uint32        `yaml:"max_failures" default:"3" validate:"gte=1"`
	} `yaml:"fundamentals"`

	Portfolio struct {
		PositionsPath          string  `yaml:"positions_path" default:"data/positions.csv"`
		DefaultTrailingStopPct float64 `yaml:"default_trailing_stop_pct" default:"10" validate:"gt=0,lt=100"`
	} `yaml:"portfolio"`

	Email struct {
		Subject    string   `yaml:"subject" default:"Market Mood"`
		Recipients []string `yaml:"recipients" validate:"dive,email"`
	} `yaml:"email"`
}

func configFile(path string) string {
	if path != "" {
		return path
	}
	if f := os.Getenv("MOOD_CONFIG"); f != "" {
		return f
	}
	return "marketmood.yaml"
}

// LoadConfig reads the YAML config at path (or $MOOD_CONFIG). Fields
// left out of the file, or the whole file if it does not exist, take
// their defaults.
func LoadConfig(path string) (*Config, error) {
	c := Config{}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("failed to set config defaults: %w", err)
	}

	b, err := os.ReadFile(configFile(path))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}
