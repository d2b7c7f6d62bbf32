package service

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"marketmood/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
)

//go:embed templates/report.html.tmpl
var reportTemplates embed.FS

// ReportRenderer turns a finished report into a standalone HTML
// fragment. Chart data is inlined as JSON keyed by series name and
// drawn onto canvases by a small inline script.
type ReportRenderer interface {
	Render(report domain.Report) (string, error)
}

type reportRendererHandler struct {
	tmpl *template.Template
}

func NewReportRenderer() (ReportRenderer, error) {
	md := goldmark.New()
	tmpl, err := template.New("report.html.tmpl").Funcs(template.FuncMap{
		"pct": func(w float64) string {
			return fmt.Sprintf("%.0f%%", w*100)
		},
		"money": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"optional": func(f *float64) string {
			if f == nil {
				return "n/a"
			}
			return fmt.Sprintf("%.2f", *f)
		},
		"markdown": func(s string) template.HTML {
			buf := bytes.Buffer{}
			if err := md.Convert([]byte(s), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(s))
			}
			// goldmark drops raw HTML unless WithUnsafe is set
			return template.HTML(buf.String())
		},
	}).ParseFS(reportTemplates, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}

	return reportRendererHandler{
		tmpl: tmpl,
	}, nil
}

type reportView struct {
	GeneratedAt     string
	Score           float64
	Verdict         domain.MarketVerdict
	MarketStatus    string
	Factors         []domain.ScoreFactor
	Indicators      []indicatorRow
	Sentiment       domain.Sentiment
	SentimentStatus string
	Positions       []domain.PortfolioPosition
	ChartJSON       template.JS
}

type indicatorRow struct {
	domain.Indicator
	Context string
}

func nonNil(series []domain.DatedValue) []domain.DatedValue {
	if series == nil {
		return []domain.DatedValue{}
	}
	return series
}

// chartPayload is the JSON inlined into the fragment. Series holds
// the full windows keyed by name and Sparklines the short suffix
// drawn next to each indicator.
type chartPayload struct {
	Series     map[string][]domain.DatedValue `json:"series"`
	Sparklines map[string][]domain.DatedValue `json:"sparklines"`
}

// chartSeries keys each series by indicator name. Indicators use
// their history window, falling back to the provider series on a
// first run where nothing has been stored yet.
func chartSeries(report domain.Report) chartPayload {
	out := chartPayload{
		Series: map[string][]domain.DatedValue{
			domain.IndicatorMood:      nonNil(report.MoodHistory),
			domain.IndicatorSentiment: nonNil(report.SentimentHistory),
		},
		Sparklines: map[string][]domain.DatedValue{},
	}
	for _, indicator := range report.Indicators.All() {
		if indicator.Name == "" {
			continue
		}
		series := indicator.History
		if len(series) == 0 {
			series = indicator.Series
		}
		out.Series[indicator.Name] = nonNil(series)
		out.Sparklines[indicator.Name] = nonNil(indicator.Sparkline)
	}
	return out
}

func (h reportRendererHandler) Render(report domain.Report) (string, error) {
	verdict := report.Score.Verdict
	if verdict.Label == "" {
		verdict = verdictFor(neutralScore)
	}
	score := report.Score.Score
	if len(report.Score.Factors) == 0 && score == 0 {
		score = neutralScore
	}

	indicators := []indicatorRow{}
	for _, indicator := range report.Indicators.All() {
		if indicator.Name != "" {
			indicators = append(indicators, indicatorRow{
				Indicator: indicator,
				Context:   describeMetrics(indicator),
			})
		}
	}

	sentiment := report.Sentiment
	if sentiment.Summary == "" {
		sentiment.Summary = defaultSentimentSummary
	}
	sentimentStatus := string(sentiment.Provenance)
	if !sentiment.Available() {
		sentimentStatus = string(domain.ProvenanceMissing)
	}

	marketStatus := ""
	if report.MarketOpen != nil {
		marketStatus = "closed"
		if *report.MarketOpen {
			marketStatus = "open"
		}
	}

	generatedAt := report.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	// json.Marshal escapes <, > and & so the payload cannot close the
	// script element
	chartJSON, err := json.Marshal(chartSeries(report))
	if err != nil {
		return "", fmt.Errorf("failed to marshal chart series: %w", err)
	}

	view := reportView{
		GeneratedAt:     generatedAt.Format(time.RFC1123),
		Score:           score,
		Verdict:         verdict,
		MarketStatus:    marketStatus,
		Factors:         report.Score.Factors,
		Indicators:      indicators,
		Sentiment:       sentiment,
		SentimentStatus: sentimentStatus,
		Positions:       report.Positions,
		ChartJSON:       template.JS(chartJSON),
	}

	buf := bytes.Buffer{}
	if err := h.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}
