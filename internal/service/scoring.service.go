package service

import (
	"fmt"
	"math"
	"strings"

	"marketmood/internal/domain"
)

const (
	volatilityWeight     = 0.15
	termStructureWeight  = 0.10
	tailRiskWeight       = 0.05
	bondVolatilityWeight = 0.05
	sentimentWeight      = 0.35

	neutralScore = 50.0

	bullishThreshold = 65.0
	bearishThreshold = 35.0
)

var verdictColors = map[domain.VerdictLabel]string{
	domain.VerdictBullish: "#2e7d32",
	domain.VerdictNeutral: "#f9a825",
	domain.VerdictBearish: "#c62828",
}

// ScoringService blends the indicators into a single 0-100 mood
// score. It is a pure function of its inputs.
type ScoringService interface {
	Score(indicators domain.MarketIndicators, sentiment domain.Sentiment) domain.MarketScore
}

type scoringServiceHandler struct {
	SmaWindow     int
	ReturnHorizon int
}

func NewScoringService(smaWindow, returnHorizon int) ScoringService {
	return scoringServiceHandler{
		SmaWindow:     smaWindow,
		ReturnHorizon: returnHorizon,
	}
}

// The bands below are tuned by hand. Keep them as they are.

func volatilityBand(vix float64) float64 {
	switch {
	case vix < 15:
		return 100
	case vix < 20:
		return 75
	case vix < 25:
		return 50
	case vix < 30:
		return 25
	default:
		return 0
	}
}

func termStructureBand(ratio float64) float64 {
	switch {
	case ratio > 1.1:
		return 100
	case ratio > 1.0:
		return 50
	default:
		return 0
	}
}

func tailRiskBand(skew float64) float64 {
	switch {
	case skew < 120:
		return 100
	case skew < 130:
		return 90
	case skew < 140:
		return 50
	case skew < 150:
		return 25
	default:
		return 0
	}
}

func bondVolatilityBand(move float64) float64 {
	switch {
	case move < 100:
		return 100
	case move < 120:
		return 60
	case move < 140:
		return 30
	default:
		return 0
	}
}

// worstProvenance picks the least trustworthy of the inputs, for
// factors derived from more than one indicator.
func worstProvenance(ps ...domain.Provenance) domain.Provenance {
	rank := map[domain.Provenance]int{
		domain.ProvenanceLive:     0,
		domain.ProvenanceFallback: 1,
		domain.ProvenanceStale:    2,
		domain.ProvenanceDefault:  3,
		domain.ProvenanceMissing:  4,
	}
	out := domain.ProvenanceLive
	for _, p := range ps {
		if rank[p] > rank[out] {
			out = p
		}
	}
	return out
}

func (h scoringServiceHandler) factors(indicators domain.MarketIndicators, sentiment domain.Sentiment) []domain.ScoreFactor {
	factors := []domain.ScoreFactor{}

	if vix := indicators.Volatility; vix.Available() {
		sub := volatilityBand(vix.Current)
		factors = append(factors, domain.ScoreFactor{
			Name:        "Volatility (VIX)",
			RawValue:    vix.Current,
			SubScore:    sub,
			Weight:      volatilityWeight,
			Provenance:  vix.Provenance,
			Explanation: fmt.Sprintf("VIX at %.2f scores %.0f; under 15 is calm, 30 and over is fear", vix.Current, sub),
		})
	}

	vix, vix3m := indicators.Volatility, indicators.LongVolatility
	if vix.Available() && vix3m.Available() && vix.Current > 0 {
		ratio := vix3m.Current / vix.Current
		sub := termStructureBand(ratio)
		shape := "in backwardation, a stress signal"
		if ratio > 1 {
			shape = "in contango, the normal shape"
		}
		factors = append(factors, domain.ScoreFactor{
			Name:        "Volatility term structure",
			RawValue:    ratio,
			SubScore:    sub,
			Weight:      termStructureWeight,
			Provenance:  worstProvenance(vix.Provenance, vix3m.Provenance),
			Explanation: fmt.Sprintf("VIX3M/VIX ratio of %.2f is %s", ratio, shape),
		})
	}

	if skew := indicators.TailRisk; skew.Available() {
		sub := tailRiskBand(skew.Current)
		factors = append(factors, domain.ScoreFactor{
			Name:        "Tail risk (SKEW)",
			RawValue:    skew.Current,
			SubScore:    sub,
			Weight:      tailRiskWeight,
			Provenance:  skew.Provenance,
			Explanation: fmt.Sprintf("SKEW at %.2f scores %.0f; higher means more demand for crash protection", skew.Current, sub),
		})
	}

	if move := indicators.BondVolatility; move.Available() {
		sub := bondVolatilityBand(move.Current)
		factors = append(factors, domain.ScoreFactor{
			Name:        "Bond volatility (MOVE)",
			RawValue:    move.Current,
			SubScore:    sub,
			Weight:      bondVolatilityWeight,
			Provenance:  move.Provenance,
			Explanation: fmt.Sprintf("MOVE at %.2f scores %.0f", move.Current, sub),
		})
	}

	if f := h.momentumFactor(indicators.Indices); f != nil {
		factors = append(factors, *f)
	}

	if sentiment.Available() {
		score := clampScore(sentiment.Score)
		explanation := fmt.Sprintf("headline sentiment of %.0f", score)
		switch sentiment.Provenance {
		case domain.ProvenanceStale:
			explanation += ", carried over from an earlier run"
		case domain.ProvenanceDefault:
			explanation += ", neutral default because no sentiment was available"
		}
		factors = append(factors, domain.ScoreFactor{
			Name:        "News sentiment",
			RawValue:    score,
			SubScore:    score,
			Weight:      sentimentWeight,
			Provenance:  sentiment.Provenance,
			Explanation: explanation,
		})
	}

	return factors
}

func (h scoringServiceHandler) momentumFactor(indices []domain.Indicator) *domain.ScoreFactor {
	bands := []float64{}
	explanations := []string{}
	provenances := []domain.Provenance{}
	for _, index := range indices {
		if !index.Available() {
			continue
		}
		trend, ok := indexTrend(index.Name, index.Closes(h.SmaWindow), h.SmaWindow, h.ReturnHorizon)
		if !ok {
			continue
		}
		bands = append(bands, trend.Band)
		explanations = append(explanations, trend.explain(h.SmaWindow, h.ReturnHorizon))
		provenances = append(provenances, index.Provenance)
	}
	if len(bands) == 0 {
		return nil
	}

	total := 0.0
	for _, b := range bands {
		total += b
	}
	avg := total / float64(len(bands))

	return &domain.ScoreFactor{
		Name:        momentumFactorLabel,
		RawValue:    avg,
		SubScore:    avg,
		Weight:      momentumWeight,
		Provenance:  worstProvenance(provenances...),
		Explanation: strings.Join(explanations, "; "),
	}
}

func clampScore(s float64) float64 {
	if math.IsNaN(s) {
		return neutralScore
	}
	return math.Max(0, math.Min(100, s))
}

// weightedScore is sum(sub*weight)/sum(weight) over factors, or the
// neutral score when there is nothing to weigh.
func weightedScore(factors []domain.ScoreFactor) (score float64, totalWeight float64) {
	sum := 0.0
	for _, f := range factors {
		sum += f.SubScore * f.Weight
		totalWeight += f.Weight
	}
	if totalWeight <= 0 {
		return neutralScore, 0
	}
	return clampScore(sum / totalWeight), totalWeight
}

func verdictFor(score float64) domain.MarketVerdict {
	up := int(math.Round(score))
	label := domain.VerdictNeutral
	if score >= bullishThreshold {
		label = domain.VerdictBullish
	} else if score <= bearishThreshold {
		label = domain.VerdictBearish
	}
	return domain.MarketVerdict{
		ProbabilityUp:   up,
		ProbabilityDown: 100 - up,
		Label:           label,
		Color:           verdictColors[label],
	}
}

func (h scoringServiceHandler) Score(indicators domain.MarketIndicators, sentiment domain.Sentiment) domain.MarketScore {
	factors := h.factors(indicators, sentiment)
	score, totalWeight := weightedScore(factors)

	return domain.MarketScore{
		Factors:     factors,
		Score:       score,
		TotalWeight: totalWeight,
		Verdict:     verdictFor(score),
	}
}
