package strategy

import (
	"fmt"

	"MarketSignal/internal/model"
)

// FactorScore is one weighted component of the combined score.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"rawScore"` // 0-100
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}

func newFactor(name string, raw, weight float64, commentary string) FactorScore {
	return FactorScore{
		Name:       name,
		RawScore:   raw,
		Weight:     weight,
		Weighted:   raw * weight,
		Commentary: commentary,
	}
}

// technicalScore is the average signed pattern confidence, as a percentage
// in [-100, 100]. Bearish detections count negative.
func technicalScore(patterns []model.PatternDetection) float64 {
	if len(patterns) == 0 {
		return 0
	}
	var sum float64
	for _, p := range patterns {
		if p.Bullish {
			sum += float64(p.Confidence)
		} else {
			sum -= float64(p.Confidence)
		}
	}
	return sum / (float64(len(patterns)) * 100) * 100
}

// scoreTechnical maps the signed technical score onto [0, 100].
func scoreTechnical(patterns []model.PatternDetection, weight float64) FactorScore {
	raw := technicalScore(patterns)
	return newFactor("technical", (raw+100)/2, weight, fmt.Sprintf("%d patterns, net %+.1f", len(patterns), raw))
}

func scoreFundamental(eval model.FundamentalsSummary, weight float64) FactorScore {
	return newFactor("fundamental", eval.Score, weight, string(eval.Outlook))
}

func scoreSentiment(s model.SentimentSummary, weight float64) FactorScore {
	return newFactor("sentiment", s.Score, weight, string(s.Sentiment))
}

// combine sums the weighted contributions.
func combine(factors ...FactorScore) float64 {
	var total float64
	for _, f := range factors {
		total += f.Weighted
	}
	return total
}
