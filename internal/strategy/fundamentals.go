package strategy

import "MarketSignal/internal/model"

const (
	maxHighlights    = 3
	noFindingsNotice = "No significant fundamental signals identified"
)

// fundamentalRule adjusts the score when its field is present and the
// condition holds. Rules are evaluated in declaration order.
type fundamentalRule struct {
	value     func(f *model.Fundamentals) (float64, bool)
	applies   func(v float64) bool
	delta     float64
	highlight string
}

func field(get func(f *model.Fundamentals) *float64) func(f *model.Fundamentals) (float64, bool) {
	return func(f *model.Fundamentals) (float64, bool) {
		p := get(f)
		if p == nil {
			return 0, false
		}
		return *p, true
	}
}

var (
	peRatio       = field(func(f *model.Fundamentals) *float64 { return f.PE })
	revenueGrowth = field(func(f *model.Fundamentals) *float64 { return f.RevenueGrowth })
	profitGrowth  = field(func(f *model.Fundamentals) *float64 { return f.ProfitGrowth })
	dividendYield = field(func(f *model.Fundamentals) *float64 { return f.DividendYield })
)

// debtToAssets needs both fields and positive assets.
func debtToAssets(f *model.Fundamentals) (float64, bool) {
	if f.Debt == nil || f.Assets == nil || *f.Assets <= 0 {
		return 0, false
	}
	return *f.Debt / *f.Assets, true
}

var fundamentalRules = []fundamentalRule{
	{peRatio, func(v float64) bool { return v < 15 }, +10, "Attractively valued with low P/E ratio"},
	{peRatio, func(v float64) bool { return v > 40 }, -10, "Potentially overvalued with high P/E ratio"},
	{revenueGrowth, func(v float64) bool { return v > 15 }, +15, "Strong revenue growth above market average"},
	{revenueGrowth, func(v float64) bool { return v < 5 }, -10, "Weak revenue growth below market average"},
	{profitGrowth, func(v float64) bool { return v > 20 }, +15, "Excellent profit growth demonstrates business efficiency"},
	{profitGrowth, func(v float64) bool { return v < 0 }, -15, "Declining profits indicate potential business challenges"},
	{debtToAssets, func(v float64) bool { return v < 0.2 }, +10, "Strong balance sheet with low debt relative to assets"},
	{debtToAssets, func(v float64) bool { return v > 0.5 }, -10, "High debt levels may constrain future flexibility"},
	{dividendYield, func(v float64) bool { return v > 3 }, +5, "Attractive dividend yield provides income potential"},
}

// outlookTiers maps a score to an outlook; first MinScore match wins.
var outlookTiers = []struct {
	MinScore float64
	Outlook  model.Outlook
}{
	{80, model.OutlookStrong},
	{60, model.OutlookPositive},
	{40, model.OutlookNeutral},
	{20, model.OutlookNegative},
}

// AnalyzeFundamentals scores a fundamentals record from a neutral 50. Absent
// fields, or an absent record, contribute nothing.
func AnalyzeFundamentals(f *model.Fundamentals) model.FundamentalsSummary {
	score := 50.0
	var highlights []string

	if f != nil {
		for _, r := range fundamentalRules {
			v, ok := r.value(f)
			if !ok || !r.applies(v) {
				continue
			}
			score += r.delta
			highlights = append(highlights, r.highlight)
		}
	}

	score = clamp(score, 0, 100)

	if len(highlights) == 0 {
		highlights = []string{noFindingsNotice}
	} else if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}

	return model.FundamentalsSummary{
		Outlook:    mapOutlook(score),
		Score:      score,
		Highlights: highlights,
	}
}

func mapOutlook(score float64) model.Outlook {
	for _, t := range outlookTiers {
		if score >= t.MinScore {
			return t.Outlook
		}
	}
	return model.OutlookWeak
}
