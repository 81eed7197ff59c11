package strategy

import "MarketSignal/internal/model"

const (
	impactfulThreshold = 7.0
	maxImpactfulNews   = 3
)

// AnalyzeSentiment reduces a news list to a tone, a 0-100 score and up to
// three high-impact items in input order.
func AnalyzeSentiment(news []model.NewsItem) model.SentimentSummary {
	if len(news) == 0 {
		return model.SentimentSummary{Sentiment: model.NewsNeutral, Score: 50, ImpactfulNews: []model.NewsItem{}}
	}

	var sum float64
	impactful := make([]model.NewsItem, 0, maxImpactfulNews)
	for _, item := range news {
		impact := newsImpact(item)
		switch item.Sentiment {
		case model.NewsPositive:
			sum += impact
		case model.NewsNegative:
			sum -= impact
		}
		if impact >= impactfulThreshold && len(impactful) < maxImpactfulNews {
			impactful = append(impactful, item)
		}
	}

	score := clamp(sum/(float64(len(news))*5)*50+50, 0, 100)

	sentiment := model.NewsNeutral
	switch {
	case score > 60:
		sentiment = model.NewsPositive
	case score < 40:
		sentiment = model.NewsNegative
	}

	return model.SentimentSummary{Sentiment: sentiment, Score: score, ImpactfulNews: impactful}
}

// newsImpact is the 0-10 weight of an item: its impact score, else its
// relevance scaled by ten, else nothing.
func newsImpact(item model.NewsItem) float64 {
	switch {
	case item.ImpactScore != nil:
		return *item.ImpactScore
	case item.Relevance != nil:
		return *item.Relevance * 10
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
