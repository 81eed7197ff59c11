package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSignal/internal/model"
)

func news(id string, s model.NewsSentiment, impact, relevance *float64) model.NewsItem {
	return model.NewsItem{ID: id, Title: "headline " + id, Sentiment: s, ImpactScore: impact, Relevance: relevance}
}

func TestAnalyzeSentiment_Empty(t *testing.T) {
	got := AnalyzeSentiment(nil)
	assert.Equal(t, model.NewsNeutral, got.Sentiment)
	assert.Equal(t, 50.0, got.Score)
	require.NotNil(t, got.ImpactfulNews)
	assert.Empty(t, got.ImpactfulNews)
}

func TestAnalyzeSentiment_Mixed(t *testing.T) {
	items := []model.NewsItem{
		news("1", model.NewsPositive, model.Float(8), nil),
		news("2", model.NewsNegative, nil, model.Float(0.9)),
		news("3", model.NewsNeutral, model.Float(10), nil),
		news("4", model.NewsPositive, model.Float(7), model.Float(0.1)),
	}
	got := AnalyzeSentiment(items)

	// (8 - 9 + 0 + 7) / 20 * 50 + 50
	assert.InDelta(t, 65.0, got.Score, 1e-9)
	assert.Equal(t, model.NewsPositive, got.Sentiment)
	require.Len(t, got.ImpactfulNews, 3)
	assert.Equal(t, "1", got.ImpactfulNews[0].ID)
	assert.Equal(t, "2", got.ImpactfulNews[1].ID)
	assert.Equal(t, "3", got.ImpactfulNews[2].ID)
}

func TestAnalyzeSentiment_Clamped(t *testing.T) {
	up := AnalyzeSentiment([]model.NewsItem{
		news("a", model.NewsPositive, model.Float(10), nil),
		news("b", model.NewsPositive, model.Float(10), nil),
	})
	assert.Equal(t, 100.0, up.Score)

	down := AnalyzeSentiment([]model.NewsItem{news("c", model.NewsNegative, model.Float(9), nil)})
	assert.Equal(t, 0.0, down.Score)
	assert.Equal(t, model.NewsNegative, down.Sentiment)
}

func TestAnalyzeSentiment_NoWeight(t *testing.T) {
	got := AnalyzeSentiment([]model.NewsItem{news("x", model.NewsPositive, nil, nil)})
	assert.Equal(t, 50.0, got.Score)
	assert.Equal(t, model.NewsNeutral, got.Sentiment)
	assert.Empty(t, got.ImpactfulNews)
}

func TestAnalyzeSentiment_Thresholds(t *testing.T) {
	tests := []struct {
		name   string
		impact float64
		want   model.NewsSentiment
	}{
		// score = impact/5*50+50 for one positive item
		{"exactly 60 is neutral", 1, model.NewsNeutral},
		{"above 60 is positive", 1.1, model.NewsPositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeSentiment([]model.NewsItem{news("t", model.NewsPositive, model.Float(tt.impact), nil)})
			assert.Equal(t, tt.want, got.Sentiment)
		})
	}
}
