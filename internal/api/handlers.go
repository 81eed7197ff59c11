package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"MarketSignal/internal/analyst"
	"MarketSignal/internal/model"
	"MarketSignal/internal/strategy"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":     "healthy",
		"provider":   s.analyst.Provider(),
		"ws_clients": s.hub.ClientCount(),
	}
	if s.scans != nil {
		var last *time.Time
		if at := s.scans.LastScanAt(); !at.IsZero() {
			last = &at
		}
		body["last_scan_at"] = last
		body["tracked_signals"] = s.scans.Len()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleSymbols(c *gin.Context) {
	market := strings.ToLower(c.Query("market"))
	switch model.MarketType(market) {
	case "":
		successResponse(c, model.Symbols())
	case model.MarketStocks, model.MarketCrypto, model.MarketForex:
		successResponse(c, model.SymbolsByMarket(model.MarketType(market)))
	default:
		errorResponse(c, http.StatusBadRequest, "unknown market: "+market)
	}
}

func timeframeQuery(c *gin.Context) string {
	return c.DefaultQuery("timeframe", strategy.DefaultTimeframe)
}

// analysisError maps service errors to HTTP responses.
func (s *Server) analysisError(c *gin.Context, err error) {
	if errors.Is(err, analyst.ErrEmptySymbol) {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("analysis failed")
	errorResponse(c, http.StatusInternalServerError, "analysis failed")
}

func (s *Server) handleSignal(c *gin.Context) {
	a, err := s.analyst.Analyze(c.Request.Context(), c.Param("symbol"), timeframeQuery(c))
	if err != nil {
		s.analysisError(c, err)
		return
	}
	successResponse(c, a)
}

func (s *Server) handlePatterns(c *gin.Context) {
	patterns, err := s.analyst.Patterns(c.Request.Context(), c.Param("symbol"), timeframeQuery(c))
	if err != nil {
		s.analysisError(c, err)
		return
	}
	successResponse(c, patterns)
}

func (s *Server) handleSentiment(c *gin.Context) {
	view, err := s.analyst.Sentiment(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		s.analysisError(c, err)
		return
	}
	successResponse(c, view)
}

func (s *Server) handleFundamentals(c *gin.Context) {
	view, err := s.analyst.Fundamentals(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		s.analysisError(c, err)
		return
	}
	successResponse(c, view)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			errorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	recs, err := s.analyst.Recorder().RecentSignals(c.Request.Context(), c.Param("symbol"), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("load history")
		errorResponse(c, http.StatusInternalServerError, "failed to load history")
		return
	}
	successResponse(c, recs)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var in analyst.Inputs
	if err := c.ShouldBindJSON(&in); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	out, err := s.analyst.AnalyzeInputs(in)
	if err != nil {
		s.analysisError(c, err)
		return
	}
	successResponse(c, out)
}
