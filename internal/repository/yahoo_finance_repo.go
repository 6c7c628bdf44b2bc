package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"breakout-scanner/config"
	"breakout-scanner/internal/dto"
	"breakout-scanner/pkg/httpclient"
	"breakout-scanner/pkg/logger"

	"golang.org/x/time/rate"
)

type PriceHistoryRepository interface {
	Get(ctx context.Context, param dto.GetPriceHistoryParam) (*dto.PriceHistory, error)
}

type yahooFinanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewYahooFinanceRepository creates a chart-API backed price history
// source.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) PriceHistoryRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &yahooFinanceRepository{
		httpClient:     httpclient.New(cfg.YahooFinance.BaseURL, cfg.YahooFinance.Timeout),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

func (r *yahooFinanceRepository) Get(ctx context.Context, param dto.GetPriceHistoryParam) (*dto.PriceHistory, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	now := time.Now()
	queryParams := map[string]string{
		"period1":        fmt.Sprintf("%d", now.AddDate(0, 0, -param.LookbackDays).Unix()),
		"period2":        fmt.Sprintf("%d", now.Unix()),
		"interval":       "1d",
		"includePrePost": "false",
		"events":         "div,split",
	}

	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}

	var yahooResp dto.YahooFinanceResponse
	resp, err := r.httpClient.Get(ctx, "/"+param.Symbol, queryParams, headers, &yahooResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Price history API returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("symbol", param.Symbol))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: string(resp.Body)}
	}

	if yahooResp.Chart.Error != nil {
		return nil, fmt.Errorf("price history api error: %v", yahooResp.Chart.Error)
	}
	if len(yahooResp.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	result := yahooResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	quote := result.Indicators.Quote[0]

	var bars []dto.PriceBar
	for i, timestamp := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			continue
		}
		// Zero prices mark missing data in the chart API.
		if quote.Open[i] == 0 || quote.High[i] == 0 || quote.Low[i] == 0 || quote.Close[i] == 0 {
			continue
		}

		bars = append(bars, dto.PriceBar{
			Date:   time.Unix(timestamp, 0).UTC().Truncate(24 * time.Hour),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: quote.Volume[i],
		})
	}

	if len(bars) == 0 {
		return nil, ErrNoData
	}

	return &dto.PriceHistory{
		Symbol: param.Symbol,
		Prices: dto.NormalizeAscending(bars),
	}, nil
}
