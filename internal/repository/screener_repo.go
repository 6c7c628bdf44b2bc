package repository

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"breakout-scanner/config"
	"breakout-scanner/internal/dto"
	"breakout-scanner/pkg/cache"
	"breakout-scanner/pkg/httpclient"
	"breakout-scanner/pkg/logger"

	"golang.org/x/time/rate"
)

type ScreenerRepository interface {
	GetRankedSymbols(ctx context.Context, limit int) ([]string, error)
}

type screenerRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     httpclient.HTTPClient
	listCache      cache.Cache
	requestLimiter *rate.Limiter
}

// NewScreenerRepository creates a ranked-symbol-list source used to seed
// the scan queue in bulk.
func NewScreenerRepository(cfg *config.Config, listCache cache.Cache, log *logger.Logger) ScreenerRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Screener.MaxRequestPerMinute)

	return &screenerRepository{
		cfg:            cfg,
		log:            log,
		httpClient:     httpclient.New(cfg.Screener.BaseURL, cfg.Screener.Timeout),
		listCache:      listCache,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *screenerRepository) GetRankedSymbols(ctx context.Context, limit int) ([]string, error) {
	cacheKey := "ranked_symbols:" + strconv.Itoa(limit)
	if symbols, found := cache.GetTyped[[]string](r.listCache, cacheKey); found {
		return symbols, nil
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var ranked dto.RankedSymbols
	resp, err := r.httpClient.Get(ctx, "/rankings", map[string]string{
		"limit": strconv.Itoa(limit),
	}, nil, &ranked)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ranked symbols: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.log.ErrorContext(ctx, "Screener API returned non-OK status",
			logger.IntField("status_code", resp.StatusCode))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: string(resp.Body)}
	}

	symbols := []string(ranked)
	if len(symbols) > limit {
		symbols = symbols[:limit]
	}

	r.listCache.Set(cacheKey, symbols, r.cfg.Screener.ListCacheTTL)
	return symbols, nil
}
