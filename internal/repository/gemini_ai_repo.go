package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"breakout-scanner/config"
	"breakout-scanner/internal/dto"
	"breakout-scanner/pkg/logger"
	"breakout-scanner/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ErrAIDisabled is returned when no Gemini API key is configured.
var ErrAIDisabled = errors.New("ai summaries are disabled")

type AIRepository interface {
	SummarizeScan(ctx context.Context, result *dto.ScanResult) (string, error)
}

type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates the Gemini-backed summarizer. Without an
// API key it returns a repository that reports ErrAIDisabled.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	if cfg.Gemini.APIKey == "" {
		return &geminiAIRepository{cfg: cfg, logger: log}, nil
	}

	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute),
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		genAiClient:    genAiClient,
	}, nil
}

func (r *geminiAIRepository) SummarizeScan(ctx context.Context, result *dto.ScanResult) (string, error) {
	if r.genAiClient == nil {
		return "", ErrAIDisabled
	}
	if result == nil {
		return "", fmt.Errorf("no scan result to summarize")
	}

	prompt := r.buildPrompt(result)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.BaseModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}
	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for gemini token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for gemini request limit: %w", err)
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.BaseModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}

func (r *geminiAIRepository) buildPrompt(result *dto.ScanResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a trading assistant. Summarize this volume-vacuum breakout scan for %s (%d day lookback) in at most three sentences for a retail investor.\n",
		result.Symbol, result.LookbackDays)
	fmt.Fprintf(&sb, "Breakout signals found: %d\n", len(result.Signals))
	for _, signal := range result.Signals {
		fmt.Fprintf(&sb, "- %s at %.2f, weight gap %.3f\n",
			signal.Breakout.Date.Format("2006-01-02"), signal.Breakout.Price, signal.Breakout.WeightDiff)
	}
	if opt := result.Optimization; opt != nil {
		fmt.Fprintf(&sb, "Best configuration: SMA %d, breakout threshold %.2f, total P/L %.1f%% over %.1f signals\n",
			opt.SMAPeriod, opt.BreakoutParams.BreakoutThreshold, opt.TotalPL, opt.TotalSignals)
	}
	return sb.String()
}
