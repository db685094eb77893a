package extract

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lexatlas/regscan/internal/resilience"
	"github.com/lexatlas/regscan/pkg/anthropic"
)

// TierConfig controls the model-profile ladder and its retry policy.
type TierConfig struct {
	// Profiles are model identifiers ordered fastest/cheapest first.
	Profiles []string
	// MaxAttempts bounds transport retries per profile.
	MaxAttempts int
	// BaseDelay is the linear-backoff unit between transport retries.
	BaseDelay time.Duration
	// CallTimeout bounds each individual service call.
	CallTimeout time.Duration
	// RatePerSecond throttles outgoing calls across all workers.
	// Zero disables throttling.
	RatePerSecond float64
}

// TierClient calls the classification service through an ordered ladder
// of model profiles, recovering JSON from whatever text comes back.
// Failures never escalate past this type: a call that exhausts every
// profile reports "no result" and nothing else.
type TierClient struct {
	client  anthropic.Client
	cfg     TierConfig
	limiter *rate.Limiter
}

// NewTierClient builds a TierClient over the given service client.
func NewTierClient(client anthropic.Client, cfg TierConfig) *TierClient {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return &TierClient{client: client, cfg: cfg, limiter: limiter}
}

// CallJSON sends prompt through the profile ladder and returns the
// first recoverable JSON value. Each profile gets bounded transport
// retries with linearly increasing backoff; an unparseable success
// escalates to the next profile the same way a transport failure does.
// The boolean reports whether any profile produced a usable value.
func (c *TierClient) CallJSON(ctx context.Context, prompt string, expectObject bool, maxTokens int64) (any, bool) {
	temp := 0.0
	for _, profile := range c.cfg.Profiles {
		retryCfg := resilience.RetryConfig{
			MaxAttempts: c.cfg.MaxAttempts,
			BaseDelay:   c.cfg.BaseDelay,
			OnRetry:     resilience.RetryLogger("anthropic", profile),
		}
		resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return nil, err
				}
			}
			callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
			defer cancel()
			return c.client.CreateMessage(callCtx, anthropic.MessageRequest{
				Model:       profile,
				MaxTokens:   maxTokens,
				Temperature: &temp,
				Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
			})
		})
		if err != nil {
			zap.L().Warn("model call failed",
				zap.String("profile", profile),
				zap.Error(err))
			if ctx.Err() != nil {
				return nil, false
			}
			continue
		}
		resp.Usage.LogCost(profile, "extract")
		if v, ok := RecoverJSON(resp.Text(), expectObject); ok {
			zap.L().Debug("model call succeeded", zap.String("profile", profile))
			return v, true
		}
		zap.L().Warn("unrecoverable model response", zap.String("profile", profile))
	}
	return nil, false
}
