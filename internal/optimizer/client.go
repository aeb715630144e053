// Package optimizer talks to the external schedule solver and provides a
// local greedy preview.
package optimizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hey-show123/beauty-scheduler/internal/metrics"
	"github.com/hey-show123/beauty-scheduler/internal/model"
)

const (
	optimizePath = "/api/v1/optimize-schedule/"
	cachePrefix  = "optimize:"
)

// Client calls the solver over HTTP with JSON bodies.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client for baseURL with a per-call timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        zerolog.Nop(),
	}
}

// UseRedisCache enables caching of solved results.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseRateLimit caps outgoing solve calls to perSecond with burst.
func (c *Client) UseRateLimit(perSecond float64, burst int) {
	if perSecond <= 0 {
		c.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// UseLogger sets the client logger.
func (c *Client) UseLogger(logger *zerolog.Logger) {
	if logger != nil {
		c.log = logger.With().Str("component", "optimizer").Logger()
	}
}

// Optimize posts req to the solver. Every failure is returned both as an
// ERROR result carrying the reason and as err.
func (c *Client) Optimize(ctx context.Context, req model.OptimizationRequest) (model.OptimizationResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return fail("encode request", err)
	}
	key := cacheKey(body)

	var cached model.OptimizationResult
	if c.readCache(ctx, key, &cached) {
		metrics.IncCacheLookup(true)
		c.log.Debug().Str("key", key).Msg("optimizer cache hit")
		return cached, nil
	}
	if c.cacheEnabled() {
		metrics.IncCacheLookup(false)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail("rate limit", err)
		}
	}

	var result model.OptimizationResult
	if err := c.doPost(ctx, c.baseURL+optimizePath, body, &result); err != nil {
		return fail("solve", err)
	}
	if result.Status == "" {
		return fail("solve", errors.New("response has no status"))
	}
	if result.Status == model.ResultError && result.Message == "" {
		result.Message = "optimizer reported an error"
	}

	if result.Status.Solved() {
		c.writeCache(ctx, key, result)
	}
	return result, nil
}

// InvalidateCache drops every cached result. Staff and booking edits call it
// because cache keys only cover ids.
func (c *Client) InvalidateCache(ctx context.Context) error {
	if !c.cacheEnabled() {
		return nil
	}
	iter := c.redis.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}

// HealthCheck checks the solver's /health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return err
	}
	c.addHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}

func fail(stage string, err error) (model.OptimizationResult, error) {
	err = fmt.Errorf("%s: %w", stage, err)
	return model.ErrorResult(err.Error()), err
}

func cacheKey(body []byte) string {
	sum := sha256.Sum256(body)
	return cachePrefix + hex.EncodeToString(sum[:])
}

func (c *Client) cacheEnabled() bool {
	return c.redis != nil && c.cacheTTL > 0
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if !c.cacheEnabled() {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if !c.cacheEnabled() {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.log.Warn().Err(err).Msg("optimizer cache write failed")
	}
}

func (c *Client) doPost(ctx context.Context, endpoint string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) addHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}
