package middleware

import (
    "context"
    "errors"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/film-catalog/internal/config"
    "github.com/iliyamo/film-catalog/internal/logging"
)

// ErrTooManyRequests is shown on the error page when a bucket is empty.
var ErrTooManyRequests = echo.NewHTTPError(http.StatusTooManyRequests, "Слишком много запросов. Попробуйте позже.")

// bucketScript refills and takes one token atomically.
// KEYS[1] bucket key; ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_s.
// Returns {allowed, tokens_left, retry_after_ms}.
var bucketScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])
    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + intervals * refill_tokens)
            last_refill = last_refill + intervals * interval_ms
        end
    end

    local allowed = 0
    local retry_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        retry_ms = math.max(0, interval_ms - (now_ms - last_refill))
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)
    return { allowed, tokens, retry_ms }
`)

// bucketReply is the decoded script result.
type bucketReply struct {
    Allowed   bool
    Remaining int64
    RetryMs   int64
}

// NewTokenBucket returns a Redis-backed token bucket limiter.  With the
// limiter disabled or no Redis client it passes every request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return tokenBucket(cfg, rdb)
}

// tokenBucket runs the bucket script against s for every request.
// Redis errors and malformed replies fail open.
func tokenBucket(cfg config.RateLimitConfig, s redis.Scripter) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            reply, err := takeToken(c.Request().Context(), s, cfg, key, time.Now())
            if err != nil {
                logging.Warn().Err(err).Str("key", key).Msg("ratelimit: bucket unavailable")
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(reply.Remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }

            if !reply.Allowed {
                secs := int(math.Ceil(float64(reply.RetryMs) / 1000))
                if secs < 0 {
                    secs = 0
                }
                h.Set("Retry-After", strconv.Itoa(secs))
                if cfg.Debug {
                    logging.Info().Str("key", key).Int64("retry_ms", reply.RetryMs).Msg("ratelimit: blocked")
                }
                return ErrTooManyRequests
            }
            return next(c)
        }
    }
}

// takeToken evaluates the bucket script for key at now.
func takeToken(ctx context.Context, s redis.Scripter, cfg config.RateLimitConfig, key string, now time.Time) (bucketReply, error) {
    vals, err := bucketScript.Run(ctx, s, []string{key},
        now.UnixMilli(),
        cfg.Capacity,
        cfg.RefillTokens,
        cfg.RefillInterval.Milliseconds(),
        int64(cfg.TTL/time.Second),
    ).Slice()
    if err != nil {
        return bucketReply{}, err
    }
    if len(vals) != 3 {
        return bucketReply{}, errBadReply
    }
    return bucketReply{
        Allowed:   asInt64(vals[0]) == 1,
        Remaining: asInt64(vals[1]),
        RetryMs:   asInt64(vals[2]),
    }, nil
}

var errBadReply = errors.New("ratelimit: unexpected script reply")

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

// buildRateKey names the bucket for c according to cfg.KeyStrategy.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := userID(c)
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "route":
        parts = append(parts, "route", route)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
