package api

import (
	"math"
	"net"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/readinglist-server/internal/errors"
	"github.com/listenupapp/readinglist-server/internal/ratelimit"
)

// rateLimited returns huma middleware that limits requests per client IP.
// Rejected requests get 429 with a Retry-After header in seconds.
func (s *Server) rateLimited(limiter *ratelimit.KeyedRateLimiter) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		key := clientIP(ctx.Header("X-Forwarded-For"), ctx.Header("X-Real-IP"), ctx.RemoteAddr())
		if limiter.Allow(key) {
			next(ctx)
			return
		}

		seconds := max(1, int(math.Ceil(limiter.RetryAfter(key).Seconds())))
		ctx.SetHeader("Retry-After", strconv.Itoa(seconds))
		s.logger.Warn("rate limit exceeded", "ip", key, "path", ctx.URL().Path)
		_ = huma.WriteErr(s.api, ctx, 429, "too many requests",
			domainerrors.RateLimited("too many requests, please try again later"))
	}
}

// clientIP picks the first forwarded address, then X-Real-IP, then the
// connection address without its port.
func clientIP(forwardedFor, realIP, remoteAddr string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}
	if realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
