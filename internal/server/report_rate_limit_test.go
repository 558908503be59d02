package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/smallbiznis/sevadesk/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	result  ratelimit.RateLimitResult
	err     error
	clients []string
}

func (f *fakeLimiter) Allow(ctx context.Context, client string) (*ratelimit.RateLimitResult, error) {
	f.clients = append(f.clients, client)
	if f.err != nil {
		return nil, f.err
	}
	res := f.result
	return &res, nil
}

func TestReportRateLimitAllows(t *testing.T) {
	s := newTestServer(t)
	limiter := &fakeLimiter{result: ratelimit.RateLimitResult{Allowed: true}}
	s.server.reportLimiter = limiter

	resp := s.do(http.MethodGet, "/api/reports/monthly?year=2024&month=1", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Len(t, limiter.clients, 1)
}

func TestReportRateLimitRejects(t *testing.T) {
	s := newTestServer(t)
	s.server.reportLimiter = &fakeLimiter{result: ratelimit.RateLimitResult{RetryAfter: 2500 * time.Millisecond}}

	resp := s.do(http.MethodGet, "/api/reports/monthly?year=2024&month=1", "")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "3", resp.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decodeError(t, resp).Type)
	assert.Zero(t, s.reports.year, "report must not be generated")
}

func TestReportRateLimitMinimumRetryAfter(t *testing.T) {
	s := newTestServer(t)
	s.server.reportLimiter = &fakeLimiter{}

	resp := s.do(http.MethodGet, "/api/reports/monthly", "")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))
}

func TestReportRateLimitBackendFailure(t *testing.T) {
	s := newTestServer(t)
	s.server.reportLimiter = &fakeLimiter{err: errors.New("redis down")}

	resp := s.do(http.MethodGet, "/api/reports/monthly", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "service_unavailable", decodeError(t, resp).Type)
}

func TestReportRateLimitSkipsSummary(t *testing.T) {
	s := newTestServer(t)
	limiter := &fakeLimiter{}
	s.server.reportLimiter = limiter

	resp := s.do(http.MethodGet, "/api/reports/monthly/summary?year=2024&month=1", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Empty(t, limiter.clients)
}
