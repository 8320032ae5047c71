package modeladapter

import (
	"net/http"
	"strconv"
	"time"
)

// RateLimitInfo is the quota state reported by the last response.
// Groq sends it on every reply, 429s included.
type RateLimitInfo struct {
	RemainingRequests int
	RemainingTokens   int
	RequestsReset     time.Time
	TokensReset       time.Time
}

// Exhausted reports whether the next request is expected to be rejected,
// and when the quota that ran out resets.
func (i *RateLimitInfo) Exhausted(now time.Time) (bool, time.Time) {
	if i == nil {
		return false, time.Time{}
	}

	var reset time.Time
	if i.RemainingRequests == 0 && i.RequestsReset.After(now) {
		reset = i.RequestsReset
	}
	if i.RemainingTokens == 0 && i.TokensReset.After(now) && i.TokensReset.After(reset) {
		reset = i.TokensReset
	}

	return !reset.IsZero(), reset
}

// RateLimitInfoReporter exposes the most recent RateLimitInfo, or nil.
type RateLimitInfoReporter interface {
	LastRateLimitInfo() *RateLimitInfo
}

// RateLimitHeaderParser extracts rate limit info from response headers.
// now is passed in so tests control the clock.
type RateLimitHeaderParser func(h http.Header, now time.Time) *RateLimitInfo

// ParseRateLimitHeaders reads the x-ratelimit-remaining-{requests,tokens}
// and x-ratelimit-reset-{requests,tokens} headers used by Groq and OpenAI.
// Resets may be RFC 3339 times or durations such as "2m59.56s". It returns
// nil when neither remaining header is present.
func ParseRateLimitHeaders(h http.Header, now time.Time) *RateLimitInfo {
	requests, hasRequests := headerInt(h, "x-ratelimit-remaining-requests")
	tokens, hasTokens := headerInt(h, "x-ratelimit-remaining-tokens")
	if !hasRequests && !hasTokens {
		return nil
	}

	return &RateLimitInfo{
		RemainingRequests: requests,
		RemainingTokens:   tokens,
		RequestsReset:     resetTime(h.Get("x-ratelimit-reset-requests"), now),
		TokensReset:       resetTime(h.Get("x-ratelimit-reset-tokens"), now),
	}
}

// headerInt returns -1 for a present but unparsable value so that it is
// never mistaken for an exhausted quota.
func headerInt(h http.Header, key string) (int, bool) {
	raw := h.Get(key)
	if raw == "" {
		return -1, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1, true
	}
	return v, true
}

func resetTime(val string, now time.Time) time.Time {
	if val == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t
	}
	if d, err := time.ParseDuration(val); err == nil {
		return now.Add(d)
	}
	return time.Time{}
}
