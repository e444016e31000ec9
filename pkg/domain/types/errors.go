package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Error tags classify failures across component boundaries. Internal
// components attach tags instead of raising opaque errors; the HTTP
// boundary maps tags to status codes.
var (
	// TagRateLimited marks an explicit rate-limit signal from the LLM
	// capability. Surfaced to callers as a retryable condition (429).
	TagRateLimited = goerr.NewTag("rate_limited")

	// TagStoreUnavailable marks an unreachable embedding/vector/graph
	// backend.
	TagStoreUnavailable = goerr.NewTag("store_unavailable")

	// TagExhausted marks an agent loop that hit its step cap without
	// producing a final answer.
	TagExhausted = goerr.NewTag("exhausted")
)

// IsRateLimited reports whether the error chain carries TagRateLimited
func IsRateLimited(err error) bool {
	return goerr.HasTag(err, TagRateLimited)
}

// IsExhausted reports whether the error chain carries TagExhausted
func IsExhausted(err error) bool {
	return goerr.HasTag(err, TagExhausted)
}

// rateLimitMarkers are substrings that identify an explicit rate-limit
// signal in provider errors. The LLM layer surfaces provider failures
// as opaque errors, so classification inspects the message.
var rateLimitMarkers = []string{
	"429",
	"rate limit",
	"rate_limit",
	"ratelimit",
	"resource_exhausted",
	"quota exceeded",
}

// WrapLLMError wraps an LLM capability error, tagging explicit
// rate-limit signals so the outer boundary can surface them as a
// distinct retryable condition.
func WrapLLMError(err error, msg string, options ...goerr.Option) error {
	if err == nil {
		return nil
	}
	lower := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(lower, marker) {
			options = append(options, goerr.T(TagRateLimited))
			break
		}
	}
	return goerr.Wrap(err, msg, options...)
}
