package budget

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultRetryWait is used when a rate limit is detected without any hint of
// when it resets
const DefaultRetryWait = 30 * time.Second

// RateLimitInfo contains parsed rate limit details
type RateLimitInfo struct {
	DetectedAt  time.Time
	ResetAt     time.Time // When limit resets
	WaitSeconds int64
	RawMessage  string
	Source      string // "header", "body", "output"
}

// TimeUntilReset calculates duration until the rate limit resets
func (r *RateLimitInfo) TimeUntilReset() time.Duration {
	if r.ResetAt.IsZero() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// IsExpired checks if the rate limit has already expired
func (r *RateLimitInfo) IsExpired() bool {
	if r.ResetAt.IsZero() {
		return true
	}
	return time.Now().After(r.ResetAt)
}

var (
	// Claude CLI: "Claude AI usage limit reached|<unix_timestamp>"
	unixTimestampPattern = regexp.MustCompile(`usage limit reached\|(\d+)`)

	// "Please retry in 17.5s" / "retry after 300 seconds"
	retrySecondsPattern = regexp.MustCompile(`(?i)retry (?:in|after)\s+(\d+(?:\.\d+)?)\s*(?:seconds?|s)\b`)

	// google.rpc.RetryInfo inside an error body: "retryDelay": "30s"
	retryDelayPattern = regexp.MustCompile(`"retryDelay"\s*:\s*"(\d+(?:\.\d+)?)s"`)

	rateLimitIndicator = regexp.MustCompile(`(?i)(rate.?limit|usage.?limit|resource.?exhausted|quota|429|too.?many.?requests)`)
)

// FromResponse inspects an HTTP response for a rate limit.
// It returns nil unless the status is 429. The Retry-After header wins over
// hints in the body; with neither, DefaultRetryWait applies.
func FromResponse(status int, header http.Header, body string) *RateLimitInfo {
	if status != http.StatusTooManyRequests {
		return nil
	}

	now := time.Now()
	if wait, ok := ParseRetryAfter(header.Get("Retry-After"), now); ok {
		return newInfo(now, wait, body, "header")
	}
	if wait, ok := parseWaitHint(body); ok {
		return newInfo(now, wait, body, "body")
	}
	return newInfo(now, DefaultRetryWait, body, "body")
}

// ParseRetryAfter parses a Retry-After header value, either delay-seconds or
// an HTTP date
func ParseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		wait := at.Sub(now)
		if wait < 0 {
			wait = 0
		}
		return wait, true
	}
	return 0, false
}

// ParseRateLimitFromOutput parses rate limit info from CLI output or an
// error message. It returns nil when the text does not look like a rate
// limit.
func ParseRateLimitFromOutput(output string) *RateLimitInfo {
	if output == "" {
		return nil
	}

	now := time.Now()

	if matches := unixTimestampPattern.FindStringSubmatch(output); len(matches) > 1 {
		if ts, err := strconv.ParseInt(matches[1], 10, 64); err == nil {
			info := newInfo(now, 0, output, "output")
			info.ResetAt = time.Unix(ts, 0)
			info.WaitSeconds = info.ResetAt.Unix() - now.Unix()
			return info
		}
	}

	if !rateLimitIndicator.MatchString(output) {
		return nil
	}

	if wait, ok := parseWaitHint(output); ok {
		return newInfo(now, wait, output, "output")
	}
	return newInfo(now, DefaultRetryWait, output, "output")
}

func parseWaitHint(text string) (time.Duration, bool) {
	for _, re := range []*regexp.Regexp{retryDelayPattern, retrySecondsPattern} {
		matches := re.FindStringSubmatch(text)
		if len(matches) < 2 {
			continue
		}
		seconds, err := strconv.ParseFloat(matches[1], 64)
		if err != nil || seconds < 0 {
			continue
		}
		return time.Duration(seconds * float64(time.Second)), true
	}
	return 0, false
}

func newInfo(now time.Time, wait time.Duration, raw, source string) *RateLimitInfo {
	return &RateLimitInfo{
		DetectedAt:  now,
		ResetAt:     now.Add(wait),
		WaitSeconds: int64(wait.Seconds()),
		RawMessage:  raw,
		Source:      source,
	}
}
