package conversation

import (
	"errors"
	"fmt"
	"time"

	"github.com/profile-chat/backend/internal/captcha"
)

var ErrEmptyMessage = errors.New("message is empty after sanitization")

// RateLimitedError rejects a prompt that exceeded the sliding window.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// CaptchaRequiredError blocks a prompt until the session solves the challenge.
type CaptchaRequiredError struct {
	Challenge   *captcha.Challenge
	PromptCount int
}

func (e *CaptchaRequiredError) Error() string {
	return "captcha challenge must be solved before continuing"
}
