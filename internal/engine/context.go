package engine

import (
	"errors"
	"time"
)

var (
	ErrQueryTimeout       = errors.New("query execution timeout")
	ErrMatchLimitExceeded = errors.New("term match limit exceeded")
)

// ExecutionContext tracks execution limits and timeout for a query.
type ExecutionContext struct {
	Deadline time.Time

	// MaxTermsMatched caps how many index terms a multi-term query
	// (prefix expansion) may touch.
	MaxTermsMatched int

	TermsMatched int

	// checkCounter amortizes time checks.
	checkCounter  int
	checkInterval int

	TimedOut      bool
	LimitExceeded bool
}

// NewExecutionContext creates a context with the given timeout and term limit.
func NewExecutionContext(timeout time.Duration, maxTerms int) *ExecutionContext {
	if maxTerms <= 0 {
		maxTerms = 1000
	}
	return &ExecutionContext{
		Deadline:        time.Now().Add(timeout),
		MaxTermsMatched: maxTerms,
		checkInterval:   128,
	}
}

// CheckLimits checks whether any execution limit has been exceeded.
// Time checks are amortized to avoid calling time.Now() on every iteration.
func (ctx *ExecutionContext) CheckLimits() error {
	if ctx.TermsMatched >= ctx.MaxTermsMatched {
		ctx.LimitExceeded = true
		return ErrMatchLimitExceeded
	}

	ctx.checkCounter++
	if ctx.checkCounter%ctx.checkInterval == 0 {
		if time.Now().After(ctx.Deadline) {
			ctx.TimedOut = true
			return ErrQueryTimeout
		}
	}
	return nil
}
