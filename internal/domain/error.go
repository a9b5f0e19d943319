package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidPlan     = errors.New("invalid plan")
	ErrInvalidEmail    = errors.New("invalid payer email")
	ErrUnauthorized    = errors.New("missing or invalid credentials")
	ErrForbidden       = errors.New("caller not allowed")
	ErrNoGuild         = errors.New("no guild resolved for identity")
	ErrAccessDenied    = errors.New("account not authorized for this application")
	ErrUpstream        = errors.New("upstream service failure")
	ErrOperationFailed = errors.New("operation failed")
)

// RateLimitedError signals that the caller must wait before retrying.
// Reason distinguishes the short sliding window from the creation cooldown.
type RateLimitedError struct {
	RetryAfter time.Duration
	Reason     string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited (%s): retry after %s", e.Reason, e.RetryAfter)
}

// PendingConflictError is returned when a creation request names a plan
// different from the one already pending for the same user.
type PendingConflictError struct {
	PendingPlan string
	PaymentID   string
}

func (e *PendingConflictError) Error() string {
	return fmt.Sprintf("payment for plan %q already pending (payment %s)", e.PendingPlan, e.PaymentID)
}

// GatewayRejectedError carries the provider's status code and raw payload so
// callers can diagnose a rejected charge.
type GatewayRejectedError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *GatewayRejectedError) Error() string {
	return fmt.Sprintf("payment provider rejected the request (status %d)", e.StatusCode)
}
