package entities

import "errors"

var (
	ErrNotFound             = errors.New("entity not found")
	ErrUnknownCurrency      = errors.New("unknown currency")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrNoRates              = errors.New("no exchange rates available")
	ErrEventNotAllowed      = errors.New("event type not allowed")
	ErrRateLimited          = errors.New("rate limit exceeded")
	ErrProvidersUnavailable = errors.New("all rate providers failed")
)
