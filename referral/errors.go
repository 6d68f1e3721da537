package referral

import (
	"errors"
	"fmt"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileExists      = errors.New("profile already exists")
	ErrReferrerNotFound   = errors.New("referral code not found")
	ErrRequestNotFound    = errors.New("withdrawal request not found")
	ErrAlreadyProcessed   = errors.New("request already processed")
	ErrCodeExhausted      = errors.New("gave up generating a unique referral code")
	ErrRegNumberExhausted = errors.New("gave up allocating a registration number")
)

// ValidationError rejects bad input before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type InsufficientBalanceError struct {
	Available int64
	Requested int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %d, available %d", e.Requested, e.Available)
}

// PartialError reports a distribution that stopped mid-chain. Levels
// already committed stay committed; the caller decides whether to log or
// surface it, never to roll back.
type PartialError struct {
	LevelsProcessed int
	Cause           error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("distribution stopped after %d levels: %v", e.LevelsProcessed, e.Cause)
}

func (e *PartialError) Unwrap() error { return e.Cause }
