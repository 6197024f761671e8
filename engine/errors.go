package engine

import "errors"

// Sentinel errors shared by the engine and the service layer. Callers classify
// failures with errors.Is; none of these carry retryable semantics except
// ErrDuplicateUnlock, which the ledger treats as success.
var (
	// ErrInvalidTimezone means the supplied IANA timezone identifier does not
	// resolve. Fatal to the caller — never silently replaced with a fallback.
	ErrInvalidTimezone = errors.New("invalid timezone")

	// ErrRateLimited means a check/uncheck mutation violated the per-goal
	// daily cap or the minimum spacing between occurrences.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidUnlockCondition means a catalog entry carries a condition type
	// the evaluator does not know. The entry is skipped, not fatal to a batch.
	ErrInvalidUnlockCondition = errors.New("invalid unlock condition")

	// ErrDuplicateUnlock means an unlock record already exists for the pair.
	// Treated as a benign no-op by the ledger.
	ErrDuplicateUnlock = errors.New("duplicate unlock")
)
