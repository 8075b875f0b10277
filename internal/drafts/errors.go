package drafts

import "errors"

var (
	// ErrNotFound indicates the draft does not exist.
	ErrNotFound = errors.New("draft not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDraftExpired indicates the draft's TTL elapsed before apply.
	ErrDraftExpired = errors.New("draft expired")

	// ErrAlreadyApplied indicates the draft is not in the draft_ready state.
	ErrAlreadyApplied = errors.New("draft already applied")

	// ErrGenerationInProgress indicates a duplicate generation request for
	// the same (product, question, issueType) key.
	ErrGenerationInProgress = errors.New("draft generation in progress")

	// ErrGenerationTimeout indicates the provider did not answer in time.
	ErrGenerationTimeout = errors.New("draft generation timed out")

	// ErrGeneration indicates the provider failed to produce a draft.
	ErrGeneration = errors.New("draft generation failed")
)
