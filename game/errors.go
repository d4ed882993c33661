// game/errors.go - Typed outcomes for rejected room operations
package game

import (
	"errors"
)

// Every rejected operation returns one of these sentinels (usually wrapped
// with context via fmt.Errorf and %w) so callers can reconcile their UI
// without a full reload. None of them crash a room.
var (
	// State violations
	ErrRoomNotFound           = errors.New("room not found")
	ErrRoomFull               = errors.New("room is full")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInsufficientContent    = errors.New("not enough questions available")

	// Submission violations
	ErrStaleQuestion    = errors.New("submission is for a stale question")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrDeadlineExceeded = errors.New("question deadline exceeded")
	ErrNotAMember       = errors.New("player is not a room member")

	// Concurrency losses. The guard's version check failed because another
	// transition won the race; callers should refetch state and treat this
	// as a benign no-op, not a user-facing failure.
	ErrConcurrentTransitionLost = errors.New("concurrent transition lost")
)
