package game

import "errors"

// Rejected-action errors. Every validation happens before any
// mutation, so a failed action leaves the table untouched.
var (
	ErrInvalidAction     = errors.New("invalid action")
	ErrRoundNotActive    = errors.New("round not active")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrAlreadyFolded     = errors.New("already folded")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrMissingParameters = errors.New("missing parameters")
)
