package engine

import (
	"errors"
	"fmt"
)

// Code classifies game errors for transports
type Code string

const (
	CodeInvalidMove     Code = "invalid_move"
	CodeNotYourTurn     Code = "not_your_turn"
	CodeWrongPlayer     Code = "wrong_player"
	CodeSessionNotFound Code = "session_not_found"
	CodeInvalidConfig   Code = "invalid_config"
)

// Error is a classified game error. Reason narrows the code for callers
// that need to tell, say, a filled column from an occupied cell.
type Error struct {
	Code    Code
	Reason  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Code, and on Reason when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// NewError builds a classified error
func NewError(code Code, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// WrapError classifies cause under code
func WrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first classified error in the chain
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var (
	// Class sentinels, for errors.Is checks against a whole code.
	ErrInvalidMove     = &Error{Code: CodeInvalidMove, Message: "invalid move"}
	ErrInvalidConfig   = &Error{Code: CodeInvalidConfig, Message: "invalid configuration"}
	ErrSessionNotFound = &Error{Code: CodeSessionNotFound, Message: "session not found"}

	ErrNotYourTurn = NewError(CodeNotYourTurn, "not_your_turn", "not your turn")
	ErrWrongPlayer = NewError(CodeWrongPlayer, "wrong_player", "side already claimed by another player")

	ErrOutOfBounds      = NewError(CodeInvalidMove, "out_of_bounds", "position out of bounds")
	ErrGameOver         = NewError(CodeInvalidMove, "game_over", "game is already over")
	ErrCellNotEmpty     = NewError(CodeInvalidMove, "cell_not_empty", "cell is not empty")
	ErrUnplaceable      = NewError(CodeInvalidMove, "unplaceable", "no pieces would be captured")
	ErrColumnFilled     = NewError(CodeInvalidMove, "column_filled", "column is full")
	ErrCellFlagged      = NewError(CodeInvalidMove, "cell_flagged", "cell is flagged")
	ErrAlreadyRevealed  = NewError(CodeInvalidMove, "already_revealed", "cell is already revealed")
	ErrChordUnsatisfied = NewError(CodeInvalidMove, "chord_unsatisfied", "flag count does not match")
	ErrUnknownAction    = NewError(CodeInvalidMove, "unknown_action", "unknown action")
)

func invalidConfig(format string, args ...any) error {
	return &Error{Code: CodeInvalidConfig, Reason: "dimensions", Message: fmt.Sprintf(format, args...)}
}
