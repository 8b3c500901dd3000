package app

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
)

// Codespace for every error returned by session and bank txs.
const Codespace = "session"

// Sentinel errors. Codes are part of the ABCI result surface; never renumber.
var (
	ErrInvalidRequest    = errorsmod.Register(Codespace, 1, "invalid request")
	ErrUnauthorized      = errorsmod.Register(Codespace, 2, "Not the dealer")
	// ErrNotActivePlayer is the unauthorized case for player actions (caller
	// never joined, or has folded). Category reports it as authorization,
	// same as ErrUnauthorized.
	ErrNotActivePlayer   = errorsmod.Register(Codespace, 3, "not an active player in session")
	ErrInvalidParameter  = errorsmod.Register(Codespace, 4, "invalid parameter")
	ErrIncorrectStake    = errorsmod.Register(Codespace, 5, "Incorrect buy-in amount")
	ErrBetTooLow         = errorsmod.Register(Codespace, 6, "Bet must be higher than current bet")
	ErrNothingToCall     = errorsmod.Register(Codespace, 7, "nothing to call")
	ErrUnknownWinner     = errorsmod.Register(Codespace, 8, "winner is not an eligible player")
	ErrDuplicateMember   = errorsmod.Register(Codespace, 9, "player already joined")
	ErrInsufficientFunds = errorsmod.Register(Codespace, 10, "insufficient funds")
	ErrInvalidState      = errorsmod.Register(Codespace, 11, "invalid session state")
	ErrNotFound          = errorsmod.Register(Codespace, 12, "session not found")
	ErrUnauthenticated   = errorsmod.Register(Codespace, 13, "tx authentication failed")
	ErrOverflow          = errorsmod.Register(Codespace, 14, "arithmetic overflow")
)

// ErrorCategory groups failures for callers that only care about the kind
// of rejection, not the exact rule.
type ErrorCategory string

const (
	CategoryNone          ErrorCategory = ""
	CategoryAuthorization ErrorCategory = "authorization"
	CategoryValidation    ErrorCategory = "validation"
	CategoryState         ErrorCategory = "state"
	CategoryLookup        ErrorCategory = "lookup"
	CategoryInternal      ErrorCategory = "internal"
)

func Category(err error) ErrorCategory {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrNotActivePlayer),
		errors.Is(err, ErrUnauthenticated):
		return CategoryAuthorization
	case errors.Is(err, ErrInvalidParameter),
		errors.Is(err, ErrIncorrectStake),
		errors.Is(err, ErrBetTooLow),
		errors.Is(err, ErrNothingToCall),
		errors.Is(err, ErrUnknownWinner),
		errors.Is(err, ErrDuplicateMember),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInvalidRequest):
		return CategoryValidation
	case errors.Is(err, ErrInvalidState):
		return CategoryState
	case errors.Is(err, ErrNotFound):
		return CategoryLookup
	default:
		return CategoryInternal
	}
}
