package combat

import "errors"

// Code identifies a class of combat error.
type Code string

// Error is a coded combat error. Two errors are equal under errors.Is when
// their codes match, so callers can compare against the sentinels below
// while the message carries detail.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// with returns a copy of e carrying a more specific message.
func (e *Error) with(msg string) *Error {
	return &Error{Code: e.Code, Message: msg}
}

// Invalid actions. These are rejected before any state changes and leave
// the player's turn open.
var (
	ErrInsufficientMana   = &Error{Code: "INSUFFICIENT_MANA", Message: "not enough mana"}
	ErrAbilityOnCooldown  = &Error{Code: "ABILITY_ON_COOLDOWN", Message: "ability is on cooldown"}
	ErrAbilityNotEquipped = &Error{Code: "ABILITY_NOT_EQUIPPED", Message: "ability is not equipped"}
	ErrInvalidItem        = &Error{Code: "INVALID_ITEM", Message: "no item at that inventory slot"}
	ErrItemNotUsable      = &Error{Code: "ITEM_NOT_USABLE", Message: "item cannot be used in combat"}
	ErrTargetDefeated     = &Error{Code: "TARGET_DEFEATED", Message: "target is already defeated"}
	ErrNotPlayerTurn      = &Error{Code: "NOT_PLAYER_TURN", Message: "not the player's turn"}
	ErrSessionEnded       = &Error{Code: "SESSION_ENDED", Message: "combat session has ended"}
	ErrUnknownAction      = &Error{Code: "UNKNOWN_ACTION", Message: "unknown action"}
)

// ErrAwaitingAction is returned by Step while the scheduler waits for the
// player to submit an action. It is a signal, not a failure.
var ErrAwaitingAction = &Error{Code: "AWAITING_ACTION", Message: "waiting for player action"}

// Invariant violations. These indicate a programming error in the caller.
// With debug mode on they panic; otherwise they are returned and the
// session is left untouched.
var (
	ErrSessionActive = &Error{Code: "SESSION_ACTIVE", Message: "player already has an active combat session"}
	ErrNoEnemies     = &Error{Code: "NO_ENEMIES", Message: "combat requires at least one enemy"}
	ErrInvalidTarget = &Error{Code: "INVALID_TARGET", Message: "enemy index out of range or defeated"}
)

var rejections = []*Error{
	ErrInsufficientMana,
	ErrAbilityOnCooldown,
	ErrAbilityNotEquipped,
	ErrInvalidItem,
	ErrItemNotUsable,
	ErrTargetDefeated,
	ErrNotPlayerTurn,
	ErrSessionEnded,
	ErrUnknownAction,
}

// IsRejection reports whether err is a non-fatal invalid-action rejection.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
