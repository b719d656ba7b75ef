package services

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies business failures of trade operations.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindUnauthorized      Kind = "unauthorized"
	KindInvalidState      Kind = "invalid_state"
	KindOwnershipMismatch Kind = "ownership_mismatch"
	KindLimitExceeded     Kind = "limit_exceeded"
	KindDeadlinePassed    Kind = "deadline_passed"
	KindTradingDisabled   Kind = "trading_disabled"
	KindInvalidRequest    Kind = "invalid_request"
)

// Reasons carried by TradeError. Match them with errors.Is.
var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrTradeNotFound  = errors.New("trade not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrGameNotFound   = errors.New("game not found")

	ErrNotRecipient = errors.New("only the receiving team owner may perform this action")
	ErrNotInitiator = errors.New("only the proposing team owner may perform this action")

	ErrTradeAlreadyProcessed = errors.New("trade has already been processed")

	ErrPlayerNotOnTeam = errors.New("player is not an active member of the team")

	ErrTradeLimitReached   = errors.New("team has reached its trade limit")
	ErrTooManyPlayers      = errors.New("too many players in one trade")
	ErrPlayerLocked        = errors.New("player is locked")
	ErrRegionLimitExceeded = errors.New("region limit exceeded")

	ErrTradeDeadlinePassed = errors.New("trade deadline has passed")
	ErrTradingDisabled     = errors.New("trading is disabled for this game")

	ErrNoPlayers          = errors.New("trade must include at least one player")
	ErrDuplicatePlayer    = errors.New("player listed more than once")
	ErrSameTeam           = errors.New("a team cannot trade with itself")
	ErrCrossGameTrade     = errors.New("teams belong to different games")
	ErrInvalidRegionRule  = errors.New("invalid region rule")
	ErrInvalidSeason      = errors.New("season must be positive")
	ErrInvalidTradeStatus = errors.New("invalid trade status")
)

// TradeError is the business error returned by the trading services.
type TradeError struct {
	Kind   Kind
	Op     string
	Reason error
	Detail string
}

func (e *TradeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Reason != nil {
		b.WriteString(e.Reason.Error())
	} else {
		b.WriteString(string(e.Kind))
	}
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	return b.String()
}

func (e *TradeError) Unwrap() error { return e.Reason }

func newTradeError(kind Kind, op string, reason error, format string, args ...interface{}) *TradeError {
	return &TradeError{
		Kind:   kind,
		Op:     op,
		Reason: reason,
		Detail: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the Kind of a business error, or "" for any other error.
func KindOf(err error) Kind {
	var tradeErr *TradeError
	if !errors.As(err, &tradeErr) {
		return ""
	}
	return tradeErr.Kind
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
