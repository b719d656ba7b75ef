package services

import (
	"errors"
	"fmt"

	"github.com/N3z3d/FortniteProject-sub000/repositories"
)

// mapRepositoryError turns repository not-found sentinels into NotFound
// business errors and wraps everything else unchanged.
func mapRepositoryError(op string, err error, format string, args ...interface{}) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return newTradeError(KindNotFound, op, ErrTeamNotFound, format, args...)
	case errors.Is(err, repositories.ErrTradeNotFound):
		return newTradeError(KindNotFound, op, ErrTradeNotFound, format, args...)
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return newTradeError(KindNotFound, op, ErrPlayerNotFound, format, args...)
	case errors.Is(err, repositories.ErrGameNotFound):
		return newTradeError(KindNotFound, op, ErrGameNotFound, format, args...)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
