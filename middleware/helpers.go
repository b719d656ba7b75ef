package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
)

// RoleAdmin may toggle player locks.
const RoleAdmin = "admin"

var ErrNoUserInContext = errors.New("user claims not found in context or invalid type")

// GetUserIDFromContext returns the acting user stored by Authenticate.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrNoUserInContext
	}
	return userIDFromClaims(claims)
}

func userIDFromClaims(claims jwt.MapClaims) (uuid.UUID, error) {
	raw, ok := claims[jwtClaimUserID]
	if !ok {
		return uuid.Nil, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}
	str, ok := raw.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimUserID, raw)
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid '%s' claim %q: %w", jwtClaimUserID, str, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("'%s' claim must not be the nil uuid", jwtClaimUserID)
	}
	return id, nil
}
