package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	var seen uuid.UUID
	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	valid := signToken(t, testSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "valid bearer", header: "Bearer " + valid, want: http.StatusNoContent},
		{name: "query token", query: "?access_token=" + valid, want: http.StatusNoContent},
		{name: "missing token", want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signToken(t, []byte("other"), jwt.MapClaims{"user_id": userID.String()}), want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"user_id": userID.String(),
			"exp":     time.Now().Add(-time.Hour).Unix(),
		}), want: http.StatusUnauthorized},
		{name: "numeric user id", header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"user_id": 42}), want: http.StatusUnauthorized},
		{name: "missing user id", header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"role": "admin"}), want: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusNoContent {
				assert.Equal(t, userID, seen)
			}
		})
	}
}

func TestGetUserIDFromContextWithoutClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetUserIDFromContext(req.Context())
	assert.ErrorIs(t, err, ErrNoUserInContext)
}

func TestAuthorize(t *testing.T) {
	handler := Authenticate(testSecret)(Authorize(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	for role, want := range map[string]int{RoleAdmin: http.StatusNoContent, "player": http.StatusForbidden} {
		token := signToken(t, testSecret, jwt.MapClaims{"user_id": uuid.NewString(), "role": role})
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}
