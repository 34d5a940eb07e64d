package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthProvider(t *testing.T) {
	p, err := NewAuthProvider("", "", "")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = NewAuthProvider("apikey", "", "")
	assert.Error(t, err)

	_, err = NewAuthProvider("oauth", "", "")
	assert.Error(t, err)
}

func TestAuthMiddlewareStoresUser(t *testing.T) {
	provider, err := NewAuthProvider("apikey", "secret", "")
	require.NoError(t, err)

	var seenID string
	var seen bool
	handler := AuthMiddleware(provider, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := AuthUser(r.Context())
		seen = ok
		if ok {
			seenID = user.ID
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, seen)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, seen)
	assert.Equal(t, "user", seenID)
}

func TestAuthUserMissing(t *testing.T) {
	_, ok := AuthUser(context.Background())
	assert.False(t, ok)
}
