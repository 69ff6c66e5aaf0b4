package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signedToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func echoUserID(w http.ResponseWriter, r *http.Request) {
	id, ok := UserID(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Write([]byte(id))
}

func TestMiddlewarePutsCallerInContext(t *testing.T) {
	handler := Middleware(testSecret)(http.HandlerFunc(echoUserID))

	token := signedToken(t, Claims{
		UserID: "user-42",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-42", rec.Body.String())
}

func TestMiddlewareFallsBackToSubjectClaim(t *testing.T) {
	handler := Middleware(testSecret)(http.HandlerFunc(echoUserID))

	token := signedToken(t, Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   "user-7",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-7", rec.Body.String())
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	handler := Middleware(testSecret)(http.HandlerFunc(echoUserID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsBadSignature(t *testing.T) {
	handler := Middleware(testSecret)(http.HandlerFunc(echoUserID))

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-42"}).
		SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
