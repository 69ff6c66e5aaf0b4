package auth

import (
	"context"

	"github.com/dgrijalva/jwt-go"
)

// Claims is the subset of the identity token this service cares about.
// Tokens are issued by the user service; we only verify and read them.
type Claims struct {
	UserID string `json:"userID"`
	jwt.StandardClaims
}

type contextKey struct{}

var userIDKey contextKey

// WithUserID returns a context carrying the authenticated caller's id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID extracts the authenticated caller's id, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
