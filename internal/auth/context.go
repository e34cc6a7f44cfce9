package auth

import "context"

type contextKey struct{}

// AuthContext identifies the signed-in admin for the current request.
type AuthContext struct {
	Email       string
	AccessToken string
	SessionID   int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// Email returns the signed-in identity, or "" when unauthenticated.
func Email(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.Email
}

// AccessToken returns the record-store access token for the current request.
// Data API calls made with this token run under the store's row-level security
// for that user; without it they run with anonymous rights only.
func AccessToken(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.AccessToken
}
