package xcontext

import "context"

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestUserIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, _ := ctx.Value(requestUserIDKey{}).(string)
	return id
}

// WithRequestUserRole stores the coarse role supplied by the identity layer.
// The core trusts it and performs no credential verification.
func WithRequestUserRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, requestUserRoleKey{}, role)
}

func RequestUserRole(ctx context.Context) string {
	role, _ := ctx.Value(requestUserRoleKey{}).(string)
	return role
}
