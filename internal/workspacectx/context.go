// Package workspacectx carries the authenticated tenant identity through
// request contexts. Authentication itself happens upstream; this package
// only transports the resolved IDs.
package workspacectx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type workspaceKey struct{}
type userKey struct{}

// WithWorkspaceID stores the active workspace ID in the context.
func WithWorkspaceID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, workspaceKey{}, id)
}

// WithUserID stores the acting user ID in the context.
func WithUserID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

// WorkspaceIDFromContext returns the workspace ID from context, if set.
func WorkspaceIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	return idFromContext(ctx, workspaceKey{})
}

// UserIDFromContext returns the acting user ID from context, if set.
func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	return idFromContext(ctx, userKey{})
}

func idFromContext(ctx context.Context, key any) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	switch typed := ctx.Value(key).(type) {
	case snowflake.ID:
		return typed, typed != 0
	case int64:
		return snowflake.ID(typed), typed != 0
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, parsed != 0
		}
	}
	return 0, false
}
