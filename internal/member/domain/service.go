package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Resolver is a pure rate lookup. A project membership wins unconditionally
// when one exists; otherwise workspace defaults apply. Project type (for
// non-billable zeroing) is the aggregation engine's concern, not the
// resolver's.
type Resolver interface {
	Resolve(ctx context.Context, userID, workspaceID snowflake.ID, projectID *snowflake.ID) (RateCard, error)
}

var (
	ErrInvalidUser      = errors.New("invalid_user")
	ErrInvalidWorkspace = errors.New("invalid_workspace")
	ErrInvalidRate      = errors.New("invalid_rate")

	// ErrWorkspaceMemberNotFound signals inconsistent membership data. It
	// must propagate: defaulting to a zero rate would silently misbill.
	ErrWorkspaceMemberNotFound = errors.New("workspace_member_not_found")
)
