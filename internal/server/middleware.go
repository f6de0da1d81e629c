package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/statusunknown418/thearq/internal/workspacectx"
	"go.uber.org/zap"
)

const HeaderUser = "X-User-ID"

// Identity reads the caller identity set by the upstream auth proxy and
// injects it into the request context. Requests without it are rejected
// before any handler runs.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUser))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		userID, err := snowflake.ParseString(raw)
		if err != nil || userID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := workspacectx.WithUserID(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// WorkspaceContext scopes the request to the workspace named in the path.
func WorkspaceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, err := snowflake.ParseString(c.Param("workspace_id"))
		if err != nil || workspaceID == 0 {
			AbortWithError(c, newValidationError("workspace_id", "invalid_workspace", "invalid workspace id"))
			return
		}

		ctx := workspacectx.WithWorkspaceID(c.Request.Context(), workspaceID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http.access")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
