package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/statusunknown418/thearq/internal/workspacectx"
)

func (s *Server) ListProjects(c *gin.Context) {
	workspaceID, ok := workspacectx.WorkspaceIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	projects, err := s.projectRepo.ListByWorkspace(c.Request.Context(), s.db, workspaceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (s *Server) ListClients(c *gin.Context) {
	workspaceID, ok := workspacectx.WorkspaceIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	clients, err := s.projectRepo.ListClients(c.Request.Context(), s.db, workspaceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"clients": clients})
}
