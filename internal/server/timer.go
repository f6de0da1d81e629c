package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	timeentrydomain "github.com/statusunknown418/thearq/internal/timeentry/domain"
)

func (s *Server) StartTimer(c *gin.Context) {
	// An empty body starts a bare timer.
	var req timeentrydomain.StartTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	entry, err := s.entrySvc.StartTimer(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (s *Server) StopTimer(c *gin.Context) {
	entryID, err := parsePathID(c.Param("entry_id"))
	if err != nil {
		AbortWithError(c, newValidationError("entry_id", "invalid_entry_id", "invalid entry id"))
		return
	}

	entry, err := s.entrySvc.StopTimer(c.Request.Context(), entryID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// RunningEntry returns the caller's live timer, or 204 when none is running.
func (s *Server) RunningEntry(c *gin.Context) {
	entry, err := s.entrySvc.Running(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if entry == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, entry)
}
