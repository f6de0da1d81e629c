package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	timeentrydomain "github.com/statusunknown418/thearq/internal/timeentry/domain"
)

func (s *Server) CreateEntry(c *gin.Context) {
	var req timeentrydomain.CreateManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entry, err := s.entrySvc.CreateManual(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (s *Server) ListEntries(c *gin.Context) {
	var req timeentrydomain.ListRequest
	req.PageToken = c.Query("page_token")

	size, err := parseOptionalInt(c.Query("page_size"))
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page size"))
		return
	}
	req.PageSize = size

	if req.UserID, err = parseOptionalSnowflakeID(c.Query("user_id")); err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user", "invalid user id"))
		return
	}
	if req.ProjectID, err = parseOptionalSnowflakeID(c.Query("project_id")); err != nil {
		AbortWithError(c, newValidationError("project_id", "invalid_project", "invalid project id"))
		return
	}
	if req.Billable, err = parseOptionalBool(c.Query("billable")); err != nil {
		AbortWithError(c, newValidationError("billable", "invalid_billable", "invalid billable flag"))
		return
	}
	if req.From, err = parseOptionalTime(c.Query("from")); err != nil {
		AbortWithError(c, newValidationError("from", "invalid_time", "invalid from timestamp"))
		return
	}
	if req.To, err = parseOptionalTime(c.Query("to")); err != nil {
		AbortWithError(c, newValidationError("to", "invalid_time", "invalid to timestamp"))
		return
	}

	resp, err := s.entrySvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateEntry(c *gin.Context) {
	entryID, err := parsePathID(c.Param("entry_id"))
	if err != nil {
		AbortWithError(c, newValidationError("entry_id", "invalid_entry_id", "invalid entry id"))
		return
	}

	var req timeentrydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entry, err := s.entrySvc.Update(c.Request.Context(), entryID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (s *Server) DeleteEntry(c *gin.Context) {
	entryID, err := parsePathID(c.Param("entry_id"))
	if err != nil {
		AbortWithError(c, newValidationError("entry_id", "invalid_entry_id", "invalid entry id"))
		return
	}

	if err := s.entrySvc.Delete(c.Request.Context(), entryID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
