package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/statusunknown418/thearq/internal/report/domain"
)

func (s *Server) ReportTotals(c *gin.Context) {
	rng, filters, err := bindRangeQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	totals, err := s.reportSvc.GetTotals(c.Request.Context(), rng, filters)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

func (s *Server) ReportGrouped(c *gin.Context) {
	rng, filters, err := bindRangeQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	dimension := reportdomain.Dimension(c.DefaultQuery("dimension", string(reportdomain.DimensionProject)))

	topN, err := parseOptionalInt(c.Query("top"))
	if err != nil {
		AbortWithError(c, newValidationError("top", "invalid_top", "invalid top count"))
		return
	}

	grouped, err := s.reportSvc.GetGroupedSummary(c.Request.Context(), rng, dimension, filters, topN)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, grouped)
}

func (s *Server) ReportSeries(c *gin.Context) {
	rng, filters, err := bindRangeQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	series, err := s.reportSvc.GetTimeSeries(c.Request.Context(), rng, filters)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, series)
}

func (s *Server) ReportBudget(c *gin.Context) {
	projectID, err := parsePathID(c.Param("project_id"))
	if err != nil {
		AbortWithError(c, newValidationError("project_id", "invalid_project", "invalid project id"))
		return
	}

	budget, err := s.reportSvc.GetBudgetRemaining(c.Request.Context(), projectID, c.Query("timezone"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budget)
}

func bindRangeQuery(c *gin.Context) (reportdomain.RangeRequest, reportdomain.Filters, error) {
	var rng reportdomain.RangeRequest
	if err := c.ShouldBindQuery(&rng); err != nil {
		return rng, reportdomain.Filters{}, invalidRequestError()
	}

	var filters reportdomain.Filters
	var err error
	if filters.ProjectID, err = parseOptionalSnowflakeID(c.Query("project_id")); err != nil {
		return rng, filters, newValidationError("project_id", "invalid_project", "invalid project id")
	}
	if filters.UserID, err = parseOptionalSnowflakeID(c.Query("user_id")); err != nil {
		return rng, filters, newValidationError("user_id", "invalid_user", "invalid user id")
	}

	return rng, filters, nil
}
