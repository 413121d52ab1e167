package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePagination reads ?page= and ?limit= with sane clamping.
func parsePagination(c *gin.Context) (page, limit int64) {
	page = 1
	limit = defaultPageSize

	if value := c.Query("page"); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if value := c.Query("limit"); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
			limit = parsed
			if limit > maxPageSize {
				limit = maxPageSize
			}
		}
	}
	return page, limit
}
