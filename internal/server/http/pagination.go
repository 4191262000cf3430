package httpserver

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// pageParams reads page/limit query params: page >= 1, 1 <= limit <= 100,
// defaulting to 1/10 like the dashboard expects.
func pageParams(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

func pageBody(data any, total int64, page, limit int) gin.H {
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return gin.H{
		"data": data,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	}
}
