package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const maxPageSize = 100

// pager turns page/limit query parameters into offsets and builds the page envelope.
type pager struct {
	baseURL  string
	pageSize int
}

func newPager(baseURL string, pageSize int) pager {
	if pageSize < 1 {
		pageSize = 6
	}
	return pager{baseURL: strings.TrimSuffix(baseURL, "/"), pageSize: pageSize}
}

type pageRequest struct {
	Page  int
	Limit int
}

func (r pageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

func (p pager) parse(c *gin.Context) (pageRequest, error) {
	req := pageRequest{Page: 1, Limit: p.pageSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, &service.ValidationError{Fields: map[string]string{"page": "must be a positive integer"}}
		}
		req.Page = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, &service.ValidationError{Fields: map[string]string{"limit": "must be a positive integer"}}
		}
		req.Limit = min(n, maxPageSize)
	}
	return req, nil
}

func newPage[T any](p pager, c *gin.Context, req pageRequest, total int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	page := types.Page[T]{Count: total, Results: results}
	if int64(req.Page)*int64(req.Limit) < total {
		page.Next = p.link(c, req.Page+1)
	}
	if req.Page > 1 {
		page.Previous = p.link(c, req.Page-1)
	}
	return page
}

func (p pager) link(c *gin.Context, page int) *string {
	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := p.baseURL + c.Request.URL.Path
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return &u
}
