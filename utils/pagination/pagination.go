package pagination

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type PaginationParams struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Filters  map[string]string `json:"filters"`
}

type PaginationMeta struct {
	CurrentPage int     `json:"current_page"`
	PageSize    int     `json:"page_size"`
	TotalPages  int     `json:"total_pages"`
	TotalItems  int64   `json:"total_items"`
	NextPage    *string `json:"next_page"`
	PrevPage    *string `json:"prev_page"`
}

type PaginatedResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

func ParsePaginationParams(c *fiber.Ctx) PaginationParams {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 10)

	filters := make(map[string]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if k != "page" && k != "page_size" {
			filters[k] = string(value)
		}
	})

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Filters:  filters,
	}
}

func ValidatePaginationParams(params PaginationParams) error {
	if params.Page < 1 {
		return fmt.Errorf("page must be greater than 0")
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		return fmt.Errorf("page size must be between 1 and 100")
	}
	return nil
}

func buildPaginationURL(c *fiber.Ctx, page int, params PaginationParams) string {
	baseURL := fmt.Sprintf("%s://%s%s?", c.Protocol(), c.Hostname(), c.Path())
	query := url.Values{}

	if params.PageSize != 10 {
		query.Set("page_size", strconv.Itoa(params.PageSize))
	}

	for key, value := range params.Filters {
		if value != "" {
			query.Set(key, value)
		}
	}

	query.Set("page", strconv.Itoa(page))
	return baseURL + query.Encode()
}

func NewPaginatedResponse(c *fiber.Ctx, items interface{}, totalItems int64, params PaginationParams) PaginatedResponse {
	totalPages := int(math.Ceil(float64(totalItems) / float64(params.PageSize)))

	var nextPageURL, prevPageURL *string

	if params.Page < totalPages {
		next := buildPaginationURL(c, params.Page+1, params)
		nextPageURL = &next
	}

	if params.Page > 1 {
		prev := buildPaginationURL(c, params.Page-1, params)
		prevPageURL = &prev
	}

	return PaginatedResponse{
		Items: items,
		Pagination: PaginationMeta{
			CurrentPage: params.Page,
			PageSize:    params.PageSize,
			TotalPages:  totalPages,
			TotalItems:  totalItems,
			NextPage:    nextPageURL,
			PrevPage:    prevPageURL,
		},
	}
}

// Paginate returns the page of items selected by params.
func Paginate[T any](items []T, params PaginationParams) []T {
	start := (params.Page - 1) * params.PageSize
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + params.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
