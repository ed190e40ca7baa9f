package utils

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	CurrentPage *int         `json:"currentPage,omitempty"`
	TotalData   *int64       `json:"totalData,omitempty"`
	TotalPages  *int         `json:"totalPages,omitempty"`
	Data        interface{}  `json:"data,omitempty"`
	Errors      []FieldError `json:"errors,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// Pagination holds the list parameters shared by every */all endpoint.
type Pagination struct {
	Page  int
	Limit int
}

// Skip is the number of rows preceding the current page.
func (p Pagination) Skip() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total/limit).
func (p Pagination) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	pages := int(total / int64(p.Limit))
	if total%int64(p.Limit) > 0 {
		pages++
	}
	return pages
}

// ParsePagination reads page/limit from the query string, falling back to the
// defaults for missing or non-positive values. A limit above MaxLimit is a
// 422 on "limit".
func ParsePagination(c *fiber.Ctx) (Pagination, error) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		return Pagination{}, NewFieldError("limit", "limit must be at most "+strconv.Itoa(MaxLimit))
	}
	return Pagination{Page: page, Limit: limit}, nil
}

// SuccessResponse writes {success:true, message, data} with the given status.
func SuccessResponse(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// PaginatedResponse writes a list envelope. Every item is annotated with its
// 1-based position across pages as the "no" key.
func PaginatedResponse[T any](c *fiber.Ctx, message string, items []T, total int64, p Pagination) error {
	numbered := make([]NumberedItem, len(items))
	for i := range items {
		numbered[i] = NumberedItem{No: p.Skip() + i + 1, Item: items[i]}
	}
	page := p.Page
	totalPages := p.TotalPages(total)
	return c.Status(fiber.StatusOK).JSON(Response{
		Success:     true,
		Message:     message,
		CurrentPage: &page,
		TotalData:   &total,
		TotalPages:  &totalPages,
		Data:        numbered,
	})
}

// ErrorResponse writes {success:false, message, errors?}.
func ErrorResponse(c *fiber.Ctx, status int, message string, errs []FieldError) error {
	return c.Status(status).JSON(Response{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// NumberedItem serializes Item as a JSON object with "no" prepended.
type NumberedItem struct {
	No   int
	Item interface{}
}

func (n NumberedItem) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(n.Item)
	if err != nil {
		return nil, err
	}
	prefix := []byte(`{"no":` + strconv.Itoa(n.No))
	if len(body) < 2 || body[0] != '{' {
		// not an object; nest it instead of splicing
		return json.Marshal(map[string]interface{}{"no": n.No, "value": json.RawMessage(body)})
	}
	if string(body) == "{}" {
		return append(prefix, '}'), nil
	}
	out := make([]byte, 0, len(prefix)+len(body))
	out = append(out, prefix...)
	out = append(out, ',')
	return append(out, body[1:]...), nil
}
