package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type signupRequest struct {
	Name     string  `json:"name" validate:"required,max=10"`
	Email    string  `json:"email" validate:"required,mailbox"`
	Password string  `json:"password" validate:"required,min=6,has_lower,has_upper,has_digit,has_special"`
	Nickname *string `json:"nickname" validate:"omitempty,min=1"`
	Start    string  `json:"start" validate:"omitempty,iso8601"`
}

func (r *signupRequest) ValidationMessages() map[string]string {
	return map[string]string{"name.required": "Name is required"}
}

func (r *signupRequest) ValidateComposite() []FieldError {
	if r.Nickname != nil && *r.Nickname == r.Name {
		return []FieldError{{Field: "nickname", Message: "Nickname must differ from name"}}
	}
	return nil
}

func TestValidateStruct(t *testing.T) {
	empty := ""
	same := "Ann"

	tests := []struct {
		name string
		req  signupRequest
		want []FieldError
	}{
		{
			name: "valid",
			req:  signupRequest{Name: "Ann", Email: "ann@x.com", Password: "Abc12!", Start: "2024-05-01"},
		},
		{
			name: "custom and default messages in field order",
			req:  signupRequest{Email: "nope", Password: "abc12!"},
			want: []FieldError{
				{Field: "name", Message: "Name is required"},
				{Field: "email", Message: "email must be a valid email"},
				{Field: "password", Message: "password must contain at least one uppercase letter"},
			},
		},
		{
			name: "every broken password rule is reported in order",
			req:  signupRequest{Name: "Ann", Email: "ann@x.com", Password: "abc"},
			want: []FieldError{
				{Field: "password", Message: "password must be at least 6 characters"},
				{Field: "password", Message: "password must contain at least one uppercase letter"},
				{Field: "password", Message: "password must contain at least one number"},
				{Field: "password", Message: "password must contain at least one special character"},
			},
		},
		{
			name: "required stops the field",
			req:  signupRequest{Name: "Ann", Email: "ann@x.com"},
			want: []FieldError{{Field: "password", Message: "password is required"}},
		},
		{
			name: "present but empty optional field",
			req:  signupRequest{Name: "Ann", Email: "ann@x.com", Password: "Abc12!", Nickname: &empty},
			want: []FieldError{{Field: "nickname", Message: "nickname must be at least 1 characters"}},
		},
		{
			name: "composite rule runs after field rules",
			req:  signupRequest{Name: "Ann", Email: "ann@x.com", Password: "Abc12!", Nickname: &same, Start: "soon"},
			want: []FieldError{
				{Field: "start", Message: "start must be a valid date"},
				{Field: "nickname", Message: "Nickname must differ from name"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			assert.Equal(t, tt.want, ValidateStruct(&req))
		})
	}
}

func TestParseISO8601(t *testing.T) {
	for _, s := range []string{"2024-05-01", "2024-05-01T10:30", "2024-05-01T10:30:00", "2024-05-01T10:30:00Z", "2024-05-01T10:30:00.123+02:00"} {
		_, err := ParseISO8601(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"", "05/01/2024", "2024-13-01", "tomorrow"} {
		_, err := ParseISO8601(s)
		assert.Error(t, err, s)
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%team%", LikePattern("  Team "))
	assert.Equal(t, `%50\%%`, LikePattern("50%"))
	assert.Equal(t, `%a\_b\\c%`, LikePattern(`a_b\c`))

	clause, args := SearchClause("x", "name", "email")
	assert.Equal(t, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, clause)
	assert.Equal(t, []interface{}{"%x%", "%x%"}, args)
}

func TestJWT(t *testing.T) {
	token, expiresAt, err := GenerateJWTToken("s3cret", "user-1", "admin", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := ParseJWTToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = ParseJWTToken("other", token)
	assert.Error(t, err)

	_, _, err = GenerateJWTToken("", "user-1", "admin", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	t.Run("rejects tokens without expiry", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"}).SignedString([]byte("s3cret"))
		require.NoError(t, err)

		_, err = ParseJWTToken("s3cret", raw)
		assert.Error(t, err)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("Secret1!", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1!", hash)
	assert.True(t, CheckPassword(hash, "Secret1!"))
	assert.False(t, CheckPassword(hash, "secret1!"))
}

func newCtx(t *testing.T, query string) (*fiber.App, *fiber.Ctx) {
	t.Helper()
	app := fiber.New()
	fctx := &fasthttp.RequestCtx{}
	fctx.Request.SetRequestURI("/items?" + query)
	c := app.AcquireCtx(fctx)
	t.Cleanup(func() { app.ReleaseCtx(c) })
	return app, c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Page: 1, Limit: 10}},
		{"page=3&limit=25", Pagination{Page: 3, Limit: 25}},
		{"page=0&limit=-4", Pagination{Page: 1, Limit: 10}},
		{"page=abc&limit=100", Pagination{Page: 1, Limit: MaxLimit}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, c := newCtx(t, tt.query)
			p, err := ParsePagination(c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}

	t.Run("limit above the cap is rejected", func(t *testing.T) {
		_, c := newCtx(t, "limit=200")
		_, err := ParsePagination(c)

		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, fiber.StatusUnprocessableEntity, apiErr.Status)
		assert.Equal(t, []FieldError{{Field: "limit", Message: "limit must be at most 100"}}, apiErr.Errors)
	})

	assert.Equal(t, 2, Pagination{Page: 1, Limit: 10}.TotalPages(15))
	assert.Equal(t, 0, Pagination{Page: 1, Limit: 10}.TotalPages(0))
	assert.Equal(t, 10, Pagination{Page: 2, Limit: 10}.Skip())
}

func TestPaginatedResponseNumbersAcrossPages(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return PaginatedResponse(c, "ok", []item{{"k"}, {"l"}}, 12, Pagination{Page: 2, Limit: 10})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)

	var body struct {
		CurrentPage int              `json:"currentPage"`
		TotalData   int64            `json:"totalData"`
		TotalPages  int              `json:"totalPages"`
		Data        []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, 2, body.CurrentPage)
	assert.EqualValues(t, 12, body.TotalData)
	assert.Equal(t, 2, body.TotalPages)
	require.Len(t, body.Data, 2)
	assert.EqualValues(t, 11, body.Data[0]["no"])
	assert.Equal(t, "k", body.Data[0]["name"])
	assert.EqualValues(t, 12, body.Data[1]["no"])
}

func TestNumberedItemNonObject(t *testing.T) {
	raw, err := json.Marshal(NumberedItem{No: 3, Item: "plain"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"no":3,"value":"plain"}`, string(raw))

	raw, err = json.Marshal(NumberedItem{No: 1, Item: struct{}{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"no":1}`, string(raw))
}

func TestAPIError(t *testing.T) {
	err := NewFieldError("range", "bad range")

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Validation error", apiErr.Message)
	assert.Equal(t, []FieldError{{Field: "range", Message: "bad range"}}, apiErr.Errors)

	_, ok = AsAPIError(assert.AnError)
	assert.False(t, ok)
}

func TestLogErrorTagsComponent(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)

	LogError("http", "unhandled_error", assert.AnError, map[string]interface{}{"path": "/teams/all"})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "Request failed", entry.Message)
	assert.Equal(t, "http", entry.Data["component"])
	assert.Equal(t, "unhandled_error", entry.Data["error_type"])
	assert.Equal(t, "/teams/all", entry.Data["path"])
	assert.Equal(t, assert.AnError, entry.Data[logrus.ErrorKey])

	LogEvent("notifier", "notifications_sent", nil)
	entry = hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "notifier", entry.Data["component"])
}
