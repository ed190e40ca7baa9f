package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/middleware"
	"projecthub/utils"
)

// listOrder is the default ordering of every list endpoint.
const listOrder = "created_at DESC, id ASC"

// dbFor binds the request context to the handle so a cancelled request
// cancels its queries.
func dbFor(db *gorm.DB, c *fiber.Ctx) *gorm.DB {
	return db.WithContext(c.UserContext())
}

func identity(c *fiber.Ctx) middleware.Identity {
	id, _ := middleware.GetIdentity(c)
	return id
}

// findByID loads one row or returns a 404 carrying notFound.
func findByID[T any](db *gorm.DB, id, notFound string, preloads ...string) (*T, error) {
	var out T
	q := db
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFound(notFound)
		}
		return nil, err
	}
	return &out, nil
}

// exists reports whether any row of T matches the condition.
func exists[T any](db *gorm.DB, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.Model(new(T)).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// paginate counts and loads one page of T. filter is applied to both queries;
// preloads only to the page query.
func paginate[T any](db *gorm.DB, p utils.Pagination, order string, filter func(*gorm.DB) *gorm.DB, preloads ...string) ([]T, int64, error) {
	var total int64
	if err := db.Model(new(T)).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0, p.Limit)
	q := db.Model(new(T)).Scopes(filter)
	for _, pl := range preloads {
		q = q.Preload(pl)
	}
	if err := q.Order(order).Offset(p.Skip()).Limit(p.Limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// search adds a case-insensitive substring match over columns when the
// "search" query parameter is present.
func search(c *fiber.Ctx, columns ...string) func(*gorm.DB) *gorm.DB {
	term := strings.TrimSpace(c.Query("search"))
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		clause, args := utils.SearchClause(term, columns...)
		return db.Where(clause, args...)
	}
}

// eq adds column = value for every non-empty query parameter in params,
// where params maps query parameter to column.
func eq(c *fiber.Ctx, params map[string]string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for param, column := range params {
			if v := strings.TrimSpace(c.Query(param)); v != "" {
				db = db.Where(column+" = ?", v)
			}
		}
		return db
	}
}

func chain(scopes ...func(*gorm.DB) *gorm.DB) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, scope := range scopes {
			db = scope(db)
		}
		return db
	}
}

// trim trims the string a pointer points to, leaving nil alone.
func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// setIfPresent records key in updates only when the request carried it.
func setIfPresent[V any](updates map[string]interface{}, key string, v *V) {
	if v != nil {
		updates[key] = *v
	}
}
