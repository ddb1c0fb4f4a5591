package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const maxPageSize = 200

// parseLimitOffset читает ?limit и ?offset; значения вне диапазона заменяются
// значениями по умолчанию, запрос не падает.
func parseLimitOffset(c *fiber.Ctx, defLimit int) (limit, offset int) {
	limit = queryInt(c, "limit", defLimit, 1, maxPageSize)
	offset = queryInt(c, "offset", 0, 0, -1)
	return limit, offset
}

// queryInt разбирает целый query-параметр в [lo, hi]; hi < 0 означает
// отсутствие верхней границы.
func queryInt(c *fiber.Ctx, key string, def, lo, hi int) int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || (hi >= 0 && n > hi) {
		return def
	}
	return n
}

func queryBool(c *fiber.Ctx, key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && b
}
