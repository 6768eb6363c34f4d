package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// paramID lee :id como entero positivo.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pagination lee limit/offset acotados.
func pagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultPageLimit)
	offset = c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
