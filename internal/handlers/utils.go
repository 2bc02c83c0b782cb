package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// queryInt reads an integer query parameter, falling back to def on
// absence or junk input
func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

// pageParams reads and clamps list pagination. Offsets below zero are
// treated as zero; limits are clamped to [1, maxPageLimit].
func pageParams(c echo.Context) (offset, limit int) {
	offset = queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit = queryInt(c, "limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit
}
