package httpx

import (
	"net/http"
	"strconv"
	"strings"
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// parseTop reads the "top" page size and clamps it to [0, maxTop].
// Zero leaves the choice to the service.
func parseTop(r *http.Request, maxTop int) int {
	top := parseIntQuery(r, "top", 0)
	if top < 0 {
		return 0
	}
	if top > maxTop {
		return maxTop
	}
	return top
}

func queryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}
