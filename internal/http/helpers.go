package http

import (
	"net/http"
	"strings"
	"time"

	"garagetracker/internal/core"
)

// now is replaced in tests.
var now = time.Now

// today is the shop's current calendar date.
func today() core.Date {
	return core.DateOf(now())
}

// pathID returns the trimmed {id} path value.
func pathID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("id"))
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
