package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// QueryInt reads an integer query parameter. A missing, malformed or
// out-of-range value yields def instead of an error.
func QueryInt(r *http.Request, key string, def int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def
	}
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return def
	}
	return int(intValue)
}

// PathInt64 reads an integer chi URL parameter, returning 0 when it is not a number.
func PathInt64(r *http.Request, key string) int64 {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
