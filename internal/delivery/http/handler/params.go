package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

func pathUint(r *http.Request, name string) (uint, bool) {
	value, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

func queryDate(r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, false
	}
	return &date, true
}
