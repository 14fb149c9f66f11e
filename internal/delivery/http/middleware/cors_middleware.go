package middleware

import (
	"net/http"
	"strings"
)

// CORSMiddleware answers preflight requests and sets CORS headers.
// An empty allowlist, or one containing "*", allows every origin.
type CORSMiddleware struct {
	allowAll bool
	origins  map[string]struct{}
}

func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	m := &CORSMiddleware{origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			m.allowAll = true
		}
		m.origins[origin] = struct{}{}
	}
	if len(m.origins) == 0 {
		m.allowAll = true
	}
	return m
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if m.allowAll {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			if !varies(w.Header(), "Origin") {
				w.Header().Add("Vary", "Origin")
			}
			if origin := req.Header.Get("Origin"); origin != "" {
				if _, ok := m.origins[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				}
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, req)
	})
}

func varies(header http.Header, name string) bool {
	for _, value := range header.Values("Vary") {
		for _, field := range strings.Split(value, ",") {
			if strings.EqualFold(strings.TrimSpace(field), name) {
				return true
			}
		}
	}
	return false
}
