package middleware

import "net/http"

type CORSMiddleware struct {
	allowed map[string]bool
	any     bool
}

// NewCORSMiddleware allows the given origins; "*" or an empty list allows all.
func NewCORSMiddleware(origins ...string) *CORSMiddleware {
	m := &CORSMiddleware{allowed: make(map[string]bool, len(origins))}
	for _, origin := range origins {
		if origin == "*" {
			m.any = true
		}
		m.allowed[origin] = true
	}
	if len(origins) == 0 {
		m.any = true
	}
	return m
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		origin := req.Header.Get("Origin")
		switch {
		case m.any:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case m.allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, req)
	})
}
