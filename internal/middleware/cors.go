// Package middleware provides HTTP middleware for the Solvix API.
package middleware

import "net/http"

// CORS returns middleware that handles CORS headers. An entry of "*"
// admits any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	wildcard := false
	explicit := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			wildcard = true
			continue
		}
		explicit[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case origin != "" && explicit[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				// Credentials only for explicit origins; with a wildcard echo
				// they would open the API to CSRF.
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			case wildcard && origin != "":
				w.Header().Set("Access-Control-Allow-Origin", origin)
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}

			if w.Header().Get("Access-Control-Allow-Origin") != "" {
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
