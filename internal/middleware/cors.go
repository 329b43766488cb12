package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS allows the configured frontend origin. "*" (or an empty value) allows
// any origin without credentials. debug logs every CORS decision.
func CORS(allowedOrigin string, debug bool) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
		Debug:          debug,
	}

	if allowedOrigin == "" || allowedOrigin == "*" {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowedOrigins = []string{strings.TrimRight(allowedOrigin, "/")}
		opts.AllowCredentials = true
	}

	return cors.Handler(opts)
}
