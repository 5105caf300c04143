package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS applies the browser origin policy for the API. Idempotency-Key is in
// the allowed headers so mutating calls survive preflight.
func CORS() func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000", // local dev
			"http://localhost:5173", // Vite dev server
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
	return cors.New(opts).Handler
}
