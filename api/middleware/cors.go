package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"http://localhost:5173", // Vite dev server
}

// CORS returns middleware that applies the API's allowed origin policy. The
// configured origins replace the local-dev defaults when non-empty.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Idempotency-Key", "X-Tenant-Slug", "X-Store-Id", "X-Requested-With"},
		ExposedHeaders:   []string{"Idempotency-Replayed", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
