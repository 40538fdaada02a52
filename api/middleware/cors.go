package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/DevStdio379/settisfy-web/pkg/types"
)

// CORS allows the configured web origins. Browsers need the request id and
// replay marker exposed to read them.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			IdempotencyKeyHeader, types.RequestIDHeader,
		},
		ExposedHeaders:   []string{types.RequestIDHeader, ReplayedHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
