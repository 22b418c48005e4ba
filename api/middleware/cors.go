package middleware

import (
	"net/http"

	"github.com/futamarket/market-backend/pkg/auth"
	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{"*"}

// CORS returns middleware that applies the configured origin policy. The admin
// header must be allowed for browser clients to mutate.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With", "X-Request-Id", auth.HeaderAdminPassword},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}).Handler
}
