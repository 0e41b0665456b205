package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS wraps the router with rs/cors.
// allowedOrigins can be "*" or a comma-separated list (e.g. "http://localhost:3000,http://localhost:3001").
func CORS(allowedOrigins string, next http.Handler) http.Handler {
	origins := parseOrigins(allowedOrigins)
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: len(origins) > 0 && origins[0] != "*",
		MaxAge:           86400,
	})
	return c.Handler(next)
}

func parseOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(strings.TrimSpace(s), ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			return []string{"*"}
		}
		if o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
