package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/shiyao1122/activity-system/utils"
)

// APIKeyMiddleware protects the client reporting API with the shared
// X-API-Key header (env API_SECRET_KEY). Platforms reporting completions are
// trusted backends, not end users, so a static key is the whole auth model.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := os.Getenv("API_SECRET_KEY")
		key := r.Header.Get("X-API-Key")
		if secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			utils.WriteRaw(w, http.StatusForbidden, map[string]interface{}{"error": "Forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminKeyMiddleware protects the admin API with X-Admin-Key (env
// ADMIN_API_KEY).
func AdminKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := os.Getenv("ADMIN_API_KEY")
		key := r.Header.Get("X-Admin-Key")
		if secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
