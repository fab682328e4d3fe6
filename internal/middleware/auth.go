// Package middleware contains Gin middleware functions.
// Middleware in Gin is a handler that runs before (or after) your route handler.
// It calls c.Next() to proceed or c.Abort() to stop the chain.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKeyAPIKey is where the accepted key is stored on the gin.Context.
const ContextKeyAPIKey = "api_key"

// APIKeyAuth returns middleware that validates API keys on the compose
// endpoints. The key comes from the X-API-Key header or the api_key query
// param. With no keys configured the endpoints are open and the middleware
// only passes requests through.
func APIKeyAuth(validKeys []string) gin.HandlerFunc {
	if len(validKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return keyAuth(validKeys, "API key", http.StatusUnauthorized)
}

// AdminKeyAuth returns middleware that validates admin API keys. Unlike
// APIKeyAuth it never opens up: with no admin keys every request is refused.
func AdminKeyAuth(adminKeys []string) gin.HandlerFunc {
	return keyAuth(adminKeys, "admin API key", http.StatusForbidden)
}

// keyAuth builds the shared handler. The returned closure captures keySet,
// so the set is built once per route group, not per request.
func keyAuth(keys []string, label string, invalidStatus int) gin.HandlerFunc {
	// Go has no built-in Set type; map[string]struct{} is the idiom
	// (struct{} takes zero bytes).
	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keySet[k] = struct{}{}
	}

	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}

		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + label,
			})
			return
		}

		if _, ok := keySet[key]; !ok {
			c.AbortWithStatusJSON(invalidStatus, gin.H{
				"error": "invalid " + label,
			})
			return
		}

		c.Set(ContextKeyAPIKey, key)
		c.Next()
	}
}
