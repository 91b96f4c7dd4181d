package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const deviceKey = "device"

// JWTMiddleware rejects requests without a valid bearer token. The token may
// also come from the "token" query parameter, since browsers cannot set
// headers on websocket upgrades.
func JWTMiddleware(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			return
		}

		claims, err := jwtManager.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(deviceKey, claims.Device)
		c.Next()
	}
}

// GetDevice returns the device name of the authenticated caller.
func GetDevice(c *gin.Context) (string, bool) {
	device, exists := c.Get(deviceKey)
	if !exists {
		return "", false
	}
	name, ok := device.(string)
	return name, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}
