package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"skripta.hr/forum/internal/entity"
	userRepo "skripta.hr/forum/internal/modules/user/repository"
)

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	secret   string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   secret,
	}
}

func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	// Fallback to query parameter "token" (useful for WebSockets)
	return c.Query("token")
}

func (m *AuthMiddleware) parseSubject(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	return claims.Subject, nil
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := m.extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		userID, err := m.parseSubject(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("role", user.Role)
		c.Set("user", user)
		c.Next()
	}
}

// OptionalAuth resolves the session when a token is present but lets the
// request through either way. Read paths serve guests too.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := m.extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		userID, err := m.parseSubject(tokenString)
		if err != nil {
			c.Next()
			return
		}

		if user, err := m.userRepo.FindByID(c.Request.Context(), userID); err == nil {
			c.Set("user_id", userID)
			c.Set("role", user.Role)
			c.Set("user", user)
		}

		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		if role != entity.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// BlockSuspended rejects writes from banned or timed-out users. Runs after
// RequireAuth, which stores the loaded user.
func (m *AuthMiddleware) BlockSuspended() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		user, ok := value.(*entity.User)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
			c.Abort()
			return
		}

		if user.IsBanned {
			msg := "vaš račun je blokiran"
			if user.BanReason != nil {
				msg = fmt.Sprintf("vaš račun je blokiran: %s", *user.BanReason)
			}
			c.JSON(http.StatusForbidden, gin.H{"error": msg})
			c.Abort()
			return
		}

		if user.IsInTimeout() {
			msg := "privremeno vam je onemogućeno objavljivanje"
			if user.TimeoutReason != nil {
				msg = fmt.Sprintf("privremeno vam je onemogućeno objavljivanje: %s", *user.TimeoutReason)
			}
			c.JSON(http.StatusForbidden, gin.H{
				"error":         msg,
				"timeout_until": user.TimeoutUntil,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
