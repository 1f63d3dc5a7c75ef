package response

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"skripta.hr/forum/pkg/apperror"
	"skripta.hr/forum/pkg/ratelimiter"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// OptionalUserID returns the user ID when a session is present, nil otherwise.
// Read paths render for both guests and logged-in users.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	var rateErr *ratelimiter.RateLimitError
	if errors.As(err, &rateErr) {
		if rateErr.RetryAfter > 0 {
			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(rateErr.RetryAfter.Seconds()))))
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": rateErr.Message})
		return
	}

	code := apperror.MapErrorToStatus(err)

	// Internal errors are logged and hidden behind a generic message
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
		c.JSON(code, gin.H{"error": "Došlo je do greške"})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
