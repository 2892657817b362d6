package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hivemotors/carbooking/internal/domain"
	"github.com/hivemotors/carbooking/internal/service/auth"
)

const principalKey = "principal"

// AuthRequired resolves the bearer token into a Principal once per request.
// Handlers and services only ever see the resolved principal; the role is
// never re-derived past this point.
func AuthRequired(authSvc auth.AuthUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		principal, err := authSvc.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func principalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := v.(domain.Principal)
	return principal, ok
}

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	if conflict, ok := domain.AsConflict(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "requested interval conflicts with existing bookings",
			"conflicts": toBookingResponses(conflict.Conflicts),
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInterval), errors.Is(err, domain.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotBooked), errors.Is(err, domain.ErrNotCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error, retry the operation"})
	}
}
