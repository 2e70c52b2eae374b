package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/service/auth"
)

const (
	ContextStaffID  = "staff_id"
	ContextClinicID = "clinic_id"
	ContextRole     = "role"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and injects the tenant identity
// into the request context. Every authenticated route is clinic-scoped
// through the claims set here.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims, err := m.authService.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextStaffID, claims.StaffID)
		c.Set(ContextClinicID, claims.ClinicID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole restricts a route to the given roles.
func RequireRole(roles ...model.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		current := role.(model.StaffRole)
		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	}
}

// ClinicID returns the tenant ID the auth middleware stored on the context.
func ClinicID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextClinicID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// StaffID returns the authenticated staff member's ID.
func StaffID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextStaffID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
