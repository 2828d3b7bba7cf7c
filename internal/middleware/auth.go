package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
	"github.com/mzansicare/booking-api/internal/service/appointment"
	"github.com/mzansicare/booking-api/pkg/auth"
)

const (
	ContextClaims = "claims"

	roleCacheTTL     = 5 * time.Minute
	roleCacheCleanup = 10 * time.Minute
)

type AuthMiddleware struct {
	jwtSvc    auth.JWTService
	userRepo  repository.UserRepository
	roleCache *gocache.Cache
}

func NewAuthMiddleware(jwtSvc auth.JWTService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc:    jwtSvc,
		userRepo:  userRepo,
		roleCache: gocache.New(roleCacheTTL, roleCacheCleanup),
	}
}

// Authenticate verifies the bearer token and stores the caller's claims in
// the request context. Role assignments are re-read from storage through a
// short-lived cache so revocations take effect without a token rotation.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": gin.H{"message": "missing authorization header"}})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": gin.H{"message": "invalid authorization format"}})
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": gin.H{"message": "invalid token"}})
			return
		}

		roles, err := m.currentRoles(c, claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": gin.H{"message": "invalid token"}})
			return
		}
		claims.Roles = roles

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireRoles rejects callers that hold none of the given roles.
func (m *AuthMiddleware) RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFromContext(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": gin.H{"message": "authentication required"}})
			return
		}
		for _, role := range roles {
			if claims.Roles.Contains(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": gin.H{"message": "insufficient role"}})
	}
}

func (m *AuthMiddleware) currentRoles(c *gin.Context, claims *model.TokenClaims) (model.RoleList, error) {
	key := claims.UserID.String()
	if cached, found := m.roleCache.Get(key); found {
		if roles, ok := cached.(model.RoleList); ok {
			return roles, nil
		}
	}

	roles, err := m.userRepo.GetRoles(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, err
	}
	m.roleCache.Set(key, roles, gocache.DefaultExpiration)
	return roles, nil
}

func claimsFromContext(c *gin.Context) *model.TokenClaims {
	value, exists := c.Get(ContextClaims)
	if !exists {
		return nil
	}
	claims, ok := value.(*model.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// ActorFromContext builds the scheduling actor from the authenticated
// claims. Requests that skipped authentication get a zero-value actor with
// no roles and no district, which fails every access check downstream.
func ActorFromContext(c *gin.Context) appointment.Actor {
	claims := claimsFromContext(c)
	if claims == nil {
		return appointment.Actor{}
	}
	return appointment.Actor{
		ID:       claims.UserID,
		Roles:    claims.Roles,
		District: claims.District,
	}
}
