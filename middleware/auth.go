package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"cragbase-api/models"
	"cragbase-api/services"
)

const (
	ContextUserID         = "user_id"
	ContextRegionGrants   = "region_grants"
	ContextAppPermissions = "app_permissions"
	ContextGradingScale   = "grading_scale"
)

// AuthMiddleware validates the bearer token and resolves the user's
// effective permissions once per request. Region grants and app permissions
// are cached in the request context so handlers never re-query the
// role→permission table.
func AuthMiddleware(jwtSecret string, db *gorm.DB, permissions *services.PermissionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing or invalid authorization header", Code: http.StatusUnauthorized})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired token", Code: http.StatusUnauthorized})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid token claims", Code: http.StatusUnauthorized})
			c.Abort()
			return
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid token claims", Code: http.StatusUnauthorized})
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found", Code: http.StatusUnauthorized})
			c.Abort()
			return
		}

		grants, err := permissions.ResolveUserGrants(userID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("failed to resolve region grants")
			grants = nil
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRegionGrants, grants)
		c.Set(ContextAppPermissions, permissions.AppRolePermissions(user.AppRole))
		c.Set(ContextGradingScale, user.GradingScale)

		c.Next()
	}
}

// RegionGrants returns the per-request cached region grants
func RegionGrants(c *gin.Context) []services.RegionGrant {
	if grants, ok := c.Get(ContextRegionGrants); ok {
		if typed, ok := grants.([]services.RegionGrant); ok {
			return typed
		}
	}
	return nil
}

// AppPermissions returns the per-request cached app-wide permissions
func AppPermissions(c *gin.Context) []models.AppPermission {
	if perms, ok := c.Get(ContextAppPermissions); ok {
		if typed, ok := perms.([]models.AppPermission); ok {
			return typed
		}
	}
	return nil
}

// GradingScale returns the requesting user's preferred grading scale
func GradingScale(c *gin.Context) models.GradingScale {
	if scale, ok := c.Get(ContextGradingScale); ok {
		if typed, ok := scale.(models.GradingScale); ok && typed != "" {
			return typed
		}
	}
	return models.GradingScaleFB
}
