package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"shopbooks/internal/config"
	"shopbooks/internal/domain"
)

const (
	ContextKeyCompanyID = "company_id"
	ContextKeyUserID    = "user_id"
	ContextKeyActor     = "actor"
	ContextKeyRole      = "role"
)

// Claims is the token payload issued by the identity service. CompanyID
// scopes every request to one set of books.
type Claims struct {
	CompanyID uuid.UUID `json:"company_id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware returns Gin middleware that validates bearer tokens and
// injects company and user context.
func AuthMiddleware(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := validateToken(token, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		c.Set(ContextKeyCompanyID, claims.CompanyID)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyActor, claims.Name)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

func validateToken(tokenString string, cfg *config.JWTConfig) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	if claims.CompanyID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// GetCompanyID extracts the company ID from the Gin context.
func GetCompanyID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyCompanyID)
	if !exists {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return val.(uuid.UUID), nil
}

// GetActor extracts the acting user's display name from the Gin context.
func GetActor(c *gin.Context) string {
	val, exists := c.Get(ContextKeyActor)
	if !exists {
		return ""
	}
	return val.(string)
}
