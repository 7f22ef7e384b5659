package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hirestack/assessment-engine/internal/config"
	"github.com/hirestack/assessment-engine/internal/response"
)

// ContextKeyServiceClaims is the Gin context key for service token claims.
const ContextKeyServiceClaims = "service_claims"

// ServiceClaims extends JWT standard claims with the calling service's scope.
type ServiceClaims struct {
	jwt.RegisteredClaims
	Service string `json:"service"`
	Scope   string `json:"scope"`
}

// RequireServiceToken validates an HMAC service token from the Authorization
// header and checks that it carries the required scope. Service tokens are
// how trusted collaborators (proctoring, admin tooling) authenticate.
func RequireServiceToken(cfg *config.Config, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				tokenStr = parts[1]
			}
		}
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := validateServiceToken(cfg, tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenExpired)
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if claims.Scope != scope {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}

		c.Set(ContextKeyServiceClaims, claims)
		c.Next()
	}
}

// GetServiceClaims retrieves the service claims from the Gin context.
func GetServiceClaims(c *gin.Context) *ServiceClaims {
	val, exists := c.Get(ContextKeyServiceClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*ServiceClaims)
	if !ok {
		return nil
	}
	return claims
}

// GenerateServiceToken creates a signed service token. Used by admin
// tooling to mint credentials for collaborator services.
func GenerateServiceToken(cfg *config.Config, service, scope string) (string, error) {
	now := time.Now()
	claims := ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   service,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ServiceTokenExpiry)),
		},
		Service: service,
		Scope:   scope,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.ServiceTokenSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func validateServiceToken(cfg *config.Config, tokenStr string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ServiceClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.ServiceTokenSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*ServiceClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
