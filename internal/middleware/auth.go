package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/capogreco/string.assembly.fm-sub005/pkg/response"
)

// AuthMiddleware guards the operator API. Peer websocket connections are
// deliberately unauthenticated; only controller actions need a token.
type AuthMiddleware struct {
	jwtSecret string
}

type OperatorClaims struct {
	OperatorID string `json:"operatorId"`
	jwt.RegisteredClaims
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// Authenticate validates the bearer token from the Authorization header.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		token, err := jwt.ParseWithClaims(parts[1], &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(m.jwtSecret), nil
		})
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		claims, ok := token.Claims.(*OperatorClaims)
		if !ok || !token.Valid {
			return response.Unauthorized(c, "Invalid token claims")
		}

		c.Locals("operatorId", claims.OperatorID)
		return c.Next()
	}
}

// GenerateToken creates a signed operator token (useful for testing).
func (m *AuthMiddleware) GenerateToken(operatorID string) (string, error) {
	claims := OperatorClaims{
		OperatorID: operatorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "string-assembly-controller",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.jwtSecret))
}
