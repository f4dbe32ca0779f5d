package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	LocalsClaims = "claims"
	LocalsEmail  = "email"
)

var (
	ErrMissingToken = errors.New("invalid authorization")
	ErrInvalidToken = errors.New("unauthorized access")
)

// Claims is the identity carried by a bearer token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT signs an HS256 token for the identity, valid for ttl.
func GenerateJWT(secret, email, name string, ttl time.Duration) (string, error) {
	issuedAt := time.Now()
	claims := Claims{
		Email: strings.ToLower(email),
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.ToLower(email),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken checks signature, algorithm and expiry and returns the decoded claims.
func VerifyToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: token has no email", ErrInvalidToken)
	}
	return claims, nil
}

// JWTMiddleware rejects requests without a valid bearer token and stores its claims in Locals.
func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid authorization", nil)
		}

		// The token should be prefixed with "Bearer "
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
		}

		claims, err := VerifyToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
		}

		c.Locals(LocalsClaims, claims)
		c.Locals(LocalsEmail, claims.Email)
		return c.Next()
	}
}

// EmailFromCtx returns the verified email set by JWTMiddleware.
func EmailFromCtx(c *fiber.Ctx) (string, bool) {
	email, ok := c.Locals(LocalsEmail).(string)
	return email, ok && email != ""
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}
