package middleware

import (
	"errors"

	"athleticamp/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const LocalsUser = "user"

// RequireRole admits the verified user only when their role is one of roles.
// Must run after JWTMiddleware. A rejected request never reaches the next handler.
func RequireRole(db *gorm.DB, log *zap.Logger, roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		email, ok := EmailFromCtx(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
		}

		var user models.User
		err := db.WithContext(c.UserContext()).Where("email = ?", email).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return JsonResponse(c, fiber.StatusForbidden, false, "Forbidden access", nil)
			}
			log.Error("role lookup failed", zap.String("email", email), zap.Error(err))
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}

		if _, ok := allowed[user.Role]; !ok || user.Role == "" {
			return JsonResponse(c, fiber.StatusForbidden, false, "Forbidden access", nil)
		}

		c.Locals(LocalsUser, &user)
		return c.Next()
	}
}

// UserFromCtx returns the user loaded by RequireRole.
func UserFromCtx(c *fiber.Ctx) (*models.User, bool) {
	u, ok := c.Locals(LocalsUser).(*models.User)
	return u, ok
}
