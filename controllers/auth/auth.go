package authController

import (
	"time"

	"athleticamp/middleware"
	authValidator "athleticamp/validators/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Controller struct {
	Secret   string
	TokenTTL time.Duration
	Log      *zap.Logger
}

// IssueToken signs a bearer token for the identity in the body.
func (ctl *Controller) IssueToken(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedToken").(*authValidator.TokenRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	token, err := middleware.GenerateJWT(ctl.Secret, reqData.Email, reqData.Name, ctl.TokenTTL)
	if err != nil {
		ctl.Log.Error("failed to sign token", zap.String("email", reqData.Email), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue token!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Token issued successfully.", fiber.Map{
		"token":     token,
		"expiresIn": int(ctl.TokenTTL.Seconds()),
	})
}
