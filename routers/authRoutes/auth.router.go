package authRoutes

import (
	authController "athleticamp/controllers/auth"
	authValidator "athleticamp/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, ctl *authController.Controller) {
	app.Post("/jwt", authValidator.IssueToken(), ctl.IssueToken)
}
