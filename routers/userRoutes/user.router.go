package userRoutes

import (
	userController "athleticamp/controllers/userControllers"
	userValidator "athleticamp/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, ctl *userController.Controller, verify, adminOnly fiber.Handler) {
	userGroup := app.Group("/users")

	userGroup.Get("/", verify, ctl.GetUsers)
	userGroup.Post("/", userValidator.CreateUser(), ctl.CreateUser)
	userGroup.Get("/admin/:email", verify, userValidator.RoleCheck(), ctl.IsAdmin)
	userGroup.Get("/instructor/:email", verify, userValidator.RoleCheck(), ctl.IsInstructor)
	userGroup.Patch("/admin/:id", verify, adminOnly, userValidator.UpdateRole(), ctl.UpdateRole)
}
