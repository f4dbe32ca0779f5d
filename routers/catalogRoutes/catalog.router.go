package catalogRoutes

import (
	catalogController "athleticamp/controllers/catalog"
	classValidator "athleticamp/validators/class"

	"github.com/gofiber/fiber/v2"
)

func SetupCatalogRoutes(app *fiber.App, ctl *catalogController.Controller, verify, adminOnly fiber.Handler) {
	app.Get("/classes", ctl.GetClasses)
	app.Post("/classes", verify, adminOnly, classValidator.CreateClass(), ctl.CreateClass)
	app.Get("/popular-classes", ctl.GetPopularClasses)

	app.Get("/instructors", ctl.GetInstructors)
	app.Get("/popular-instructors", ctl.GetPopularInstructors)
}
