package classRoutes

import (
	classController "athleticamp/controllers/classes"
	classValidator "athleticamp/validators/class"

	"github.com/gofiber/fiber/v2"
)

func SetupClassRoutes(app *fiber.App, ctl *classController.Controller, verify, instructorOrAdmin, adminOnly fiber.Handler) {
	app.Post("/addClass", verify, instructorOrAdmin, classValidator.AddDraftClass(), ctl.AddClass)
	app.Get("/myClasses", verify, ctl.MyClasses)

	app.Get("/manageClasses", verify, adminOnly, classValidator.ListDrafts(), ctl.ManageClasses)
	app.Put("/manageClasses/:id/role", verify, adminOnly, classValidator.SetDraftStatus(), ctl.SetClassStatus)
}
