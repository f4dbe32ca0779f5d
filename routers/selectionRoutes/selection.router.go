package selectionRoutes

import (
	selectionController "athleticamp/controllers/selection"
	selectionValidator "athleticamp/validators/selection"

	"github.com/gofiber/fiber/v2"
)

func SetupSelectionRoutes(app *fiber.App, ctl *selectionController.Controller, verify fiber.Handler) {
	group := app.Group("/selectedClasses", verify)

	group.Get("/", ctl.GetSelectedClasses)
	group.Post("/", selectionValidator.SelectClass(), ctl.SelectClass)
	group.Get("/:id", selectionValidator.SelectionID(), ctl.GetSelectedClass)
	group.Delete("/:id", selectionValidator.SelectionID(), ctl.DeleteSelectedClass)

	// Older clients use the singular path.
	app.Delete("/selectedClass/:id", verify, selectionValidator.SelectionID(), ctl.DeleteSelectedClass)
}
