package paymentRoutes

import (
	paymentController "athleticamp/controllers/payment"
	paymentValidator "athleticamp/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App, ctl *paymentController.Controller, verify fiber.Handler) {
	app.Post("/dashboard/payment/:id", verify, paymentValidator.Pay(), ctl.PayForClass)
	app.Get("/payment", paymentValidator.List(), ctl.GetPayments)
	app.Get("/enrolledClasses", paymentValidator.List(), ctl.GetEnrolledClasses)
}
