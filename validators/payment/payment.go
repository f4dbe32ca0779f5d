package paymentValidator

import (
	"strings"

	"athleticamp/middleware"
	"athleticamp/validators"

	"github.com/gofiber/fiber/v2"
)

type PayRequest struct {
	SelectedClassID string  `json:"-" validate:"required"`
	PaymentMethodID string  `json:"paymentMethodId" validate:"required"`
	Price           float64 `json:"price" validate:"gt=0"`
}

type ListQuery struct {
	Email  string `query:"email" validate:"omitempty,email"`
	Period string `query:"period" validate:"omitempty,oneof=day week month"`
}

// Pay validates POST /dashboard/payment/:id.
func Pay() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PayRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.SelectedClassID = strings.TrimSpace(c.Params("id"))
		reqData.PaymentMethodID = strings.TrimSpace(reqData.PaymentMethodID)

		if errors := validators.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPayment", reqData)
		return c.Next()
	}
}

// List validates the filters shared by the payment and enrollment listings.
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		reqData.Period = strings.ToLower(strings.TrimSpace(reqData.Period))

		if errors := validators.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}
