package selectionValidator

import (
	"strings"

	"athleticamp/middleware"
	"athleticamp/models"
	"athleticamp/validators"

	"github.com/gofiber/fiber/v2"
)

// SelectClassRequest is a selection; snapshot fields left out are filled from the catalog.
// The price always comes from the catalog.
type SelectClassRequest struct {
	ClassID        string            `json:"classId" validate:"required"`
	Name           string            `json:"name" validate:"max=120"`
	Image          string            `json:"image" validate:"max=500"`
	InstructorName string            `json:"instructorName" validate:"max=120"`
	AvailableSeats *models.SeatCount `json:"availableSeats" validate:"omitempty,gte=0"`
	TotalStudents  *int              `json:"totalStudents" validate:"omitempty,gte=0"`
}

func SelectClass() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SelectClassRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.ClassID = strings.TrimSpace(reqData.ClassID)

		if errors := validators.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSelection", reqData)
		return c.Next()
	}
}

// SelectionID checks the :id path parameter.
func SelectionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Params("id"))
		if id == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Selected class ID is required!", nil)
		}
		c.Locals("selectionID", id)
		return c.Next()
	}
}
