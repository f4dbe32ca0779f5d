package classValidator

import (
	"strings"

	"athleticamp/middleware"
	"athleticamp/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateClassRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=120"`
	Image           string  `json:"image" validate:"max=500"`
	InstructorName  string  `json:"instructorName" validate:"max=120"`
	InstructorEmail string  `json:"instructorEmail" validate:"omitempty,email"`
	Price           float64 `json:"price" validate:"gte=0"`
	AvailableSeats  int     `json:"availableSeats" validate:"gte=0"`
	TotalStudents   int     `json:"totalStudents" validate:"gte=0"`
}

type DraftClassRequest struct {
	Name           string  `json:"name" validate:"required,min=2,max=120"`
	Image          string  `json:"image" validate:"max=500"`
	Price          float64 `json:"price" validate:"gte=0"`
	AvailableSeats int     `json:"availableSeats" validate:"gte=0"`
}

type DraftStatusRequest struct {
	ID       string `json:"-" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=pending approved rejected"`
	Feedback string `json:"feedback" validate:"max=500"`
}

type DraftListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
}

// CreateClass validates an admin's direct catalog insert.
func CreateClass() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateClassRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.InstructorName = strings.TrimSpace(reqData.InstructorName)
		reqData.InstructorEmail = strings.ToLower(strings.TrimSpace(reqData.InstructorEmail))

		if errors := validators.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedClass", reqData)
		return c.Next()
	}
}

// AddDraftClass validates an instructor submission.
func AddDraftClass() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DraftClassRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Image = strings.TrimSpace(reqData.Image)

		if errors := validators.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDraft", reqData)
		return c.Next()
	}
}

func SetDraftStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DraftStatusRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.ID = strings.TrimSpace(c.Params("id"))
		reqData.Status = strings.ToLower(strings.TrimSpace(reqData.Status))
		reqData.Feedback = strings.TrimSpace(reqData.Feedback)

		if errors := validators.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDraftStatus", reqData)
		return c.Next()
	}
}

func ListDrafts() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DraftListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		reqData.Status = strings.ToLower(strings.TrimSpace(reqData.Status))

		if errors := validators.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDraftList", reqData)
		return c.Next()
	}
}
