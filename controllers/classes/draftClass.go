package classController

import (
	"errors"

	"athleticamp/middleware"
	"athleticamp/models"
	"athleticamp/services/lifecycle"
	classValidator "athleticamp/validators/class"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Controller struct {
	Lifecycle *lifecycle.Service
	Log       *zap.Logger
}

// AddClass stores an instructor's draft for moderation.
func (ctl *Controller) AddClass(c *fiber.Ctx) error {
	user, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Forbidden access", nil)
	}
	reqData, ok := c.Locals("validatedDraft").(*classValidator.DraftClassRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	draft, err := ctl.Lifecycle.Submit(c.UserContext(), *user, lifecycle.DraftInput{
		Name:           reqData.Name,
		Image:          reqData.Image,
		Price:          reqData.Price,
		AvailableSeats: reqData.AvailableSeats,
	})
	if err != nil {
		ctl.Log.Error("failed to submit draft class", zap.String("email", user.Email), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add class!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Class submitted for review!", draft)
}

func (ctl *Controller) MyClasses(c *fiber.Ctx) error {
	email, ok := middleware.EmailFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
	}

	drafts, err := ctl.Lifecycle.ListByInstructor(c.UserContext(), email)
	if err != nil {
		ctl.Log.Error("failed to list instructor drafts", zap.String("email", email), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch classes!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Classes fetched successfully!", drafts)
}

func (ctl *Controller) ManageClasses(c *fiber.Ctx) error {
	status := ""
	if q, ok := c.Locals("validatedDraftList").(*classValidator.DraftListQuery); ok {
		status = q.Status
	}

	drafts, err := ctl.Lifecycle.List(c.UserContext(), status)
	if err != nil {
		ctl.Log.Error("failed to list drafts", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch classes!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Classes fetched successfully!", drafts)
}

// SetClassStatus moderates a draft; approval publishes it to the catalog.
func (ctl *Controller) SetClassStatus(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedDraftStatus").(*classValidator.DraftStatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	tr, err := ctl.Lifecycle.SetStatus(c.UserContext(), reqData.ID, reqData.Status, reqData.Feedback)
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Class not found!", nil)
	case errors.Is(err, lifecycle.ErrInvalidStatus):
		return middleware.ValidationErrorResponse(c, map[string]string{"status": "status must be one of: pending, approved, rejected!"})
	case err != nil:
		ctl.Log.Error("failed to update draft status", zap.String("draft_id", reqData.ID), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update class status!", nil)
	}

	message := "Class status updated successfully!"
	if reqData.Status == models.DraftStatusApproved && tr.Published != nil {
		message = "Class approved and published!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, tr)
}
