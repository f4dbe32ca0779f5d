package paymentController

import (
	"errors"
	"time"

	"athleticamp/middleware"
	"athleticamp/models"
	"athleticamp/services/enrollment"
	"athleticamp/utils"
	paymentValidator "athleticamp/validators/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Controller struct {
	DB         *gorm.DB
	Enrollment *enrollment.Service
	Log        *zap.Logger
	// Now is overridable in tests.
	Now func() time.Time
}

// PayForClass runs the enrollment workflow for one selected class.
func (ctl *Controller) PayForClass(c *fiber.Ctx) error {
	email, ok := middleware.EmailFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
	}
	reqData, ok := c.Locals("validatedPayment").(*paymentValidator.PayRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	result, err := ctl.Enrollment.Enroll(c.UserContext(), enrollment.Request{
		SelectedClassID: reqData.SelectedClassID,
		Email:           email,
		PaymentMethodID: reqData.PaymentMethodID,
		Price:           reqData.Price,
	})
	if err != nil {
		return ctl.enrollmentError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment successful, enrolled in class!", result)
}

func (ctl *Controller) enrollmentError(c *fiber.Ctx, err error) error {
	var commitErr *enrollment.CommitError
	switch {
	case errors.Is(err, enrollment.ErrInvalidAmount):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Invalid payment amount!", nil)
	case errors.Is(err, enrollment.ErrAmountMismatch):
		return middleware.ValidationErrorResponse(c, map[string]string{"price": "price must match the class price!"})
	case errors.Is(err, utils.ErrPaymentDeclined):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment failed", fiber.Map{"reason": err.Error()})
	case errors.Is(err, utils.ErrPaymentProvider):
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment failed", fiber.Map{"reason": "payment provider unavailable"})
	case errors.As(err, &commitErr):
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false,
			"Payment received but enrollment is still processing", fiber.Map{"intentId": commitErr.IntentID})
	case errors.Is(err, enrollment.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Selected class not found!", nil)
	case errors.Is(err, enrollment.ErrNoSeats):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "No seats available", nil)
	case errors.Is(err, enrollment.ErrAlreadyEnrolled):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled", nil)
	case errors.Is(err, enrollment.ErrPaymentInProgress):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payment already in progress", nil)
	}
	ctl.Log.Error("enrollment failed", zap.Error(err))
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Error processing payment", nil)
}

// GetPayments lists payments newest first, optionally by email and period.
func (ctl *Controller) GetPayments(c *fiber.Ctx) error {
	q := ctl.listQuery(c)
	query := ctl.DB.WithContext(c.UserContext()).Order("date desc")
	if q.Email != "" {
		query = query.Where("email = ?", q.Email)
	}
	if from, ok := ctl.periodStart(q.Period); ok {
		query = query.Where("date >= ?", from)
	}

	payments := []models.Payment{}
	if err := query.Find(&payments).Error; err != nil {
		ctl.Log.Error("failed to list payments", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", payments)
}

func (ctl *Controller) GetEnrolledClasses(c *fiber.Ctx) error {
	q := ctl.listQuery(c)
	query := ctl.DB.WithContext(c.UserContext()).Order("created_at desc")
	if q.Email != "" {
		query = query.Where("email = ?", q.Email)
	}

	enrolled := []models.EnrolledClass{}
	if err := query.Find(&enrolled).Error; err != nil {
		ctl.Log.Error("failed to list enrolled classes", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrolled classes!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled classes fetched successfully!", enrolled)
}

func (ctl *Controller) listQuery(c *fiber.Ctx) *paymentValidator.ListQuery {
	if q, ok := c.Locals("validatedList").(*paymentValidator.ListQuery); ok {
		return q
	}
	return &paymentValidator.ListQuery{}
}

func (ctl *Controller) periodStart(period string) (time.Time, bool) {
	current := time.Now()
	if ctl.Now != nil {
		current = ctl.Now()
	}
	n := now.With(current)
	// Payment dates are stored in UTC.
	switch period {
	case "day":
		return n.BeginningOfDay().UTC(), true
	case "week":
		return n.BeginningOfWeek().UTC(), true
	case "month":
		return n.BeginningOfMonth().UTC(), true
	}
	return time.Time{}, false
}
