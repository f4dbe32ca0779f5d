package selectionController

import (
	"errors"

	"athleticamp/middleware"
	"athleticamp/models"
	selectionValidator "athleticamp/validators/selection"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Controller struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// GetSelectedClasses lists the caller's pending selections.
func (ctl *Controller) GetSelectedClasses(c *fiber.Ctx) error {
	email, ok := middleware.EmailFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
	}

	selected := []models.SelectedClass{}
	err := ctl.DB.WithContext(c.UserContext()).Where("email = ?", email).Order("created_at desc").Find(&selected).Error
	if err != nil {
		ctl.Log.Error("failed to list selected classes", zap.String("email", email), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch selected classes!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Selected classes fetched successfully!", selected)
}

func (ctl *Controller) GetSelectedClass(c *fiber.Ctx) error {
	email, ok := middleware.EmailFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
	}
	id, _ := c.Locals("selectionID").(string)

	var selected models.SelectedClass
	err := ctl.DB.WithContext(c.UserContext()).Where("id = ? AND email = ?", id, email).First(&selected).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Selected class not found!", nil)
	}
	if err != nil {
		ctl.Log.Error("failed to fetch selected class", zap.String("id", id), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch selected class!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Selected class fetched successfully!", selected)
}

// SelectClass records a selection for the caller, snapshotting the catalog class.
func (ctl *Controller) SelectClass(c *fiber.Ctx) error {
	email, ok := middleware.EmailFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
	}
	reqData, ok := c.Locals("validatedSelection").(*selectionValidator.SelectClassRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	db := ctl.DB.WithContext(c.UserContext())

	var class models.Class
	if err := db.Where("id = ?", reqData.ClassID).First(&class).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Class not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to select class!", nil)
	}

	var n int64
	if err := db.Model(&models.SelectedClass{}).Where("class_id = ? AND email = ?", class.ID, email).Count(&n).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to select class!", nil)
	}
	if n > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Class already selected!", nil)
	}
	if err := db.Model(&models.EnrolledClass{}).Where("class_id = ? AND email = ?", class.ID, email).Count(&n).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to select class!", nil)
	}
	if n > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this class!", nil)
	}

	selected := snapshot(class, email, reqData)
	// A concurrent request may have inserted the same pair after the count above.
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&selected)
	if res.Error != nil {
		ctl.Log.Error("failed to create selected class", zap.String("email", email), zap.Error(res.Error))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to select class!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Class already selected!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Class selected successfully!", selected)
}

func snapshot(class models.Class, email string, req *selectionValidator.SelectClassRequest) models.SelectedClass {
	s := models.SelectedClass{
		ClassID:        class.ID,
		Email:          email,
		ClassName:      class.Name,
		Image:          class.Image,
		InstructorName: class.InstructorName,
		Price:          class.Price,
		AvailableSeats: models.SeatCount(class.AvailableSeats),
		TotalStudents:  class.TotalStudents,
	}
	if req.Name != "" {
		s.ClassName = req.Name
	}
	if req.Image != "" {
		s.Image = req.Image
	}
	if req.InstructorName != "" {
		s.InstructorName = req.InstructorName
	}
	if req.AvailableSeats != nil {
		s.AvailableSeats = *req.AvailableSeats
	}
	if req.TotalStudents != nil {
		s.TotalStudents = *req.TotalStudents
	}
	return s
}

func (ctl *Controller) DeleteSelectedClass(c *fiber.Ctx) error {
	email, ok := middleware.EmailFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
	}
	id, _ := c.Locals("selectionID").(string)

	res := ctl.DB.WithContext(c.UserContext()).Where("id = ? AND email = ?", id, email).Delete(&models.SelectedClass{})
	if res.Error != nil {
		ctl.Log.Error("failed to delete selected class", zap.String("id", id), zap.Error(res.Error))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete selected class!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Selected class not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Selected class deleted successfully!", fiber.Map{"deletedCount": res.RowsAffected})
}
