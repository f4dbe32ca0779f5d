package catalogController

import (
	"athleticamp/middleware"
	"athleticamp/models"
	classValidator "athleticamp/validators/class"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PopularLimit is how many records the popular listings return.
const PopularLimit = 6

type Controller struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func (ctl *Controller) GetClasses(c *fiber.Ctx) error {
	classes := []models.Class{}
	if err := ctl.DB.WithContext(c.UserContext()).Order("created_at asc").Find(&classes).Error; err != nil {
		ctl.Log.Error("failed to list classes", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch classes!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Classes fetched successfully!", classes)
}

// GetPopularClasses returns the classes with the most students.
func (ctl *Controller) GetPopularClasses(c *fiber.Ctx) error {
	classes := []models.Class{}
	err := ctl.DB.WithContext(c.UserContext()).
		Order("total_students desc").Order("id asc").
		Limit(PopularLimit).
		Find(&classes).Error
	if err != nil {
		ctl.Log.Error("failed to list popular classes", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch popular classes!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Popular classes fetched successfully!", classes)
}

func (ctl *Controller) GetInstructors(c *fiber.Ctx) error {
	instructors := []models.Instructor{}
	if err := ctl.DB.WithContext(c.UserContext()).Order("created_at asc").Find(&instructors).Error; err != nil {
		ctl.Log.Error("failed to list instructors", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch instructors!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Instructors fetched successfully!", instructors)
}

func (ctl *Controller) GetPopularInstructors(c *fiber.Ctx) error {
	instructors := []models.Instructor{}
	err := ctl.DB.WithContext(c.UserContext()).
		Order("total_students desc").Order("id asc").
		Limit(PopularLimit).
		Find(&instructors).Error
	if err != nil {
		ctl.Log.Error("failed to list popular instructors", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch popular instructors!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Popular instructors fetched successfully!", instructors)
}

// CreateClass inserts a catalog class directly, bypassing moderation.
func (ctl *Controller) CreateClass(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedClass").(*classValidator.CreateClassRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	class := models.Class{
		Name:            reqData.Name,
		Image:           reqData.Image,
		InstructorName:  reqData.InstructorName,
		InstructorEmail: reqData.InstructorEmail,
		Price:           reqData.Price,
		AvailableSeats:  reqData.AvailableSeats,
		TotalStudents:   reqData.TotalStudents,
	}
	if err := ctl.DB.WithContext(c.UserContext()).Create(&class).Error; err != nil {
		ctl.Log.Error("failed to create class", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create class!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Class created successfully!", class)
}
