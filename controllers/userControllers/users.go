package userController

import (
	"errors"

	"athleticamp/middleware"
	"athleticamp/models"
	userValidator "athleticamp/validators/userValidator"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Controller struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func (ctl *Controller) GetUsers(c *fiber.Ctx) error {
	users := []models.User{}
	if err := ctl.DB.WithContext(c.UserContext()).Order("created_at asc").Find(&users).Error; err != nil {
		ctl.Log.Error("failed to list users", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", users)
}

// CreateUser inserts the user on first sign-in; an existing email is left untouched.
func (ctl *Controller) CreateUser(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*userValidator.CreateUserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	db := ctl.DB.WithContext(c.UserContext())

	user := models.User{Name: reqData.Name, Email: reqData.Email, PhotoURL: reqData.PhotoURL}
	res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).Create(&user)
	if res.Error != nil {
		ctl.Log.Error("failed to create user", zap.String("email", reqData.Email), zap.Error(res.Error))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user!", nil)
	}

	if res.RowsAffected == 0 {
		var existing models.User
		if err := db.Where("email = ?", reqData.Email).First(&existing).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "User already exists", existing)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully!", user)
}

// IsAdmin answers {admin} for the caller's own email only.
func (ctl *Controller) IsAdmin(c *fiber.Ctx) error {
	is, err := ctl.hasRole(c, models.RoleAdmin)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check role!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role checked successfully!", fiber.Map{"admin": is})
}

func (ctl *Controller) IsInstructor(c *fiber.Ctx) error {
	is, err := ctl.hasRole(c, models.RoleInstructor)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check role!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role checked successfully!", fiber.Map{"instructor": is})
}

func (ctl *Controller) hasRole(c *fiber.Ctx, role string) (bool, error) {
	email, _ := c.Locals("roleCheckEmail").(string)
	caller, _ := middleware.EmailFromCtx(c)
	if email == "" || caller != email {
		return false, nil
	}

	var user models.User
	err := ctl.DB.WithContext(c.UserContext()).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		ctl.Log.Error("failed to look up user role", zap.String("email", email), zap.Error(err))
		return false, err
	}
	return user.Role == role, nil
}

func (ctl *Controller) UpdateRole(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRole").(*userValidator.UpdateRoleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	db := ctl.DB.WithContext(c.UserContext())

	res := db.Model(&models.User{}).Where("id = ?", reqData.ID).Update("role", reqData.Role)
	if res.Error != nil {
		ctl.Log.Error("failed to update role", zap.String("user_id", reqData.ID), zap.Error(res.Error))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update role!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var user models.User
	if err := db.Where("id = ?", reqData.ID).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update role!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role updated successfully!", user)
}
