package routers

import (
	"time"

	"athleticamp/config"
	authController "athleticamp/controllers/auth"
	catalogController "athleticamp/controllers/catalog"
	classController "athleticamp/controllers/classes"
	paymentController "athleticamp/controllers/payment"
	selectionController "athleticamp/controllers/selection"
	userController "athleticamp/controllers/userControllers"
	"athleticamp/middleware"
	"athleticamp/models"
	"athleticamp/routers/authRoutes"
	"athleticamp/routers/catalogRoutes"
	"athleticamp/routers/classRoutes"
	"athleticamp/routers/paymentRoutes"
	"athleticamp/routers/selectionRoutes"
	"athleticamp/routers/userRoutes"
	"athleticamp/services/enrollment"
	"athleticamp/services/lifecycle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators shared by every handler.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	Enrollment *enrollment.Service
	Lifecycle  *lifecycle.Service
	// AccessLog enables the per-request log line.
	AccessLog bool
}

// NewApp builds the Fiber app with global middleware and every route.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "AthletiCamp API",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Config.CorsOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if d.Config.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        d.Config.RateLimitMax,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many requests, please try again later.", nil)
			},
		}))
	}
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			TimeFormat: time.RFC3339,
			Format:     "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Athleti camp is ongoing this season")
	})

	Setup(app, d)
	return app
}

// Setup registers every route group.
func Setup(app *fiber.App, d Deps) {
	verify := middleware.JWTMiddleware(d.Config.AccessTokenSecret)
	adminOnly := middleware.RequireRole(d.DB, d.Log, models.RoleAdmin)
	instructorOrAdmin := middleware.RequireRole(d.DB, d.Log, models.RoleAdmin, models.RoleInstructor)

	authRoutes.SetupAuthRoutes(app, &authController.Controller{
		Secret:   d.Config.AccessTokenSecret,
		TokenTTL: d.Config.TokenTTL,
		Log:      d.Log,
	})
	catalogRoutes.SetupCatalogRoutes(app, &catalogController.Controller{DB: d.DB, Log: d.Log}, verify, adminOnly)
	userRoutes.SetupUserRoutes(app, &userController.Controller{DB: d.DB, Log: d.Log}, verify, adminOnly)
	selectionRoutes.SetupSelectionRoutes(app, &selectionController.Controller{DB: d.DB, Log: d.Log}, verify)
	paymentRoutes.SetupPaymentRoutes(app, &paymentController.Controller{DB: d.DB, Enrollment: d.Enrollment, Log: d.Log}, verify)
	classRoutes.SetupClassRoutes(app, &classController.Controller{Lifecycle: d.Lifecycle, Log: d.Log}, verify, instructorOrAdmin, adminOnly)
}
