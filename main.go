package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"athleticamp/config"
	"athleticamp/database"
	"athleticamp/logger"
	"athleticamp/routers"
	"athleticamp/services/enrollment"
	"athleticamp/services/lifecycle"
	"athleticamp/utils"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(&logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
	}, logger.DefaultServiceName)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := database.ConnectDb(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if cfg.AdminEmail != "" {
		if err := database.SeedAdmin(db.Db, cfg.AdminEmail); err != nil {
			log.Fatal("failed to seed admin user", zap.Error(err))
		}
	}

	var mailer utils.Mailer = utils.LogMailer{Log: log}
	if cfg.SendGridApiKey != "" {
		mailer = utils.NewSendGridMailer(cfg.SendGridApiKey, cfg.EmailSender, cfg.EmailSenderName)
	} else {
		log.Warn("SENDGRID_API_KEY not set, emails are only logged")
	}
	notifier := &utils.Notifier{Mailer: mailer, Log: log}

	gateway := utils.NewStripeGateway(cfg.StripeApiURL, cfg.StripeSecretKey, cfg.PaymentTimeout)
	enrollmentSvc := enrollment.NewService(db.Db, gateway, notifier, log, cfg.ReconcileMaxAttempts)
	lifecycleSvc := lifecycle.NewService(db.Db, notifier, log)

	scheduler, err := enrollmentSvc.StartReconciler(cfg.ReconcileCron)
	if err != nil {
		log.Fatal("failed to start reconciler", zap.Error(err))
	}

	app := routers.NewApp(routers.Deps{
		Config:     cfg,
		DB:         db.Db,
		Log:        log,
		Enrollment: enrollmentSvc,
		Lifecycle:  lifecycleSvc,
		AccessLog:  true,
	})

	go func() {
		log.Info("server is running", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	scheduler.Stop(ctx)
	if err := db.Close(); err != nil {
		log.Error("failed to close database", zap.Error(err))
	}
}
