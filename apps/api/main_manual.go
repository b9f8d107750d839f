package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/edupulse/edupulse/apps/api/echo"
	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/admin"
	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/enrollment"
	"github.com/edupulse/edupulse/core/user"
	emailsvc "github.com/edupulse/edupulse/services/email"
	logsvc "github.com/edupulse/edupulse/services/logger"
	"github.com/edupulse/edupulse/storage"
)

func startManual(conf *core.Config) {
	// =========================================================================
	// Set up Dependencies

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	stores, err := setUpStores(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = stores.Close(context.Background()); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(stores.Users)
	enrollmentSvc := enrollment.NewService(stores.Enrollments, stores.Courses, stores.Users, mailSvc, logger, conf)
	courseSvc := course.NewService(stores.Courses, enrollmentSvc)
	adminSvc := admin.NewService(usrSvc, courseSvc, enrollmentSvc)

	run(echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Validate:      validator.New(),
			Translator:    core.NewTranslator(),
			UserSvc:       usrSvc,
			CourseSvc:     courseSvc,
			EnrollmentSvc: enrollmentSvc,
			AdminSvc:      adminSvc,
		},
	))
}

func setUpStores(conf *core.Config) (*storage.Stores, error) {
	stores, err := storage.Open(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	if err = stores.Migrate(); err != nil {
		_ = stores.Close(context.Background())
		return nil, err
	}
	return stores, nil
}
