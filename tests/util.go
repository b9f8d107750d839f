// Package testutil holds the fixtures shared by the test suites.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/admin"
	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/enrollment"
	"github.com/edupulse/edupulse/core/user"
	appfs "github.com/edupulse/edupulse/fs"
	emailsvc "github.com/edupulse/edupulse/services/email"
	logsvc "github.com/edupulse/edupulse/services/logger"
	dummydb "github.com/edupulse/edupulse/storage/database/dummy"
)

// NewConfig returns the configuration of the TEST environment without reading the process environment.
func NewConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		AppName:          "EduPulse",
		SecretKey:        "test-secret-key",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "EduPulse <noreply@edupulse.test>",
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
			ShutdownTimeout:    time.Second,
		},
		Database: core.DatabaseConfig{Engine: "memory", ConnectTimeout: 2 * time.Second},
		Progress: core.ProgressConfig{MaxUpdateAttempts: 3},
	}
}

// NewLogger returns a logger that neither prints nor reports.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// Stack is the in-memory store with every service built on top of it.
type Stack struct {
	Conf           *core.Config
	Logger         core.Logger
	DB             *dummydb.DB
	Validate       *validator.Validate
	Translator     ut.Translator
	UserRepo       user.Repository
	CourseRepo     course.Repository
	EnrollmentRepo enrollment.Repository
	UserSvc        *user.Service
	CourseSvc      *course.Service
	EnrollmentSvc  *enrollment.Service
	AdminSvc       *admin.Service
}

// NewStack wires the services on a fresh in-memory store. Emails go to emailsvc.SentMessages.
func NewStack() *Stack {
	conf := NewConfig()
	logger := NewLogger(conf)

	db, err := dummydb.Open()
	if err != nil {
		panic(err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, true, logger)

	s := &Stack{
		Conf:           conf,
		Logger:         logger,
		DB:             db,
		Validate:       validate,
		Translator:     translator,
		UserRepo:       dummydb.NewUserRepository(db),
		CourseRepo:     dummydb.NewCourseRepository(db),
		EnrollmentRepo: dummydb.NewEnrollmentRepository(db),
	}
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	s.UserSvc = user.NewService(s.UserRepo)
	s.EnrollmentSvc = enrollment.NewService(s.EnrollmentRepo, s.CourseRepo, s.UserRepo, mailSvc, logger, conf)
	s.CourseSvc = course.NewService(s.CourseRepo, s.EnrollmentSvc)
	s.AdminSvc = admin.NewService(s.UserSvc, s.CourseSvc, s.EnrollmentSvc)
	return s
}

// Reset empties the store and the sent emails.
func (s *Stack) Reset() {
	s.DB.Flush()
	emailsvc.ResetSentMessages()
}

func CreateUser(
	t testing.TB,
	repo user.Repository,
	name, email, pwd string,
	role user.Role,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(bgCtx, usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateCourse stores a course with one module per duration, ordered as given.
// Module IDs are "m1", "m2", ... so tests can address them.
func CreateCourse(
	t testing.TB,
	repo course.Repository,
	instructorID, title string,
	published bool,
	durations []int,
	createdAt ...time.Time,
) course.Course {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	modules := make([]course.Module, 0, len(durations))
	for i, d := range durations {
		modules = append(modules, course.Module{
			ID:       fmt.Sprintf("m%d", i+1),
			Title:    fmt.Sprintf("Module %d", i+1),
			Content:  "content",
			Duration: d,
			Order:    i + 1,
		})
	}
	crs := course.Course{
		ID:               uuid.NewString(),
		Title:            title,
		Description:      title + " description",
		Category:         "programming",
		Level:            course.LevelBeginner,
		InstructorID:     instructorID,
		Modules:          modules,
		EnrolledStudents: []string{},
		IsPublished:      published,
		CreatedAt:        tstamp,
		UpdatedAt:        tstamp,
	}
	crs, err := repo.CreateCourse(bgCtx, crs)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

var bgCtx = context.Background()
