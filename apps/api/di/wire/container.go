//go:build wireinject
// +build wireinject

package wire_container

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/wire"

	echoapi "github.com/edupulse/edupulse/apps/api/echo"
	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/admin"
	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/enrollment"
	"github.com/edupulse/edupulse/core/user"
	"github.com/edupulse/edupulse/storage"
)

var (
	storeSet = wire.NewSet(
		newStores,
		wire.FieldsOf(new(*storage.Stores), "Users", "Courses", "Enrollments"))

	serviceSet = wire.NewSet(
		newEmailService,
		user.NewService,
		course.NewService,
		enrollment.NewService,
		wire.Bind(new(course.EnrollmentCleaner), new(*enrollment.Service)),
		admin.NewService)

	appSet = wire.NewSet(
		newLogger,
		storeSet,
		serviceSet,
		validator.New,
		core.NewTranslator,
		wire.Struct(new(echoapi.ServerDeps), "*"),
		echoapi.NewServer)
)

// InitializeServer builds the API server and the stores behind it.
// The returned cleanup closes the stores.
func InitializeServer(ctx context.Context, conf *core.Config) (*echoapi.Server, func(), error) {
	wire.Build(appSet)
	return nil, nil, nil
}
