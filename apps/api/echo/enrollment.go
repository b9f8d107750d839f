package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edupulse/edupulse/core/enrollment"
	"github.com/edupulse/edupulse/core/policy"
	"github.com/edupulse/edupulse/core/user"
)

type enrollmentApi struct {
	svc      *enrollment.Service
	validate *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := enrollmentApi{
		svc:      s.EnrollmentSvc,
		validate: s.Validate,
	}

	eg := g.Group("/enrollments", jwt, roleMiddleware(policy.ErrStudentsOnly, user.RoleStudent))
	eg.GET("/mine", api.queryMine)
	eg.POST("/:courseId", api.enroll)
	eg.DELETE("/:courseId", api.unenroll)
	eg.PUT("/:enrollmentId/modules/:moduleId", api.setModuleCompletion)
}

// Handlers

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	e, err := api.svc.Enroll(ctx.Request().Context(), caller, ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *enrollmentApi) unenroll(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	if err = api.svc.Unenroll(ctx.Request().Context(), caller, ctx.Param("courseId")); err != nil {
		return errors.Wrap(err, "unenrolling")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "unenrolled"})
}

func (api *enrollmentApi) queryMine(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	details, err := api.svc.ListMine(ctx.Request().Context(), caller)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *enrollmentApi) setModuleCompletion(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	var data enrollment.SetCompletion
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetCompletion")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	e, err := api.svc.SetModuleCompletion(
		ctx.Request().Context(), caller, ctx.Param("enrollmentId"), ctx.Param("moduleId"), *data.Completed,
	)
	if err != nil {
		return errors.Wrap(err, "setting module completion")
	}
	return ctx.JSON(http.StatusOK, e)
}
