package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/policy"
	"github.com/edupulse/edupulse/core/user"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := courseApi{
		svc:      s.CourseSvc,
		validate: s.Validate,
	}

	cg := g.Group("/courses")

	// un-authed endpoints
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)

	// authed endpoints
	cg.POST("", api.create, jwt, roleMiddleware(policy.ErrInstructorsOnly, user.RoleInstructor, user.RoleAdmin))
	cg.GET("/mine", api.queryMine, jwt)
	cg.GET("/all", api.queryAll, jwt, adminMiddleware())
	cg.PUT("/:id", api.update, jwt)
	cg.DELETE("/:id", api.destroy, jwt)
}

// CourseResponse is a Course with its derived duration.
type CourseResponse struct {
	course.Course
	TotalDuration int    `json:"total_duration"`
	Duration      string `json:"duration"`
}

func newCourseResponse(crs course.Course) CourseResponse {
	total := crs.TotalDuration()
	return CourseResponse{Course: crs, TotalDuration: total, Duration: course.FormatDuration(total)}
}

func newCourseResponses(courses []course.Course) []CourseResponse {
	return lo.Map(courses, func(crs course.Course, _ int) CourseResponse { return newCourseResponse(crs) })
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.ListPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying published courses")
	}
	return ctx.JSON(http.StatusOK, newCourseResponses(courses))
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, newCourseResponse(crs))
}

func (api *courseApi) create(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	var data course.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), caller, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, newCourseResponse(crs))
}

func (api *courseApi) queryMine(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	courses, err := api.svc.ListMine(ctx.Request().Context(), caller)
	if err != nil {
		return errors.Wrap(err, "querying instructor courses")
	}
	return ctx.JSON(http.StatusOK, newCourseResponses(courses))
}

func (api *courseApi) queryAll(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	courses, err := api.svc.ListAll(ctx.Request().Context(), caller)
	if err != nil {
		return errors.Wrap(err, "querying all courses")
	}
	return ctx.JSON(http.StatusOK, newCourseResponses(courses))
}

func (api *courseApi) update(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), caller, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, newCourseResponse(crs))
}

func (api *courseApi) destroy(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	if err = api.svc.Delete(ctx.Request().Context(), caller, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "course deleted"})
}
