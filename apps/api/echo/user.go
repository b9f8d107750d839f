package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/admin"
	"github.com/edupulse/edupulse/core/user"
)

type userApi struct {
	conf     *core.Config
	svc      *user.Service
	adminSvc *admin.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := userApi{
		conf:     s.Conf,
		svc:      s.UserSvc,
		adminSvc: s.AdminSvc,
		validate: s.Validate,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/register", api.register)
	ug.POST("/login", api.login)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.GET("/me", api.me)
	ag.GET("/dashboard-stats", api.dashboardStats)
	ag.GET("", api.query, adminMiddleware())
	ag.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(rctx, data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, LoginResponse{Token: token, User: usr})
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	claims, err := authenticate(rctx, data.Email, data.Password, api.svc, api.conf)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims, api.conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	usr, err := api.svc.GetByID(rctx, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *userApi) me(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), caller.ID)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) dashboardStats(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	stats, err := api.adminSvc.Dashboard(ctx.Request().Context(), caller)
	if err != nil {
		return errors.Wrap(err, "computing dashboard")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *userApi) query(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	users, err := api.adminSvc.ListUsers(ctx.Request().Context(), caller)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) destroy(ctx echo.Context) error {
	caller, err := getCaller(ctx)
	if err != nil {
		return errors.Wrap(err, "getting caller")
	}
	if err = api.adminSvc.DeleteUser(ctx.Request().Context(), caller, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "user deleted"})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
