package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/user"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		User  user.User `json:"user"`
		Token string    `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	ProfileResponse struct {
		user.User
		LearningActivity []string `json:"learningActivity"`
	}
)

type userApi struct {
	deps ServerDeps
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{deps: deps}

	// un-authed endpoints
	g.POST("/login", api.login)
	g.POST("/register", api.register)
	g.POST("/forgot-password", api.forgotPassword)
	g.POST("/reset-password", api.resetPassword)

	// authed endpoints
	pg := g.Group("/profile/:userId", jwt)
	pg.GET("", api.retrieveProfile, ownerOrTeacherMiddleware("userId"))
	pg.PUT("", api.updateProfile, selfOnlyMiddleware("userId"))
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	usr, err := api.deps.UserSvc.Authenticate(data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{User: usr, Token: token})
}

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.deps.Validate, api.deps.UserSvc); err != nil {
		return err
	}

	usr, err := api.deps.UserSvc.Register(data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	api.deps.Broadcaster.Broadcast(core.Event{Type: core.EventRegistration, UserID: usr.ID})
	return ctx.JSON(http.StatusCreated, LoginResponse{User: usr, Token: token})
}

func (api *userApi) forgotPassword(ctx echo.Context) error {
	var data struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding email")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	if err := api.deps.UserSvc.RequestPasswordReset(data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if err := api.deps.UserSvc.ResetPassword(data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *userApi) retrieveProfile(ctx echo.Context) error {
	usr, err := api.deps.UserSvc.GetByID(ctx.Param("userId"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}
	dates, err := api.deps.TrackSvc.ActivityDates(usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying activity")
	}
	if dates == nil {
		dates = []string{}
	}
	return ctx.JSON(http.StatusOK, ProfileResponse{User: usr, LearningActivity: dates})
}

func (api *userApi) updateProfile(ctx echo.Context) error {
	usr, err := api.deps.UserSvc.GetByID(ctx.Param("userId"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}

	var data user.UpdateProfile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err = data.Validate(usr, api.deps.Validate, api.deps.UserSvc); err != nil {
		return err
	}

	usr, err = api.deps.UserSvc.UpdateProfile(usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}

	api.deps.Broadcaster.Broadcast(core.Event{Type: core.EventProfileUpdated, UserID: usr.ID})
	return ctx.JSON(http.StatusOK, usr)
}
