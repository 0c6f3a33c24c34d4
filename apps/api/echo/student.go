package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/track"
)

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type studentApi struct {
	deps ServerDeps
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{deps: deps}

	sg := g.Group("/student/:userId", jwt)
	sg.GET("/lus", api.board, ownerOrTeacherMiddleware("userId"))
	sg.PUT("/lus/:luId", api.updateStatus, selfOnlyMiddleware("userId"))
	sg.GET("/streaks", api.streaks, ownerOrTeacherMiddleware("userId"))
}

func (api *studentApi) board(ctx echo.Context) error {
	board, err := api.deps.TrackSvc.StudentBoard(ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "building student board")
	}
	if board == nil {
		board = []track.BoardItem{}
	}
	return ctx.JSON(http.StatusOK, board)
}

func (api *studentApi) updateStatus(ctx echo.Context) error {
	luID, err := parseLUID(ctx, "luId")
	if err != nil {
		return err
	}
	studentID := ctx.Param("userId")

	var data StatusRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}
	if err = api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	if err = api.deps.TrackSvc.SetStatus(studentID, luID, data.Status); err != nil {
		switch errors.Cause(err) {
		case track.ErrUnknownStatus:
			return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "this value is not allowed"})
		case track.ErrNotFound:
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting status")
	}

	api.deps.Broadcaster.Broadcast(core.Event{Type: core.EventStatusUpdated, UserID: studentID, LUID: luID})
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Status updated."})
}

func (api *studentApi) streaks(ctx echo.Context) error {
	streaks, err := api.deps.TrackSvc.Streaks(ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "computing streaks")
	}
	return ctx.JSON(http.StatusOK, streaks)
}
