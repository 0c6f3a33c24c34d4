package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/lu"
	"github.com/trezcool/maendeleo/core/track"
	"github.com/trezcool/maendeleo/core/user"
)

type (
	// NewLURequest is a NewLearningUnit plus an optional assignment fan-out.
	NewLURequest struct {
		lu.NewLearningUnit
		Assignees []string `json:"assignees"`
	}

	LUWithAssignees struct {
		lu.LearningUnit
		Assignees []string `json:"assignees"`
	}

	GradeRequest struct {
		Feedback string `json:"feedback"`
		Grade    string `json:"grade"`
	}
)

type teacherApi struct {
	deps ServerDeps
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := teacherApi{deps: deps}
	teacher := roleMiddleware(user.RoleTeacher)

	g.GET("/teacher/students", api.roster, jwt, teacher)
	g.PUT("/teacher/grade/:studentId/:luId", api.grade, jwt, teacher)

	lg := g.Group("/lus", jwt, teacher)
	lg.GET("", api.query)
	lg.POST("", api.create)
	lg.PUT("/:id", api.update)
	lg.DELETE("/:id", api.destroy)
}

func (api *teacherApi) roster(ctx echo.Context) error {
	roster, err := api.deps.TrackSvc.ClassRoster()
	if err != nil {
		return errors.Wrap(err, "building class roster")
	}
	if roster == nil {
		roster = []track.RosterEntry{}
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *teacherApi) query(ctx echo.Context) error {
	units, err := api.deps.LUSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying learning units")
	}
	assignees, err := api.deps.TrackSvc.Assignees()
	if err != nil {
		return errors.Wrap(err, "querying assignees")
	}

	res := make([]LUWithAssignees, len(units))
	for i, unit := range units {
		ids := assignees[unit.ID]
		if ids == nil {
			ids = []string{}
		}
		res[i] = LUWithAssignees{LearningUnit: unit, Assignees: ids}
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *teacherApi) create(ctx echo.Context) error {
	var data NewLURequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLURequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	unit, err := api.deps.LUSvc.Create(data.NewLearningUnit)
	if err != nil {
		return errors.Wrap(err, "creating learning unit")
	}
	if len(data.Assignees) > 0 {
		if err = api.deps.TrackSvc.Assign(unit.ID, data.Assignees); err != nil {
			return errors.Wrap(err, "assigning learning unit")
		}
	}

	// drafts stay invisible until published
	if unit.IsPublished() {
		api.deps.Broadcaster.Broadcast(core.Event{Type: core.EventNewLU, LUID: unit.ID, Title: unit.Title})
	}
	return ctx.JSON(http.StatusCreated, unit)
}

func (api *teacherApi) update(ctx echo.Context) error {
	id, err := parseLUID(ctx, "id")
	if err != nil {
		return err
	}

	var data lu.UpdateLearningUnit
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLearningUnit")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	unit, err := api.deps.LUSvc.Update(id, data)
	if err != nil {
		if errors.Cause(err) == lu.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating learning unit")
	}

	api.deps.Broadcaster.Broadcast(core.Event{Type: core.EventLUUpdated, LUID: unit.ID, Title: unit.Title})
	return ctx.JSON(http.StatusOK, unit)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	id, err := parseLUID(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.deps.LUSvc.Delete(id); err != nil {
		if errors.Cause(err) == lu.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting learning unit")
	}

	api.deps.Broadcaster.Broadcast(core.Event{Type: core.EventLUDeleted, LUID: id})
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teacherApi) grade(ctx echo.Context) error {
	luID, err := parseLUID(ctx, "luId")
	if err != nil {
		return err
	}
	studentID := ctx.Param("studentId")

	var data GradeRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}

	if err = api.deps.TrackSvc.SetGrade(studentID, luID, data.Feedback, data.Grade); err != nil {
		if errors.Cause(err) == track.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting grade")
	}

	api.deps.Broadcaster.Broadcast(core.Event{Type: core.EventGradeUpdated, UserID: studentID, LUID: luID})
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Grade saved."})
}

func parseLUID(ctx echo.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(param), 10, 64)
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
