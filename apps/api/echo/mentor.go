package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/lu"
	"github.com/trezcool/maendeleo/core/user"
)

type mentorApi struct {
	deps ServerDeps
}

func registerMentorAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := mentorApi{deps: deps}

	mg := g.Group("/mentor", jwt, roleMiddleware(user.RoleMentor))
	mg.GET("/subjects", api.subjects)
	mg.GET("/subjects/:subjectId/lus", api.subjectUnits)
	mg.POST("/subjects/:subjectId/lus", api.create)
	mg.GET("/subjects/:subjectId/students", api.subjectStudents)
	mg.PUT("/lus/:luId", api.update)
	mg.DELETE("/lus/:luId", api.destroy)
}

func (api *mentorApi) subjects(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	subjects, err := api.deps.LUSvc.MentorSubjects(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying mentor subjects")
	}
	if subjects == nil {
		subjects = []lu.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *mentorApi) subjectUnits(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	units, err := api.deps.LUSvc.SubjectUnits(claims.Subject, ctx.Param("subjectId"))
	if err != nil {
		return mapMentorErr(err, "querying subject units")
	}
	if units == nil {
		units = []lu.LearningUnit{}
	}
	return ctx.JSON(http.StatusOK, units)
}

func (api *mentorApi) subjectStudents(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	subjectID := ctx.Param("subjectId")
	if err = api.deps.LUSvc.EnsureMentorTeaches(claims.Subject, subjectID); err != nil {
		return mapMentorErr(err, "checking mentor subject")
	}

	students, err := api.deps.TrackSvc.SubjectStudents(subjectID)
	if err != nil {
		return errors.Wrap(err, "querying subject students")
	}
	if students == nil {
		students = []user.User{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *mentorApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data lu.NewLearningUnit
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLearningUnit")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	unit, err := api.deps.LUSvc.CreateForSubject(claims.Subject, ctx.Param("subjectId"), data)
	if err != nil {
		return mapMentorErr(err, "creating learning unit")
	}

	if unit.IsPublished() {
		api.deps.Broadcaster.Broadcast(core.Event{
			Type:      core.EventNewLU,
			LUID:      unit.ID,
			SubjectID: unit.SubjectID,
			Title:     unit.Title,
		})
	}
	return ctx.JSON(http.StatusCreated, unit)
}

func (api *mentorApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	luID, err := parseLUID(ctx, "luId")
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

	unit, err := api.deps.LUSvc.UpdateAsMentor(claims.Subject, luID, data)
	if err != nil {
		return mapMentorErr(err, "updating learning unit")
	}

	api.deps.Broadcaster.Broadcast(core.Event{
		Type:      core.EventLUUpdated,
		LUID:      unit.ID,
		SubjectID: unit.SubjectID,
		Title:     unit.Title,
	})
	return ctx.JSON(http.StatusOK, unit)
}

func (api *mentorApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	luID, err := parseLUID(ctx, "luId")
	if err != nil {
		return err
	}

	if err = api.deps.LUSvc.DeleteAsMentor(claims.Subject, luID); err != nil {
		return mapMentorErr(err, "deleting learning unit")
	}

	api.deps.Broadcaster.Broadcast(core.Event{Type: core.EventLUDeleted, LUID: luID})
	return ctx.NoContent(http.StatusNoContent)
}

// mapMentorErr translates mentor authorization failures: an unknown unit is a
// 404 before it is a 403.
func mapMentorErr(err error, msg string) error {
	switch errors.Cause(err) {
	case lu.ErrNotFound:
		return errHttpNotFound
	case lu.ErrNotTeaching:
		return errHttpForbidden
	}
	return errors.Wrap(err, msg)
}
