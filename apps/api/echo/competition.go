package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tujenge/shindano/core"
	"github.com/tujenge/shindano/core/competition"
)

type competitionApi struct {
	svc      competition.Service
	validate *validator.Validate
}

func registerCompetitionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc competition.Service,
	validate *validator.Validate,
) {
	api := competitionApi{
		svc:      svc,
		validate: validate,
	}

	eg := g.Group("/events")

	// read-only endpoints are open; results are public
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)
	eg.GET("/:id/teams", api.teamTotals)
	eg.GET("/:id/leaderboard", api.leaderboard)

	// authed endpoints
	ag := eg.Group("", jwt)
	ag.POST("", api.create, organizerMiddleware())
	ag.POST("/:id/teams", api.registerTeam, organizerMiddleware())
	ag.POST("/:id/judges", api.registerJudge)
	ag.PUT("/:id/judges/:judgeId/status", api.setJudgeStatus, organizerMiddleware())
	ag.POST("/:id/scores", api.submitScores)
}

// Handlers

func (api *competitionApi) create(ctx echo.Context) error {
	var data competition.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ev, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *competitionApi) query(ctx echo.Context) error {
	events, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []competition.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *competitionApi) retrieve(ctx echo.Context) error {
	ev, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.trapNotFoundErr(err, "getting event")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *competitionApi) registerTeam(ctx echo.Context) error {
	var data competition.NewTeam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ev, err := api.svc.RegisterTeam(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return api.trapNotFoundErr(err, "registering team")
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *competitionApi) registerJudge(ctx echo.Context) error {
	var data competition.NewJudge
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewJudge")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ev, err := api.svc.RegisterJudge(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return api.trapNotFoundErr(err, "registering judge")
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *competitionApi) setJudgeStatus(ctx echo.Context) error {
	var data competition.UpdateJudgeStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateJudgeStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ev, err := api.svc.SetJudgeStatus(ctx.Request().Context(), ctx.Param("id"), ctx.Param("judgeId"), data.Status)
	if err != nil {
		return api.trapNotFoundErr(err, "updating judge status")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *competitionApi) submitScores(ctx echo.Context) error {
	var data competition.ScoreSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScoreSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ev, err := api.svc.SubmitScores(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return api.trapNotFoundErr(err, "submitting scores")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *competitionApi) leaderboard(ctx echo.Context) error {
	board, err := api.svc.Leaderboard(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.trapNotFoundErr(err, "building leaderboard")
	}
	if board == nil {
		board = []competition.LeaderboardEntry{}
	}
	return ctx.JSON(http.StatusOK, board)
}

func (api *competitionApi) teamTotals(ctx echo.Context) error {
	totals, err := api.svc.TeamTotals(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.trapNotFoundErr(err, "building team totals")
	}
	if totals == nil {
		totals = []competition.TeamTotal{}
	}
	return ctx.JSON(http.StatusOK, totals)
}

// trapNotFoundErr converts a missing-event error to a 404; anything else
// passes through for the app error handler to classify.
func (api *competitionApi) trapNotFoundErr(err error, msg string) error {
	if errors.Cause(err) == competition.ErrEventNotFound {
		return errHttpNotFound
	}
	if _, ok := errors.Cause(err).(*core.ValidationError); ok {
		return err
	}
	return errors.Wrap(err, msg)
}
