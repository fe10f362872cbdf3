package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-feedback/core/feedback"
)

type feedbackApi struct {
	svc      feedback.Service
	validate *validator.Validate
}

func registerFeedbackAPI(
	g *echo.Group,
	auth jwtAuth,
	limiter *keyRateLimiter,
	svc feedback.Service,
	validate *validator.Validate,
) {
	api := feedbackApi{svc: svc, validate: validate}

	sg := g.Group("/sessions/:session")
	sg.GET("/submission", api.submission, limiter.middleware(), auth.unlessRegKey())
	sg.GET("/moderation", api.moderation, auth.required(), instructorMiddleware())
}

type (
	submissionQuery struct {
		RegKey                   string `query:"key" json:"key"`
		PreviewAs                string `query:"previewas" json:"previewas" validate:"omitempty,email"`
		IsHeaderHidden           bool   `query:"hideheader" json:"hideheader"`
		IsShowRealQuestionNumber bool   `query:"realnumbers" json:"realnumbers"`
	}

	moderationQuery struct {
		Student    string `query:"student" json:"student" validate:"required,email"`
		QuestionID string `query:"question" json:"question"`
	}

	submissionResponse struct {
		feedback.SubmissionBundle
		IsSubmittable bool   `json:"is_submittable"`
		SubmitTarget  string `json:"submit_target"`
	}
)

func newSubmissionResponse(bundle feedback.SubmissionBundle) submissionResponse {
	return submissionResponse{
		SubmissionBundle: bundle,
		IsSubmittable:    bundle.IsSubmittable(),
		SubmitTarget:     bundle.SubmitTarget(),
	}
}

// Handlers

func (api *feedbackApi) submission(ctx echo.Context) error {
	var query submissionQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to submissionQuery")
	}
	if err := api.validate.Struct(query); err != nil {
		return err
	}

	req := feedback.SubmissionRequest{
		CourseID:                 ctx.Param("course"),
		SessionName:              ctx.Param("session"),
		RegKey:                   query.RegKey,
		PreviewAs:                query.PreviewAs,
		IsHeaderHidden:           query.IsHeaderHidden,
		IsShowRealQuestionNumber: query.IsShowRealQuestionNumber,
	}
	if req.RegKey == "" {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		req.ViewerEmail = claims.Email
		req.IsInstructor = claims.teaches(req.CourseID)
	}

	bundle, err := api.svc.LoadSubmission(ctx.Request().Context(), req)
	if err != nil {
		return errors.Wrap(err, "loading submission")
	}
	return ctx.JSON(http.StatusOK, newSubmissionResponse(bundle))
}

func (api *feedbackApi) moderation(ctx echo.Context) error {
	var query moderationQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to moderationQuery")
	}
	if err := api.validate.Struct(query); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	bundle, err := api.svc.LoadSubmission(ctx.Request().Context(), feedback.SubmissionRequest{
		CourseID:            ctx.Param("course"),
		SessionName:         ctx.Param("session"),
		ViewerEmail:         claims.Email,
		IsInstructor:        true,
		ModeratedStudent:    query.Student,
		ModeratedQuestionID: query.QuestionID,
	})
	if err != nil {
		return errors.Wrap(err, "loading moderated submission")
	}
	return ctx.JSON(http.StatusOK, newSubmissionResponse(bundle))
}
