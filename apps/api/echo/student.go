package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-feedback/core/student"
)

type studentApi struct {
	svc student.Service
}

func registerStudentAPI(g *echo.Group, auth jwtAuth, svc student.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/students", auth.required(), instructorMiddleware())
	sg.GET("", api.query)
	sg.GET("/:email", api.retrieve)
	sg.PUT("/:email", api.update)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.Query(ctx.Request().Context(), ctx.Param("course"))
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	st, err := api.svc.GetByEmail(ctx.Request().Context(), ctx.Param("course"), ctx.Param("email"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	res, err := api.svc.UpdateDetails(ctx.Request().Context(), ctx.Param("course"), ctx.Param("email"), data)
	if err != nil {
		return errors.Wrap(err, "updating student details")
	}
	return ctx.JSON(http.StatusOK, res)
}
