package reminder

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sereno/sereno/internal/platform/httperr"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the reminder endpoints; the caller wraps the group
// in the auth middleware.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/:userId", h.List)
	g.POST("/:userId", h.Create)
	g.PUT("/:reminderId", h.Update)
	g.DELETE("/:reminderId", h.Delete)
	g.POST("/:reminderId/taken", h.MarkTaken)
}

func (h *Handler) List(c echo.Context) error {
	suffererID, err := userIDParam(c)
	if err != nil {
		return err
	}

	filter := ListFilter{
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
	}
	reminders, err := h.service.List(c.Request().Context(), suffererID, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reminders)
}

func (h *Handler) Create(c echo.Context) error {
	suffererID, err := userIDParam(c)
	if err != nil {
		return err
	}

	var in Input
	if err := c.Bind(&in); err != nil {
		return httperr.BindError(err)
	}

	rem, err := h.service.Create(c.Request().Context(), suffererID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rem)
}

func (h *Handler) Update(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return httperr.BindError(err)
	}

	rem, err := h.service.Update(c.Request().Context(), c.Param("reminderId"), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rem)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("reminderId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkTaken(c echo.Context) error {
	var in IntakeInput
	if err := c.Bind(&in); err != nil {
		return httperr.BindError(err)
	}

	intake, err := h.service.MarkTaken(c.Request().Context(), c.Param("reminderId"), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "recorded",
		"recordedAt": intake.RecordedAt,
	})
}

func userIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httperr.Validation("userId must be a positive integer")
	}
	return id, nil
}
