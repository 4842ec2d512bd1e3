package screening

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sereno/sereno/internal/platform/httperr"
	"github.com/sereno/sereno/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the screening endpoints. Submission and history work
// with or without a bearer token, so the group carries optional auth.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/questions", h.ListQuestions)
	g.POST("/submit", h.Submit)
	g.GET("/results/:testId", h.GetResult)
	g.GET("/history", h.History)
}

func (h *Handler) ListQuestions(c echo.Context) error {
	questions, err := h.service.ListQuestions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, questions)
}

func (h *Handler) Submit(c echo.Context) error {
	var sub Submission
	if err := c.Bind(&sub); err != nil {
		return httperr.BindError(err)
	}

	result, err := h.service.Submit(c.Request().Context(), &sub)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) GetResult(c echo.Context) error {
	result, err := h.service.GetResult(c.Request().Context(), c.Param("testId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) History(c echo.Context) error {
	rawID := strings.TrimSpace(c.QueryParam("sufferer_id"))
	if rawID == "" {
		return httperr.Validation("sufferer_id is required")
	}
	suffererID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || suffererID <= 0 {
		return httperr.Validation("sufferer_id must be a positive integer")
	}

	testType := c.QueryParam("testType")
	if testType == "" {
		testType = "all"
	}

	page, err := h.service.History(c.Request().Context(), suffererID, testType, pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
