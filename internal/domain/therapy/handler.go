package therapy

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

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/videos", h.ListVideos)
	g.GET("/videos/:sectionId", h.GetVideo)
	g.GET("/ebooks", h.ListEbooks)
	g.GET("/ebooks/:ebookId", h.GetEbook)
	g.GET("/chat/history", h.ChatHistory)
	g.POST("/chat/send", h.SendChat)
}

func (h *Handler) ListVideos(c echo.Context) error {
	videos, err := h.service.ListVideos(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, videos)
}

func (h *Handler) GetVideo(c echo.Context) error {
	sectionID, err := strconv.ParseInt(c.Param("sectionId"), 10, 64)
	if err != nil || sectionID <= 0 {
		return httperr.NotFound("Video not found")
	}

	video, err := h.service.GetVideo(c.Request().Context(), sectionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, video)
}

func (h *Handler) ListEbooks(c echo.Context) error {
	ebooks, err := h.service.ListEbooks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ebooks)
}

func (h *Handler) GetEbook(c echo.Context) error {
	ebook, err := h.service.GetEbook(c.Request().Context(), c.Param("ebookId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ebook)
}

func (h *Handler) ChatHistory(c echo.Context) error {
	rawID := strings.TrimSpace(c.QueryParam("userId"))
	if rawID == "" {
		return httperr.Validation("Missing userId")
	}
	suffererID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || suffererID <= 0 {
		return httperr.Validation("userId must be a positive integer")
	}

	page, err := h.service.ChatHistory(c.Request().Context(), suffererID, pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) SendChat(c echo.Context) error {
	var in ChatInput
	if err := c.Bind(&in); err != nil {
		return httperr.BindError(err)
	}

	exchange, err := h.service.SendChat(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exchange)
}
