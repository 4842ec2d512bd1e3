package identity

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sereno/sereno/internal/platform/auth"
	"github.com/sereno/sereno/internal/platform/httperr"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAuthRoutes mounts the public auth endpoints; logout additionally
// needs a valid token and is mounted by the caller behind the auth
// middleware.
func (h *Handler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

// RegisterUserRoutes mounts the authenticated profile endpoints.
func (h *Handler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile", h.Profile)
	g.PUT("/:userId", h.UpdateProfile)
	g.PUT("/:userId/photo", h.SetPhoto)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return httperr.BindError(err)
	}

	session, err := h.service.Register(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return httperr.BindError(err)
	}

	session, err := h.service.Login(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

// Logout is stateless: the client discards its token. Kept as an endpoint
// so a token blacklist can slot in later without an API change.
func (h *Handler) Logout(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Profile(c echo.Context) error {
	user, err := h.service.Profile(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	userID, err := ownParamID(c)
	if err != nil {
		return err
	}

	var p Patch
	if err := c.Bind(&p); err != nil {
		return httperr.BindError(err)
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), userID, &p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) SetPhoto(c echo.Context) error {
	userID, err := ownParamID(c)
	if err != nil {
		return err
	}

	var body struct {
		PhotoURL string `json:"photoUrl"`
	}
	if err := c.Bind(&body); err != nil {
		return httperr.BindError(err)
	}

	if err := h.service.SetPhoto(c.Request().Context(), userID, body.PhotoURL); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"photoUrl": body.PhotoURL})
}

func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httperr.Validation(name + " must be a positive integer")
	}
	return id, nil
}

// ownParamID parses the userId path parameter and rejects the request when it
// names anyone other than the authenticated user.
func ownParamID(c echo.Context) (int64, error) {
	id, err := paramID(c, "userId")
	if err != nil {
		return 0, err
	}
	if id != auth.UserIDFromContext(c.Request().Context()) {
		return 0, httperr.Forbidden("Cannot modify another user's profile")
	}
	return id, nil
}
