package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/veilroom/backend/internal/confessions"
	"github.com/veilroom/backend/internal/models"
)

var validate = validator.New()

// ConfessionHandler handles HTTP requests related to confessions
type ConfessionHandler struct {
	service *confessions.Service
}

// NewConfessionHandler creates a new ConfessionHandler
func NewConfessionHandler(service *confessions.Service) *ConfessionHandler {
	return &ConfessionHandler{service: service}
}

// RegisterPublicRoutes registers the unauthenticated read endpoints
func (h *ConfessionHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/confessions", h.ListConfessions)
	g.GET("/confessions/:id", h.GetConfession)
}

// RegisterProtectedRoutes registers the endpoints requiring authentication.
// createLimiter throttles confession creation per user.
func (h *ConfessionHandler) RegisterProtectedRoutes(g *echo.Group, createLimiter echo.MiddlewareFunc) {
	g.POST("/confessions", h.CreateConfession, createLimiter)
	g.PUT("/confessions/:id", h.UpdateConfession)
	g.DELETE("/confessions/:id", h.DeleteConfession)
	g.POST("/confessions/:id/react", h.ReactToConfession)
	g.POST("/confessions/:id/report", h.ReportConfession)
	g.GET("/confessions/user/confessions/my", h.GetMyConfessions)
}

// CreateConfession creates a new confession owned by the authenticated user
func (h *ConfessionHandler) CreateConfession(c echo.Context) error {
	requesterID := requesterID(c)

	var req models.CreateConfessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.service.Create(c.Request().Context(), requesterID, confessions.CreateInput{
		Text:       req.Text,
		SecretCode: req.SecretCode,
		Category:   req.Category,
		Hashtags:   req.Hashtags,
	})
	if err != nil {
		return confessionError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Confession created successfully",
		"confession": view,
	})
}

// ListConfessions retrieves visible confessions, filtered and sorted via
// the sortBy and category query params.
func (h *ConfessionHandler) ListConfessions(c echo.Context) error {
	views, err := h.service.List(c.Request().Context(), c.QueryParam("category"), c.QueryParam("sortBy"))
	if err != nil {
		return confessionError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"confessions": views,
		"total":       len(views),
	})
}

// GetConfession retrieves a single visible confession by ID
func (h *ConfessionHandler) GetConfession(c echo.Context) error {
	view, err := h.service.GetPublic(c.Request().Context(), c.Param("id"))
	if err != nil {
		return confessionError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetMyConfessions retrieves the authenticated user's own confessions
func (h *ConfessionHandler) GetMyConfessions(c echo.Context) error {
	views, err := h.service.ListMine(c.Request().Context(), requesterID(c))
	if err != nil {
		return confessionError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"confessions": views,
		"total":       len(views),
	})
}

// UpdateConfession replaces a confession's content after verifying ownership
// and the current secret code.
func (h *ConfessionHandler) UpdateConfession(c echo.Context) error {
	var req models.UpdateConfessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.service.Update(c.Request().Context(), c.Param("id"), requesterID(c), confessions.UpdateInput{
		Text:              req.Text,
		SecretCode:        req.SecretCode,
		Category:          req.Category,
		Hashtags:          req.Hashtags,
		CurrentSecretCode: req.CurrentSecretCode,
	})
	if err != nil {
		return confessionError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Confession updated successfully",
		"confession": view,
	})
}

// DeleteConfession soft-deletes a confession after verifying ownership and
// the secret code carried in the request body.
func (h *ConfessionHandler) DeleteConfession(c echo.Context) error {
	var req models.DeleteConfessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), requesterID(c), req.SecretCode); err != nil {
		return confessionError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Confession deleted successfully"})
}

// ReactToConfession records the authenticated user's reaction
func (h *ConfessionHandler) ReactToConfession(c echo.Context) error {
	var req models.ReactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	counts, err := h.service.React(c.Request().Context(), c.Param("id"), requesterID(c), req.ReactionType)
	if err != nil {
		return confessionError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Reaction added",
		"reactions": counts,
	})
}

// ReportConfession files an abuse report against a confession
func (h *ConfessionHandler) ReportConfession(c echo.Context) error {
	var req models.ReportConfessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Report(c.Request().Context(), c.Param("id"), requesterID(c), req.Reason); err != nil {
		return confessionError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Report submitted"})
}

// requesterID formats the authenticated user's ID the way confessions store
// owner IDs.
func requesterID(c echo.Context) string {
	userID := c.Get("userID").(uint) // Set by the JWT middleware
	return strconv.FormatUint(uint64(userID), 10)
}

// confessionError maps service errors to HTTP statuses
func confessionError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, confessions.ErrInvalidInput),
		errors.Is(err, confessions.ErrInvalidReactionKind):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, confessions.ErrWrongSecretCode):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, confessions.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, confessions.ErrNotFound),
		errors.Is(err, confessions.ErrOwnerNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
