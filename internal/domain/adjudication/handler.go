package adjudication

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trialsafe/adjudicate/internal/platform/apperr"
	"github.com/trialsafe/adjudicate/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/case-events/:id/adjudication", h.GetOwn)
	api.PUT("/case-events/:id/adjudication", h.Submit)
	api.GET("/case-events/:id/adjudications", h.ListByCaseEvent,
		auth.RequireRole("chair", "coordinator", "admin"))
}

// GetOwn returns the caller's own adjudication, null when none exists.
func (h *Handler) GetOwn(c echo.Context) error {
	caseEventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	adjudicatorID := auth.UserIDFromContext(c.Request().Context())
	adj, err := h.svc.Get(c.Request().Context(), caseEventID, adjudicatorID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"adjudication": adj})
}

func (h *Handler) Submit(c echo.Context) error {
	caseEventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in SubmitInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.CaseEventID = caseEventID

	adjudicatorID := auth.UserIDFromContext(c.Request().Context())
	result, err := h.svc.Submit(c.Request().Context(), adjudicatorID, in)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListByCaseEvent(c echo.Context) error {
	caseEventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	adjudications, err := h.svc.ListByCaseEvent(c.Request().Context(), caseEventID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
	}
	return c.JSON(http.StatusOK, adjudications)
}
