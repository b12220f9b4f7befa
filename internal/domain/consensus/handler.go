package consensus

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
	api.POST("/case-events/:id/consensus", h.Compute,
		auth.RequireRole("chair", "coordinator", "admin"))
	api.GET("/case-events/:id/consensus", h.Get)
}

func (h *Handler) Compute(c echo.Context) error {
	caseEventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in ComputeInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.CaseEventID = caseEventID

	decidedBy := auth.UserIDFromContext(c.Request().Context())
	result, err := h.svc.Compute(c.Request().Context(), decidedBy, in)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Get(c echo.Context) error {
	caseEventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	decision, err := h.svc.Get(c.Request().Context(), caseEventID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"consensus": decision})
}
