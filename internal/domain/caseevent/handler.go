package caseevent

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
	api.POST("/patients/:id/case-events/generate", h.Generate)
	api.GET("/patients/:id/case-events", h.ListByPatient)
	api.GET("/case-events/:id", h.GetDetail)
	api.POST("/case-events/:id/absent", h.MarkAbsent)
}

func (h *Handler) Generate(c echo.Context) error {
	patientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var createdBy *int64
	if uid := auth.UserIDFromContext(c.Request().Context()); uid > 0 {
		createdBy = &uid
	}
	created, err := h.svc.Generate(c.Request().Context(), patientID, createdBy)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"inserted": created})
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	summaries, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
	}
	return c.JSON(http.StatusOK, summaries)
}

func (h *Handler) GetDetail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	detail, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) MarkAbsent(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Absent *bool `json:"absent"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	absent := true
	if body.Absent != nil {
		absent = *body.Absent
	}
	if err := h.svc.MarkAbsent(c.Request().Context(), id, absent); err != nil {
		return c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"id": id, "is_absent": absent})
}
